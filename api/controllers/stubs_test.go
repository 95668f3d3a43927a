package controllers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/keepsake-app/keepsake-backend/internal/auth"
	"github.com/keepsake-app/keepsake-backend/internal/photos"
	"github.com/keepsake-app/keepsake-backend/internal/wishlist"
	"github.com/keepsake-app/keepsake-backend/pkg/storage"
)

const testPassword = "ellie2024"

func testGate(t *testing.T) *auth.Gate {
	t.Helper()
	gate, err := auth.NewGate(testPassword, "")
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	return gate
}

type stubPhotoService struct {
	list      []photos.Photo
	err       error
	created   []photos.PhotoInput
	updated   map[int64]photos.PhotoInput
	reordered [][]photos.OrderUpdate
	uploads   []photos.UploadInput
	blobs     map[string]string
}

func (s *stubPhotoService) List(context.Context) ([]photos.Photo, error) {
	return s.list, s.err
}

func (s *stubPhotoService) Create(_ context.Context, input photos.PhotoInput) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.created = append(s.created, input)
	return int64(len(s.created)), nil
}

func (s *stubPhotoService) Update(_ context.Context, id int64, input photos.PhotoInput) error {
	if s.err != nil {
		return s.err
	}
	if s.updated == nil {
		s.updated = map[int64]photos.PhotoInput{}
	}
	s.updated[id] = input
	return nil
}

func (s *stubPhotoService) Reorder(_ context.Context, updates []photos.OrderUpdate) error {
	if s.err != nil {
		return s.err
	}
	s.reordered = append(s.reordered, updates)
	return nil
}

func (s *stubPhotoService) Upload(_ context.Context, input photos.UploadInput) (*photos.UploadResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.uploads = append(s.uploads, input)
	return &photos.UploadResult{Success: true, ID: 7, URL: "photos/1-" + input.FileName}, nil
}

func (s *stubPhotoService) Open(_ context.Context, key string) (*storage.Object, error) {
	if s.err != nil {
		return nil, s.err
	}
	body, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{
		Body:        io.NopCloser(bytes.NewReader([]byte(body))),
		ContentType: "image/png",
		Size:        int64(len(body)),
	}, nil
}

type stubWishlistService struct {
	items     []wishlist.Item
	err       error
	created   []wishlist.ItemInput
	updated   map[int64]wishlist.ItemInput
	deleted   []int64
	purchases map[int64]wishlist.PurchaseInput
	reordered [][]wishlist.OrderUpdate
	images    []wishlist.ImageInput
}

func (s *stubWishlistService) List(context.Context) ([]wishlist.Item, error) {
	return s.items, s.err
}

func (s *stubWishlistService) Create(_ context.Context, input wishlist.ItemInput) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.created = append(s.created, input)
	return int64(len(s.created)), nil
}

func (s *stubWishlistService) Update(_ context.Context, id int64, input wishlist.ItemInput) error {
	if s.err != nil {
		return s.err
	}
	if s.updated == nil {
		s.updated = map[int64]wishlist.ItemInput{}
	}
	s.updated[id] = input
	return nil
}

func (s *stubWishlistService) Delete(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubWishlistService) SetPurchased(_ context.Context, id int64, input wishlist.PurchaseInput) error {
	if s.err != nil {
		return s.err
	}
	if s.purchases == nil {
		s.purchases = map[int64]wishlist.PurchaseInput{}
	}
	s.purchases[id] = input
	return nil
}

func (s *stubWishlistService) Reorder(_ context.Context, updates []wishlist.OrderUpdate) error {
	if s.err != nil {
		return s.err
	}
	s.reordered = append(s.reordered, updates)
	return nil
}

func (s *stubWishlistService) UploadImage(_ context.Context, input wishlist.ImageInput) (*wishlist.ImageResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.images = append(s.images, input)
	return &wishlist.ImageResult{URL: "wishlist-items/1-abc123.png", Success: true}, nil
}

// multipartBody builds a form with the given text fields and an optional file.
func multipartBody(t *testing.T, fields map[string]string, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
