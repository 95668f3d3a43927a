package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/keepsake-app/keepsake-backend/pkg/errors"
	"github.com/keepsake-app/keepsake-backend/pkg/logger"
	"github.com/keepsake-app/keepsake-backend/pkg/types"
)

func TestWriteErrorUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), logger.Nop(), rec, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid password"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	var body types.ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Invalid password" || body.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, errors.New("dial tcp 10.0.0.3:5432: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	var body types.ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "internal server error" {
		t.Fatalf("internal details leaked: %q", body.Message)
	}
	if body.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Code)
	}
}

func TestWriteErrorStorageMessageExposed(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.Wrap(pkgerrors.CodeStorage, errors.New("503 from bucket"), "Failed to upload image"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	var body types.ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Failed to upload image" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestWriteErrorValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"item_name": "is required"})
	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	var body struct {
		Details map[string]string `json:"details"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Details["item_name"] != "is required" {
		t.Fatalf("unexpected details %v", body.Details)
	}
}

func TestWriteSuccessWritesRawPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, types.SuccessFlag{Success: true})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
	if rec.Body.String() != "{\"success\":true}\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
