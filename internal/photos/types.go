package photos

import (
	"time"

	"github.com/keepsake-app/keepsake-backend/pkg/db/models"
)

// Photo is the API representation of a gallery row.
type Photo struct {
	ID         int64     `json:"id"`
	ImageURL   string    `json:"image_url"`
	Caption    *string   `json:"caption"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PhotoInput is the client-editable part of a photo.
type PhotoInput struct {
	ImageURL   string  `json:"image_url" validate:"required"`
	Caption    *string `json:"caption"`
	OrderIndex int     `json:"order_index"`
}

// OrderUpdate moves one photo to a new position.
type OrderUpdate struct {
	ID         int64 `json:"id" validate:"required"`
	OrderIndex int   `json:"order_index"`
}

// UploadInput carries a file received through multipart upload.
type UploadInput struct {
	FileName    string
	ContentType string
	Data        []byte
	Caption     string
	OrderIndex  int
}

// UploadResult reports the inserted row and the stored blob key.
type UploadResult struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id"`
	URL     string `json:"url"`
}

func fromModel(m models.Photo) Photo {
	return Photo{
		ID:         m.ID,
		ImageURL:   m.ImageURL,
		Caption:    m.Caption,
		OrderIndex: m.OrderIndex,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// optionalText maps "" and nil to NULL.
func optionalText(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
