package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	pkgerrors "github.com/keepsake-app/keepsake-backend/pkg/errors"
)

// UploadedFile is a multipart file part read fully into memory.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ParseMultipartForm caps the request body at maxBytes and parses it. Bodies
// over the cap are reported as validation failures.
func ParseMultipartForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.New(pkgerrors.CodeValidation, "file too large").WithDetails(map[string]any{"max_bytes": tooLarge.Limit})
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// FormValue returns a text field from a parsed multipart form exactly as sent.
func FormValue(r *http.Request, key string) string {
	if r.MultipartForm == nil {
		return ""
	}
	values := r.MultipartForm.Value[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// FormFile reads the named file part. ok is false when the part is absent.
func FormFile(r *http.Request, key string) (*UploadedFile, bool, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[key]) == 0 {
		return nil, false, nil
	}
	header := r.MultipartForm.File[key][0]
	data, err := readPart(header)
	if err != nil {
		return nil, true, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read uploaded file")
	}
	return &UploadedFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
