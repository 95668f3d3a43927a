package media

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultImageContentType = "image/jpeg"

var genericContentTypes = map[string]struct{}{
	"":                         {},
	"application/octet-stream": {},
	"binary/octet-stream":      {},
}

// ContentType prefers the declared part header and falls back to sniffing the
// payload when the header is missing or generic.
func ContentType(declared string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(declared)); err == nil {
		if _, generic := genericContentTypes[strings.ToLower(mediaType)]; !generic {
			return strings.TrimSpace(declared)
		}
	}
	return mimetype.Detect(data).String()
}

// ServeContentType returns the type to send when streaming a stored blob.
func ServeContentType(stored string) string {
	if _, generic := genericContentTypes[strings.ToLower(strings.TrimSpace(stored))]; generic {
		return DefaultImageContentType
	}
	return stored
}
