package media

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const (
	PhotoPrefix        = "photos"
	WishlistItemPrefix = "wishlist-items"

	fallbackFileName = "upload"
	base36           = "0123456789abcdefghijklmnopqrstuvwxyz"
	tokenLength      = 6
)

// PhotoKey builds photos/<unix-millis>-<file name>. The store may add a random
// suffix on top.
func PhotoKey(now time.Time, fileName string) string {
	name := sanitizeFileName(fileName)
	if name == "" {
		name = fallbackFileName
	}
	return fmt.Sprintf("%s/%d-%s", PhotoPrefix, now.UnixMilli(), name)
}

// WishlistImageKey builds wishlist-items/<unix-millis>-<token>.<ext> where ext
// is whatever follows the last dot of the original name (the whole name when
// there is no dot).
func WishlistImageKey(now time.Time, fileName string) string {
	return fmt.Sprintf("%s/%d-%s.%s", WishlistItemPrefix, now.UnixMilli(), randomToken(), extension(fileName))
}

func extension(fileName string) string {
	name := strings.TrimSpace(fileName)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	if ext := sanitizeFileName(name); ext != "" {
		return ext
	}
	return "bin"
}

func randomToken() string {
	id := uuid.New()
	var b strings.Builder
	b.Grow(tokenLength)
	for i := 0; i < tokenLength; i++ {
		b.WriteByte(base36[int(id[i])%len(base36)])
	}
	return b.String()
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_")
}
