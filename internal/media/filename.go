package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"path"
	"strings"

	"github.com/goliatone/go-slug"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// extensions lists the accepted content types and their file extensions. The
// first entry is used for generated names.
var extensions = map[string][]string{
	"image/png":  {".png"},
	"image/jpeg": {".jpg", ".jpeg"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
	"image/bmp":  {".bmp"},
}

// detectContentType sniffs data and returns its MIME type without parameters.
func detectContentType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}

// SupportedContentType reports whether uploads of contentType are accepted.
func SupportedContentType(contentType string) bool {
	_, ok := extensions[contentType]
	return ok
}

func decodeDimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// sanitizeFilename reduces name to a slugged stem plus an extension matching
// contentType. It returns "" when nothing usable is left.
func sanitizeFilename(name, contentType string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	ext := strings.ToLower(path.Ext(base))
	stem := strings.TrimSuffix(base, path.Ext(base))

	normalized, err := slug.Normalize(stem)
	if err != nil || normalized == "" {
		return ""
	}
	return normalized + extensionFor(contentType, ext)
}

func extensionFor(contentType, preferred string) string {
	candidates := extensions[contentType]
	for _, candidate := range candidates {
		if candidate == preferred {
			return candidate
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}

func generatedFilename(millis int64, id, contentType string) string {
	return fmt.Sprintf("%d-%s%s", millis, id, extensionFor(contentType, ""))
}
