package manifest

import (
	"bytes"
	"image"

	// Register decoders for the formats covers commonly ship in. The
	// stdlib handles JPEG, PNG and GIF; WebP and TIFF come from
	// golang.org/x/image.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// SniffImage decodes the image header from content and returns its
// dimensions and format name ("jpeg", "png", "gif", "webp", "tiff").
// SVG is not sniffable this way; callers fall back to extension-based
// detection for vector content.
func SniffImage(content []byte) (image.Config, string, error) {
	return image.DecodeConfig(bytes.NewReader(content))
}
