package manifest

import (
	"path"
	"sort"
	"strings"
)

// Media types recognized by the builder.
const (
	MediaTypeEPUB       = "application/epub+zip"
	MediaTypeXHTML      = "application/xhtml+xml"
	MediaTypeCSS        = "text/css"
	MediaTypeJPEG       = "image/jpeg"
	MediaTypePNG        = "image/png"
	MediaTypeGIF        = "image/gif"
	MediaTypeSVG        = "image/svg+xml"
	MediaTypeWEBP       = "image/webp"
	MediaTypeTIFF       = "image/tiff"
	MediaTypeOPF        = "application/oebps-package+xml"
	MediaTypeNCX        = "application/x-dtbncx+xml"
	MediaTypeOTF        = "application/vnd.ms-opentype"
	MediaTypeTTF        = "application/font-sfnt"
	MediaTypeWOFF       = "application/font-woff"
	MediaTypeWOFF2      = "font/woff2"
	MediaTypeJavaScript = "text/javascript"
	MediaTypeMP3        = "audio/mpeg"
	MediaTypeMP4Audio   = "audio/mp4"
	MediaTypeOggAudio   = "audio/ogg"
	MediaTypeMP4Video   = "video/mp4"
	MediaTypeWebM       = "video/webm"
)

// EPUB 3 manifest item properties.
const (
	PropertyNav        = "nav"
	PropertyCoverImage = "cover-image"
	PropertyScripted   = "scripted"
	PropertyMathML     = "mathml"
	PropertySVG        = "svg"
	PropertyRemote     = "remote-resources"
)

// Subdirectories used when folder layout is enabled.
const (
	SubdirText   = "Text"
	SubdirStyles = "Styles"
	SubdirImages = "Images"
	SubdirFonts  = "Fonts"
	SubdirAudio  = "Audio"
	SubdirVideo  = "Video"
	SubdirMisc   = "Misc"
)

// subdirByMediaType is the kind-to-folder policy. Anything not listed
// goes to Misc. The NCX and the package descriptor never move; see
// Item.ApplyFolderLayout.
var subdirByMediaType = map[string]string{
	MediaTypeXHTML:      SubdirText,
	MediaTypeCSS:        SubdirStyles,
	MediaTypeJPEG:       SubdirImages,
	MediaTypePNG:        SubdirImages,
	MediaTypeGIF:        SubdirImages,
	MediaTypeSVG:        SubdirImages,
	MediaTypeWEBP:       SubdirImages,
	MediaTypeTIFF:       SubdirImages,
	MediaTypeOTF:        SubdirFonts,
	MediaTypeTTF:        SubdirFonts,
	MediaTypeWOFF:       SubdirFonts,
	MediaTypeWOFF2:      SubdirFonts,
	MediaTypeJavaScript: SubdirMisc,
	MediaTypeMP3:        SubdirAudio,
	MediaTypeMP4Audio:   SubdirAudio,
	MediaTypeOggAudio:   SubdirAudio,
	MediaTypeMP4Video:   SubdirVideo,
	MediaTypeWebM:       SubdirVideo,
}

// SubdirFor returns the canonical subdirectory for a media type.
func SubdirFor(mediaType string) string {
	if sub, ok := subdirByMediaType[mediaType]; ok {
		return sub
	}
	return SubdirMisc
}

var mediaTypeByExtension = map[string]string{
	".xhtml": MediaTypeXHTML,
	".html":  MediaTypeXHTML,
	".htm":   MediaTypeXHTML,
	".css":   MediaTypeCSS,
	".jpg":   MediaTypeJPEG,
	".jpeg":  MediaTypeJPEG,
	".png":   MediaTypePNG,
	".gif":   MediaTypeGIF,
	".svg":   MediaTypeSVG,
	".webp":  MediaTypeWEBP,
	".tif":   MediaTypeTIFF,
	".tiff":  MediaTypeTIFF,
	".otf":   MediaTypeOTF,
	".ttf":   MediaTypeTTF,
	".woff":  MediaTypeWOFF,
	".woff2": MediaTypeWOFF2,
	".js":    MediaTypeJavaScript,
	".mp3":   MediaTypeMP3,
	".m4a":   MediaTypeMP4Audio,
	".ogg":   MediaTypeOggAudio,
	".mp4":   MediaTypeMP4Video,
	".webm":  MediaTypeWebM,
	".ncx":   MediaTypeNCX,
	".opf":   MediaTypeOPF,
}

// GuessMediaType returns the media type for a file name based on its
// extension, or "" if the extension is not recognized.
func GuessMediaType(name string) string {
	return mediaTypeByExtension[strings.ToLower(path.Ext(name))]
}

// PropertySet holds EPUB manifest item properties.
type PropertySet map[string]struct{}

// Add inserts a property into the set.
func (p PropertySet) Add(prop string) { p[prop] = struct{}{} }

// Remove deletes a property from the set.
func (p PropertySet) Remove(prop string) { delete(p, prop) }

// Has reports whether the property is present.
func (p PropertySet) Has(prop string) bool {
	_, ok := p[prop]
	return ok
}

// List returns the properties in sorted order.
func (p PropertySet) List() []string {
	if len(p) == 0 {
		return nil
	}
	out := make([]string, 0, len(p))
	for prop := range p {
		out = append(out, prop)
	}
	sort.Strings(out)
	return out
}

// String returns the space-joined, sorted property list as used in the
// package descriptor's properties attribute.
func (p PropertySet) String() string {
	return strings.Join(p.List(), " ")
}
