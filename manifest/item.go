// Package manifest defines the resources bundled into an EPUB archive:
// content documents, stylesheets, images, fonts, scripts and the two
// generated navigation files. Each resource is an Item carrying its own
// content bytes, a stable id, and a path that the folder-layout policy
// may rewrite.
package manifest

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/tsawler/bindery/xhtml"
)

// ErrInvalidItem is returned when an item is constructed with a missing
// or mismatched id, path, or media type.
var ErrInvalidItem = errors.New("manifest: invalid item")

// Fixed file names for the generated navigation resources.
const (
	NavFileName = "nav.xhtml"
	NCXFileName = "toc.ncx"
)

// Item is one resource in the EPUB manifest. Construct items with the
// typed New* functions rather than by struct literal; the constructors
// validate the media type and fix the kind-specific traits.
type Item struct {
	// ID uniquely identifies the item in the manifest. Stable for the
	// item's lifetime.
	ID string

	// MediaType is the item's MIME type.
	MediaType string

	// Properties holds EPUB capability tags such as "nav" or
	// "cover-image".
	Properties PropertySet

	// SpineCandidate reports whether the item is normally suitable for
	// the reading order. Fixed at construction by kind.
	SpineCandidate bool

	// NavTitle is an optional display title for navigation entries.
	NavTitle string

	// Language is an optional language override for this document.
	Language string

	originalName string
	name         string
	pinned       bool // stays at the content root regardless of layout
	content      []byte
}

func newItem(id, name, mediaType string, content []byte) (*Item, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidItem)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty file name", ErrInvalidItem)
	}
	if mediaType == "" {
		return nil, fmt.Errorf("%w: empty media type", ErrInvalidItem)
	}
	clean := sanitizeHref(name)
	return &Item{
		ID:           id,
		MediaType:    mediaType,
		Properties:   make(PropertySet),
		originalName: clean,
		name:         clean,
		content:      content,
	}, nil
}

// sanitizeHref normalizes a stored path to forward slashes with no
// leading separator.
func sanitizeHref(name string) string {
	clean := strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(path.Clean(clean), "/")
}

// NewXHTML creates a markup content document. Bare fragments (content
// that does not open with an XML declaration or doctype) are wrapped in
// a minimal well-formed document shell.
func NewXHTML(id, name string, content []byte, navTitle, language string) (*Item, error) {
	if !xhtml.IsDocument(content) {
		title := navTitle
		if title == "" {
			title = strings.TrimSuffix(path.Base(name), path.Ext(name))
		}
		content = xhtml.WrapFragment(content, title, language, nil)
	}
	it, err := newItem(id, name, MediaTypeXHTML, content)
	if err != nil {
		return nil, err
	}
	it.SpineCandidate = true
	it.NavTitle = navTitle
	if it.NavTitle == "" {
		it.NavTitle = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	it.Language = language
	return it, nil
}

// NewCSS creates a stylesheet item.
func NewCSS(id, name string, content []byte) (*Item, error) {
	return newItem(id, name, MediaTypeCSS, content)
}

// NewImage creates an image item. If mediaType is empty it is guessed
// from the file extension, then from the content bytes. The media type
// must be image/*.
func NewImage(id, name string, content []byte, mediaType string) (*Item, error) {
	if mediaType == "" {
		mediaType = GuessMediaType(name)
	}
	if mediaType == "" {
		if _, format, err := SniffImage(content); err == nil {
			mediaType = "image/" + format
		}
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("%w: media type %q is not an image type", ErrInvalidItem, mediaType)
	}
	return newItem(id, name, mediaType, content)
}

// NewFont creates a font item. The media type must be application/* or
// font/*.
func NewFont(id, name string, content []byte, mediaType string) (*Item, error) {
	if mediaType == "" {
		mediaType = GuessMediaType(name)
	}
	if !strings.HasPrefix(mediaType, "application/") && !strings.HasPrefix(mediaType, "font/") {
		return nil, fmt.Errorf("%w: media type %q is not a font type", ErrInvalidItem, mediaType)
	}
	return newItem(id, name, mediaType, content)
}

// NewScript creates a JavaScript item. The "scripted" property is set
// automatically.
func NewScript(id, name string, content []byte) (*Item, error) {
	it, err := newItem(id, name, MediaTypeJavaScript, content)
	if err != nil {
		return nil, err
	}
	it.Properties.Add(PropertyScripted)
	return it, nil
}

// NewAudio creates an audio item.
func NewAudio(id, name string, content []byte, mediaType string) (*Item, error) {
	if mediaType == "" {
		mediaType = GuessMediaType(name)
	}
	if !strings.HasPrefix(mediaType, "audio/") {
		return nil, fmt.Errorf("%w: media type %q is not an audio type", ErrInvalidItem, mediaType)
	}
	return newItem(id, name, mediaType, content)
}

// NewVideo creates a video item.
func NewVideo(id, name string, content []byte, mediaType string) (*Item, error) {
	if mediaType == "" {
		mediaType = GuessMediaType(name)
	}
	if !strings.HasPrefix(mediaType, "video/") {
		return nil, fmt.Errorf("%w: media type %q is not a video type", ErrInvalidItem, mediaType)
	}
	return newItem(id, name, mediaType, content)
}

// NewNav creates the EPUB 3 navigation document with its fixed file
// name. It carries the "nav" property, stays at the content root so its
// content-root-relative hrefs resolve, and is kept out of the spine.
func NewNav(id string, content []byte) (*Item, error) {
	it, err := newItem(id, NavFileName, MediaTypeXHTML, content)
	if err != nil {
		return nil, err
	}
	it.Properties.Add(PropertyNav)
	it.NavTitle = "Table of Contents"
	it.pinned = true
	return it, nil
}

// NewNCX creates the legacy NCX index with its fixed file name. The NCX
// is pinned to the content root and never moves under folder layout.
func NewNCX(id string, content []byte) (*Item, error) {
	it, err := newItem(id, NCXFileName, MediaTypeNCX, content)
	if err != nil {
		return nil, err
	}
	it.pinned = true
	return it, nil
}

// FromArchive reconstructs an item from a loaded archive entry, typing
// it by media type so kind-specific traits (spine eligibility, root
// pinning) are restored.
func FromArchive(id, href, mediaType string, content []byte, properties []string) (*Item, error) {
	it, err := newItem(id, href, mediaType, content)
	if err != nil {
		return nil, err
	}
	switch {
	case mediaType == MediaTypeXHTML:
		it.SpineCandidate = true
	case mediaType == MediaTypeNCX:
		it.pinned = true
	}
	for _, prop := range properties {
		it.Properties.Add(prop)
	}
	if it.Properties.Has(PropertyNav) {
		it.SpineCandidate = false
		it.pinned = true
	}
	return it, nil
}

// Content returns the item's content bytes.
func (it *Item) Content() []byte { return it.content }

// SetContent replaces the item's content bytes.
func (it *Item) SetContent(content []byte) { it.content = content }

// Href returns the item's path relative to the content root, with
// forward slashes, as referenced from the package descriptor and the
// navigation documents.
func (it *Item) Href() string { return it.name }

// PathIn returns the item's full path inside the archive for the given
// content root directory.
func (it *Item) PathIn(contentDir string) string {
	return contentDir + "/" + it.name
}

// ApplyFolderLayout rewrites the item's path to the canonical
// subdirectory for its media type. It is idempotent: the new path is
// always derived from the path the item was created with. The NCX and
// the package descriptor remain at the content root.
func (it *Item) ApplyFolderLayout() {
	if it.pinned {
		it.name = path.Base(it.originalName)
		return
	}
	it.name = SubdirFor(it.MediaType) + "/" + path.Base(it.originalName)
}

func (it *Item) String() string {
	props := ""
	if len(it.Properties) > 0 {
		props = " properties=" + it.Properties.String()
	}
	return fmt.Sprintf("<item id=%q href=%q media-type=%q%s>", it.ID, it.name, it.MediaType, props)
}
