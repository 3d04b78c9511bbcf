// Package markdown converts Markdown source into complete XHTML
// content documents ready for the manifest.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"

	"github.com/tsawler/bindery/xhtml"
)

var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		// XHTML output so void elements self-close inside the EPUB
		// container.
		ghtml.WithXHTML(),
	),
)

// ToXHTML converts Markdown source to a complete XHTML document with
// the given title and language.
func ToXHTML(source []byte, title, language string) ([]byte, error) {
	var body bytes.Buffer
	if err := converter.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}
	return xhtml.WrapFragment(body.Bytes(), title, language, nil), nil
}
