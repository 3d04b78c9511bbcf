// Package bindery builds EPUB 3 books: it manages the manifest of
// resources, the reading order, metadata, the table of contents and
// landmarks, generates both the EPUB 3 navigation document and the
// legacy NCX index, and seals everything into a valid container.
//
// Basic usage:
//
//	b := bindery.New()
//	b.SetTitle("An Example")
//	b.AddCreator("J. Writer", bindery.RoleAuthor, "")
//
//	ch, err := b.AddXHTML("ch1", "chapter1.xhtml", []byte("<h1>One</h1>"), "Chapter One")
//	if err != nil {
//	    // handle error
//	}
//	b.AddToSpine(ch.ID, true)
//	b.AddTOCEntry("Chapter One", ch.Href(), nil)
//
//	warnings, err := b.Save("example.epub")
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", bindery.FormatWarnings(warnings))
//	}
//
// Existing books can be reopened with Load, edited, and saved again.
// Headings in spine content can seed the table of contents via
// GenerateTOCFromContent, and Markdown sources convert straight to
// spine-ready chapters with AddMarkdown.
package bindery

import "github.com/tsawler/bindery/metadata"

// MARC relator codes re-exported for convenient creator attribution.
const (
	RoleAuthor      = metadata.RoleAuthor
	RoleEditor      = metadata.RoleEditor
	RoleIllustrator = metadata.RoleIllustrator
)
