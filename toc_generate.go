package bindery

import (
	"bytes"

	"github.com/tsawler/bindery/manifest"
	"github.com/tsawler/bindery/xhtml"
)

// GenerateTOCFromContent builds the table-of-contents forest from the
// headings of the spine's markup documents, in spine order, nesting
// entries by heading level. Headings that lack an anchor id get one
// assigned, which updates the document's stored content. Levels beyond
// maxHeadingLevel are ignored.
//
// The existing TOC is replaced only when at least one heading was
// found; otherwise a warning is recorded and the forest is left alone.
func (b *Builder) GenerateTOCFromContent(maxHeadingLevel int) {
	if len(b.spine) == 0 {
		b.warn(WarnEmptyTOC, "cannot generate a table of contents from an empty spine")
		return
	}

	var forest []*TOCEntry
	for _, ref := range b.spine {
		it, ok := b.items[ref.ItemID]
		if !ok || it.MediaType != manifest.MediaTypeXHTML {
			continue
		}
		content := it.Content()
		if len(content) == 0 {
			continue
		}
		headings, updated, err := xhtml.ExtractHeadings(content, maxHeadingLevel)
		if err != nil {
			b.warn(WarnHeadingExtraction, "extracting headings from %q: %v", it.Href(), err)
			continue
		}
		if !bytes.Equal(updated, content) {
			it.SetContent(updated)
		}
		forest = append(forest, nestHeadings(headings, it.Href())...)
	}

	if len(forest) == 0 {
		b.warn(WarnNoHeadings, "no headings found in spine content")
		return
	}
	b.SetTOC(forest)
}

// nestHeadings folds a flat heading list into a subtree forest keyed by
// heading level: each heading becomes a child of the nearest preceding
// heading with a smaller level.
func nestHeadings(headings []xhtml.Heading, docHref string) []*TOCEntry {
	var roots []*TOCEntry
	type frame struct {
		entry *TOCEntry
		level int
	}
	var stack []frame

	for _, h := range headings {
		entry := &TOCEntry{Label: h.Text, Href: docHref + "#" + h.ID}
		for len(stack) > 0 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, entry)
		} else {
			parent := stack[len(stack)-1].entry
			parent.Children = append(parent.Children, entry)
		}
		stack = append(stack, frame{entry: entry, level: h.Level})
	}
	return roots
}
