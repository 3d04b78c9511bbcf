package bindery

import (
	"fmt"
	"strings"
)

// TOCEntry is one node in the table-of-contents forest: a label, a
// target href (a content-root-relative path, optionally with a
// fragment), and ordered children. TOC entries reference resources by
// path, never by handle; removing a resource does not prune entries
// pointing at it.
type TOCEntry struct {
	Label    string
	Href     string
	Children []*TOCEntry
}

// Landmark is a typed structural pointer used for quick navigation.
type Landmark struct {
	Label string
	Href  string
	Type  string
}

// EPUB structural semantics landmark types.
const (
	LandmarkCover      = "cover"
	LandmarkTOC        = "toc"
	LandmarkBodyMatter = "bodymatter"
	LandmarkTitlePage  = "titlepage"
)

// SetTOC replaces the table-of-contents forest.
func (b *Builder) SetTOC(entries []*TOCEntry) {
	b.toc = entries
}

// TOC returns the current table-of-contents forest.
func (b *Builder) TOC() []*TOCEntry { return b.toc }

// AddTOCEntry appends a TOC entry and returns it so callers can nest
// children under it. Pass nil as parent to add a root entry.
func (b *Builder) AddTOCEntry(label, href string, parent *TOCEntry) *TOCEntry {
	entry := &TOCEntry{Label: label, Href: href}
	if parent != nil {
		parent.Children = append(parent.Children, entry)
		return entry
	}
	b.toc = append(b.toc, entry)
	return entry
}

// AddLandmark appends a structural landmark. The type must be
// non-empty; duplicates of the same type are allowed (the implicit
// cover landmark added by SetCover is the only deduplicated one).
func (b *Builder) AddLandmark(label, href, landmarkType string) error {
	if landmarkType == "" {
		return fmt.Errorf("%w: empty landmark type", ErrInvalidArgument)
	}
	b.landmarks = append(b.landmarks, Landmark{Label: label, Href: href, Type: landmarkType})
	return nil
}

// Landmarks returns the current landmarks list.
func (b *Builder) Landmarks() []Landmark {
	return append([]Landmark(nil), b.landmarks...)
}

// rewriteEntries rewrites every entry's path component through the
// old-to-new table, preserving fragments, recursively.
func rewriteEntries(entries []*TOCEntry, moved map[string]string) {
	for _, e := range entries {
		e.Href = rewriteHref(e.Href, moved)
		rewriteEntries(e.Children, moved)
	}
}

// rewriteHref maps the path component of href through the table,
// keeping any #fragment suffix. Paths not in the table pass through
// unchanged.
func rewriteHref(href string, moved map[string]string) string {
	path, fragment := href, ""
	if i := strings.Index(href, "#"); i >= 0 {
		path, fragment = href[:i], href[i:]
	}
	if newPath, ok := moved[path]; ok {
		return newPath + fragment
	}
	return href
}

// tocDepth returns the maximum nesting depth of the forest; 0 for an
// empty forest.
func tocDepth(entries []*TOCEntry) int {
	depth := 0
	for _, e := range entries {
		d := 1 + tocDepth(e.Children)
		if d > depth {
			depth = d
		}
	}
	return depth
}

// countEntries returns the total node count of the forest.
func countEntries(entries []*TOCEntry) int {
	n := 0
	for _, e := range entries {
		n += 1 + countEntries(e.Children)
	}
	return n
}
