// Package metadata keeps the ordered list of Dublin-Core-style records
// that ends up in the package descriptor's metadata section. Records
// preserve insertion order, duplicates of the same tag are allowed
// (multiple creators, say), and one dc:identifier record is designated
// the unique identifier the package element points at.
package metadata

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Namespace URIs for the metadata vocabularies.
const (
	NamespaceDC      = "http://purl.org/dc/elements/1.1/"
	NamespaceDCTerms = "http://purl.org/dc/terms/"
	NamespaceOPF     = "http://www.idpf.org/2007/opf"
)

// Common MARC relator codes for creators and contributors.
const (
	RoleAuthor      = "aut"
	RoleEditor      = "edt"
	RoleIllustrator = "ill"
)

const modifiedDateFormat = "2006-01-02T15:04:05Z"

// Attr is one attribute on a metadata record. Attribute order is
// preserved through to the descriptor.
type Attr struct {
	Name  string
	Value string
}

// Record is one metadata element: a namespace, a qualified tag such as
// "dc:title" (or "meta"/"link"), text content, and ordered attributes.
type Record struct {
	Namespace string
	Tag       string
	Text      string
	Attrs     []Attr
}

// AttrValue returns the value of the named attribute, or "".
func (r Record) AttrValue(name string) string {
	for _, a := range r.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Manager holds the ordered record list and the unique-identifier
// binding.
type Manager struct {
	records []Record
	idRef   string
}

// New returns an empty Manager. The builder seeds the identifier and
// language records.
func New() *Manager {
	return &Manager{}
}

// SetUniqueIdentifier sets the dc:identifier record designated as the
// package's unique identifier, replacing a previous designation. refID
// is the id attribute the package element's unique-identifier attribute
// will reference.
func (m *Manager) SetUniqueIdentifier(value, refID string) {
	if refID == "" {
		refID = "book-id"
	}
	rec := Record{
		Namespace: NamespaceDC,
		Tag:       "dc:identifier",
		Text:      value,
		Attrs:     []Attr{{Name: "id", Value: refID}},
	}
	for i, r := range m.records {
		if r.Tag == "dc:identifier" && r.AttrValue("id") == m.idRef {
			m.records[i] = rec
			m.idRef = refID
			return
		}
	}
	m.records = append(m.records, rec)
	m.idRef = refID
}

// IdentifierRef returns the id attribute value the unique identifier is
// bound to.
func (m *Manager) IdentifierRef() string { return m.idRef }

// SetTitle sets dc:title, replacing the first existing title record.
func (m *Manager) SetTitle(title string) {
	m.setSingle("dc:title", NamespaceDC, title)
}

// SetLanguage sets dc:language, replacing the first existing language
// record. The code is validated as a BCP 47 tag; an invalid code is
// still stored (the caller decides how loudly to complain) and the
// validation error is returned.
func (m *Manager) SetLanguage(code string) error {
	m.setSingle("dc:language", NamespaceDC, code)
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("language tag %q: %w", code, err)
	}
	return nil
}

func (m *Manager) setSingle(tag, namespace, text string) {
	for i, r := range m.records {
		if r.Tag == tag {
			m.records[i].Text = text
			return
		}
	}
	m.records = append(m.records, Record{Namespace: namespace, Tag: tag, Text: text})
}

// AddCreator appends a dc:creator record. A non-empty role or fileAs is
// attached as refining meta records in the EPUB 3 style.
func (m *Manager) AddCreator(name, role, fileAs string) {
	id := fmt.Sprintf("creator-%d", m.countTag("dc:creator")+1)
	m.records = append(m.records, Record{
		Namespace: NamespaceDC,
		Tag:       "dc:creator",
		Text:      name,
		Attrs:     []Attr{{Name: "id", Value: id}},
	})
	if role != "" {
		m.records = append(m.records, Record{
			Namespace: NamespaceOPF,
			Tag:       "meta",
			Text:      role,
			Attrs: []Attr{
				{Name: "refines", Value: "#" + id},
				{Name: "property", Value: "role"},
				{Name: "scheme", Value: "marc:relators"},
			},
		})
	}
	if fileAs != "" {
		m.records = append(m.records, Record{
			Namespace: NamespaceOPF,
			Tag:       "meta",
			Text:      fileAs,
			Attrs: []Attr{
				{Name: "refines", Value: "#" + id},
				{Name: "property", Value: "file-as"},
			},
		})
	}
}

// AddDC appends a generic Dublin Core record for a qualified tag such
// as "dc:publisher".
func (m *Manager) AddDC(qualifiedTag, text string, attrs ...Attr) {
	m.records = append(m.records, Record{
		Namespace: NamespaceDC,
		Tag:       qualifiedTag,
		Text:      text,
		Attrs:     attrs,
	})
}

// AddMeta appends a meta record with a property attribute. refines may
// be empty.
func (m *Manager) AddMeta(property, value, refines string) {
	attrs := []Attr{{Name: "property", Value: property}}
	if refines != "" {
		attrs = append([]Attr{{Name: "refines", Value: refines}}, attrs...)
	}
	m.records = append(m.records, Record{
		Namespace: NamespaceOPF,
		Tag:       "meta",
		Text:      value,
		Attrs:     attrs,
	})
}

// AddLink appends a link record.
func (m *Manager) AddLink(href, rel, mediaType string) {
	attrs := []Attr{{Name: "rel", Value: rel}, {Name: "href", Value: href}}
	if mediaType != "" {
		attrs = append(attrs, Attr{Name: "media-type", Value: mediaType})
	}
	m.records = append(m.records, Record{Namespace: NamespaceOPF, Tag: "link", Attrs: attrs})
}

// FindDC returns the text of the first record with the given qualified
// tag.
func (m *Manager) FindDC(qualifiedTag string) (string, bool) {
	for _, r := range m.records {
		if r.Tag == qualifiedTag {
			return r.Text, true
		}
	}
	return "", false
}

// FindDCByID returns the text of the first record with the given tag
// and id attribute.
func (m *Manager) FindDCByID(qualifiedTag, id string) (string, bool) {
	for _, r := range m.records {
		if r.Tag == qualifiedTag && r.AttrValue("id") == id {
			return r.Text, true
		}
	}
	return "", false
}

// HasRecordWithID reports whether any record carries the given id
// attribute. Validation uses this to prove the unique-identifier
// reference resolves.
func (m *Manager) HasRecordWithID(id string) bool {
	for _, r := range m.records {
		if r.AttrValue("id") == id {
			return true
		}
	}
	return false
}

// EnsureModified sets the dcterms:modified meta record to the given
// time, replacing an existing one. Called on every seal.
func (m *Manager) EnsureModified(now time.Time) {
	stamp := now.UTC().Format(modifiedDateFormat)
	for i, r := range m.records {
		if r.Tag == "meta" && r.AttrValue("property") == "dcterms:modified" {
			m.records[i].Text = stamp
			return
		}
	}
	m.records = append(m.records, Record{
		Namespace: NamespaceOPF,
		Tag:       "meta",
		Text:      stamp,
		Attrs:     []Attr{{Name: "property", Value: "dcterms:modified"}},
	})
}

// SetRecords replaces the record list wholesale and binds idRef as the
// unique-identifier reference. Intended for restoring a parsed
// descriptor, not for incremental editing.
func (m *Manager) SetRecords(records []Record, idRef string) {
	m.records = append([]Record(nil), records...)
	m.idRef = idRef
}

// Records returns a copy of the ordered record list.
func (m *Manager) Records() []Record {
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

func (m *Manager) countTag(tag string) int {
	n := 0
	for _, r := range m.records {
		if r.Tag == tag {
			n++
		}
	}
	return n
}
