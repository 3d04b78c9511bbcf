package metadata

import (
	"testing"
	"time"
)

func TestSetUniqueIdentifierReplaces(t *testing.T) {
	m := New()
	m.SetUniqueIdentifier("urn:uuid:first", "book-id")
	m.SetUniqueIdentifier("urn:isbn:9780000000001", "pub-id")

	ids := 0
	for _, rec := range m.Records() {
		if rec.Tag == "dc:identifier" {
			ids++
		}
	}
	if ids != 1 {
		t.Errorf("got %d identifier records, want 1", ids)
	}
	if m.IdentifierRef() != "pub-id" {
		t.Errorf("IdentifierRef = %q, want pub-id", m.IdentifierRef())
	}
	if got, ok := m.FindDCByID("dc:identifier", "pub-id"); !ok || got != "urn:isbn:9780000000001" {
		t.Errorf("FindDCByID = %q, %v", got, ok)
	}
}

func TestSetTitleReplacesFirst(t *testing.T) {
	m := New()
	m.SetTitle("Draft")
	m.SetTitle("Final")

	if got, _ := m.FindDC("dc:title"); got != "Final" {
		t.Errorf("dc:title = %q, want Final", got)
	}
	if n := len(m.Records()); n != 1 {
		t.Errorf("got %d records, want 1", n)
	}
}

func TestSetLanguageValidation(t *testing.T) {
	m := New()
	if err := m.SetLanguage("pt-BR"); err != nil {
		t.Errorf("valid tag rejected: %v", err)
	}
	// An invalid tag is reported but still stored.
	if err := m.SetLanguage("not a tag"); err == nil {
		t.Error("invalid tag accepted silently")
	}
	if got, _ := m.FindDC("dc:language"); got != "not a tag" {
		t.Errorf("dc:language = %q, invalid value should still be stored", got)
	}
}

func TestAddCreatorRefinements(t *testing.T) {
	m := New()
	m.AddCreator("Ada Writer", RoleAuthor, "Writer, Ada")
	m.AddCreator("Ed Itor", RoleEditor, "")

	recs := m.Records()
	var creators, roleMetas, fileAsMetas int
	for _, rec := range recs {
		switch {
		case rec.Tag == "dc:creator":
			creators++
		case rec.Tag == "meta" && rec.AttrValue("property") == "role":
			roleMetas++
			if rec.AttrValue("scheme") != "marc:relators" {
				t.Errorf("role meta scheme = %q", rec.AttrValue("scheme"))
			}
		case rec.Tag == "meta" && rec.AttrValue("property") == "file-as":
			fileAsMetas++
		}
	}
	if creators != 2 {
		t.Errorf("creators = %d, want 2", creators)
	}
	if roleMetas != 2 {
		t.Errorf("role metas = %d, want 2", roleMetas)
	}
	if fileAsMetas != 1 {
		t.Errorf("file-as metas = %d, want 1", fileAsMetas)
	}

	// Refinements must point back at their creator record's id.
	first := recs[0]
	if first.AttrValue("id") != "creator-1" {
		t.Errorf("first creator id = %q", first.AttrValue("id"))
	}
}

func TestEnsureModified(t *testing.T) {
	m := New()
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m.EnsureModified(now)
	m.EnsureModified(now.Add(time.Hour))

	var stamps []string
	for _, rec := range m.Records() {
		if rec.Tag == "meta" && rec.AttrValue("property") == "dcterms:modified" {
			stamps = append(stamps, rec.Text)
		}
	}
	if len(stamps) != 1 {
		t.Fatalf("got %d modified records, want 1", len(stamps))
	}
	if stamps[0] != "2026-03-14T10:26:53Z" {
		t.Errorf("modified = %q", stamps[0])
	}
}

func TestAddMetaRefines(t *testing.T) {
	m := New()
	m.AddMeta("display-seq", "1", "#title")
	rec := m.Records()[0]
	if rec.AttrValue("refines") != "#title" {
		t.Errorf("refines = %q", rec.AttrValue("refines"))
	}
	if rec.AttrValue("property") != "display-seq" {
		t.Errorf("property = %q", rec.AttrValue("property"))
	}
}

func TestSetRecords(t *testing.T) {
	m := New()
	m.SetTitle("old")
	m.SetRecords([]Record{
		{Namespace: NamespaceDC, Tag: "dc:identifier", Text: "id-1", Attrs: []Attr{{Name: "id", Value: "pub"}}},
		{Namespace: NamespaceDC, Tag: "dc:title", Text: "restored"},
	}, "pub")

	if n := len(m.Records()); n != 2 {
		t.Fatalf("got %d records, want 2", n)
	}
	if got, _ := m.FindDC("dc:title"); got != "restored" {
		t.Errorf("dc:title = %q", got)
	}
	if !m.HasRecordWithID("pub") {
		t.Error("HasRecordWithID(pub) = false")
	}
	if m.HasRecordWithID("missing") {
		t.Error("HasRecordWithID(missing) = true")
	}
}
