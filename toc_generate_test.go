package bindery

import (
	"strings"
	"testing"
)

func TestGenerateTOCFromContent(t *testing.T) {
	b := New()
	b.SetTitle("Structured")
	content := []byte(`<h1>Part One</h1>
<h2>Getting Started</h2>
<p>text</p>
<h2>Going Further</h2>
<h3>Detail</h3>`)
	if _, err := b.AddXHTML("ch1", "chapter1.xhtml", content, "Chapter"); err != nil {
		t.Fatal(err)
	}
	if err := b.AddToSpine("ch1", true); err != nil {
		t.Fatal(err)
	}

	b.GenerateTOCFromContent(3)

	toc := b.TOC()
	if len(toc) != 1 {
		t.Fatalf("got %d roots, want 1", len(toc))
	}
	root := toc[0]
	if root.Label != "Part One" {
		t.Errorf("root label = %q", root.Label)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root children = %d, want 2", len(root.Children))
	}
	if root.Children[1].Label != "Going Further" || len(root.Children[1].Children) != 1 {
		t.Errorf("nesting wrong: %+v", root.Children[1])
	}

	// Hrefs must point at the document with the assigned anchor.
	if !strings.HasPrefix(root.Href, "Text/chapter1.xhtml#") {
		t.Errorf("root href = %q", root.Href)
	}
	it, _ := b.Item("ch1")
	anchor := root.Href[strings.Index(root.Href, "#")+1:]
	if !strings.Contains(string(it.Content()), `id="`+anchor+`"`) {
		t.Errorf("anchor %q not written back into the content", anchor)
	}
}

func TestGenerateTOCMaxLevel(t *testing.T) {
	b := New()
	content := []byte("<h1>A</h1><h2>B</h2><h3>C</h3>")
	if _, err := b.AddXHTML("ch1", "ch1.xhtml", content, ""); err != nil {
		t.Fatal(err)
	}
	if err := b.AddToSpine("ch1", true); err != nil {
		t.Fatal(err)
	}

	b.GenerateTOCFromContent(2)

	if n := countEntries(b.TOC()); n != 2 {
		t.Errorf("entries = %d, want 2 with maxLevel 2", n)
	}
}

func TestGenerateTOCSpineOrder(t *testing.T) {
	b := New()
	for _, ch := range []struct{ id, name, heading string }{
		{"b", "b.xhtml", "<h1>Second</h1>"},
		{"a", "a.xhtml", "<h1>First</h1>"},
	} {
		if _, err := b.AddXHTML(ch.id, ch.name, []byte(ch.heading), ""); err != nil {
			t.Fatal(err)
		}
	}
	// Spine order differs from registration order.
	if err := b.AddToSpine("a", true); err != nil {
		t.Fatal(err)
	}
	if err := b.AddToSpine("b", true); err != nil {
		t.Fatal(err)
	}

	b.GenerateTOCFromContent(3)

	toc := b.TOC()
	if len(toc) != 2 || toc[0].Label != "First" || toc[1].Label != "Second" {
		t.Errorf("TOC should follow spine order, got %v, %v", toc[0].Label, toc[1].Label)
	}
}

func TestGenerateTOCEmptySpine(t *testing.T) {
	b := New()
	b.GenerateTOCFromContent(3)
	if !hasWarning(b, WarnEmptyTOC) {
		t.Error("empty spine should warn")
	}
}

func TestGenerateTOCNoHeadings(t *testing.T) {
	b := New()
	b.AddTOCEntry("Manual", "x.xhtml", nil)
	if _, err := b.AddXHTML("ch1", "ch1.xhtml", []byte("<p>prose only</p>"), ""); err != nil {
		t.Fatal(err)
	}
	if err := b.AddToSpine("ch1", true); err != nil {
		t.Fatal(err)
	}

	b.GenerateTOCFromContent(3)

	if !hasWarning(b, WarnNoHeadings) {
		t.Error("heading-free spine should warn")
	}
	if len(b.TOC()) != 1 || b.TOC()[0].Label != "Manual" {
		t.Error("existing TOC must survive when no headings are found")
	}
}
