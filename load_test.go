package bindery

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

// createLegacyEPUB builds an EPUB 2 style archive in memory: no nav
// document, an NCX for navigation, and no mimetype entry.
func createLegacyEPUB(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	files := []struct {
		name    string
		content string
	}{
		{"META-INF/container.xml", `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="content/package.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`},
		{"content/package.opf", `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Legacy Book</dc:title>
    <dc:language>fr</dc:language>
    <dc:identifier id="bookid">urn:isbn:9780000000002</dc:identifier>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="ch1"/>
    <itemref idref="ncx" linear="no"/>
  </spine>
</package>`},
		{"content/toc.ncx", `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head><meta name="dtb:uid" content="urn:isbn:9780000000002"/></head>
  <docTitle><text>Legacy Book</text></docTitle>
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>Chapter One</text></navLabel>
      <content src="ch1.xhtml"/>
      <navPoint id="n2" playOrder="2">
        <navLabel><text>Section</text></navLabel>
        <content src="ch1.xhtml#s1"/>
      </navPoint>
    </navPoint>
  </navMap>
</ncx>`},
		{"content/ch1.xhtml", `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter One</title></head>
<body><h1 id="s1">Chapter One</h1><p>text</p></body>
</html>`},
	}
	for _, f := range files {
		fw, err := w.Create(f.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(f.content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestLoadLegacyEPUB(t *testing.T) {
	buf := createLegacyEPUB(t)
	b, err := LoadReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}

	if title, _ := b.Metadata().FindDC("dc:title"); title != "Legacy Book" {
		t.Errorf("title = %q", title)
	}
	if lang, _ := b.Metadata().FindDC("dc:language"); lang != "fr" {
		t.Errorf("language = %q", lang)
	}
	if b.Metadata().IdentifierRef() != "bookid" {
		t.Errorf("identifier ref = %q", b.Metadata().IdentifierRef())
	}
	if b.ContentDir() != "content" {
		t.Errorf("content dir = %q", b.ContentDir())
	}

	if !hasWarning(b, WarnMimetype) {
		t.Error("missing mimetype entry should warn")
	}

	// Non-linear spine entries keep their flag.
	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("manifest items = %d, want 2", len(items))
	}

	// No nav document: the TOC falls back to the NCX.
	toc := b.TOC()
	if len(toc) != 1 {
		t.Fatalf("TOC roots = %d, want 1", len(toc))
	}
	if toc[0].Label != "Chapter One" || toc[0].Href != "ch1.xhtml" {
		t.Errorf("root entry = %+v", toc[0])
	}
	if len(toc[0].Children) != 1 || toc[0].Children[0].Href != "ch1.xhtml#s1" {
		t.Errorf("nested entry = %+v", toc[0].Children)
	}
}

func TestLoadMissingContainer(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("mimetype")
	fw.Write([]byte("application/epub+zip"))
	w.Close()

	_, err := LoadReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if !errors.Is(err, ErrNoContainer) {
		t.Errorf("err = %v, want ErrNoContainer", err)
	}
}

func TestLoadInvalidOPF(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	cw, _ := w.Create("META-INF/container.xml")
	cw.Write([]byte(`<?xml version="1.0"?>
<container xmlns="urn:oasis:names:tc:opendocument:xmlns:container" version="1.0">
  <rootfiles><rootfile full-path="book.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`))
	ow, _ := w.Create("book.opf")
	ow.Write([]byte("<package><unclosed"))
	w.Close()

	_, err := LoadReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if !errors.Is(err, ErrInvalidOPF) {
		t.Errorf("err = %v, want ErrInvalidOPF", err)
	}
}

func TestParseNavDocument(t *testing.T) {
	nav := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head><title>nav</title></head>
<body>
<nav epub:type="toc" id="toc">
  <h1>Contents</h1>
  <ol>
    <li><a href="Text/a.xhtml">Alpha</a>
      <ol><li><a href="Text/a.xhtml#one">Alpha One</a></li></ol>
    </li>
    <li><span>Unlinked Heading</span>
      <ol><li><a href="Text/b.xhtml">Beta</a></li></ol>
    </li>
  </ol>
</nav>
<nav epub:type="landmarks" hidden="hidden">
  <h1>Landmarks</h1>
  <ol>
    <li><a epub:type="bodymatter" href="Text/a.xhtml">Start</a></li>
  </ol>
</nav>
</body>
</html>`)

	toc, landmarks, err := parseNavDocument(nav)
	if err != nil {
		t.Fatal(err)
	}
	if len(toc) != 2 {
		t.Fatalf("roots = %d, want 2", len(toc))
	}
	if toc[0].Label != "Alpha" || len(toc[0].Children) != 1 {
		t.Errorf("first root = %+v", toc[0])
	}
	if toc[1].Label != "Unlinked Heading" || toc[1].Href != "" {
		t.Errorf("span-labelled entry = %+v", toc[1])
	}
	if len(landmarks) != 1 || landmarks[0].Type != "bodymatter" || landmarks[0].Label != "Start" {
		t.Errorf("landmarks = %+v", landmarks)
	}
}
