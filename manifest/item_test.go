package manifest

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

// onePixelPNG returns a valid 1x1 PNG for image sniffing tests.
func onePixelPNG(t *testing.T) []byte {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(
		"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestNewXHTMLWrapsFragments(t *testing.T) {
	it, err := NewXHTML("ch1", "chapter1.xhtml", []byte("<h1>Hello</h1>"), "Chapter One", "en")
	if err != nil {
		t.Fatal(err)
	}

	content := string(it.Content())
	if !strings.HasPrefix(content, "<?xml") {
		t.Errorf("fragment was not wrapped, content starts with %q", content[:20])
	}
	if !strings.Contains(content, "<h1>Hello</h1>") {
		t.Error("wrapped document lost the fragment body")
	}
	if !strings.Contains(content, "<title>Chapter One</title>") {
		t.Error("wrapped document missing title from nav title")
	}
	if !it.SpineCandidate {
		t.Error("content document should be a spine candidate")
	}
}

func TestNewXHTMLKeepsCompleteDocuments(t *testing.T) {
	doc := []byte(`<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>T</title></head><body><p>x</p></body></html>`)

	it, err := NewXHTML("ch1", "chapter1.xhtml", doc, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(it.Content(), doc) {
		t.Error("complete document should be stored unchanged")
	}
	if it.NavTitle != "chapter1" {
		t.Errorf("NavTitle = %q, want fallback from file name", it.NavTitle)
	}
}

func TestNewImageSniffsContent(t *testing.T) {
	it, err := NewImage("img1", "cover", onePixelPNG(t), "")
	if err != nil {
		t.Fatal(err)
	}
	if it.MediaType != MediaTypePNG {
		t.Errorf("MediaType = %q, want %q", it.MediaType, MediaTypePNG)
	}
}

func TestNewImageRejectsNonImage(t *testing.T) {
	_, err := NewImage("img1", "notes.txt", []byte("plain text"), "")
	if !errors.Is(err, ErrInvalidItem) {
		t.Errorf("err = %v, want ErrInvalidItem", err)
	}
}

func TestNewFontRejectsWrongType(t *testing.T) {
	if _, err := NewFont("f1", "font.woff2", nil, ""); err != nil {
		t.Errorf("woff2 font rejected: %v", err)
	}
	if _, err := NewFont("f1", "font.png", nil, ""); !errors.Is(err, ErrInvalidItem) {
		t.Error("image media type should not build a font item")
	}
}

func TestNewAudioVideoTypeChecks(t *testing.T) {
	if _, err := NewAudio("a1", "track.mp3", nil, ""); err != nil {
		t.Errorf("mp3 audio rejected: %v", err)
	}
	if _, err := NewAudio("a1", "track.mp4", nil, ""); !errors.Is(err, ErrInvalidItem) {
		t.Error("video media type should not build an audio item")
	}
	it, err := NewVideo("v1", "clip.webm", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	it.ApplyFolderLayout()
	if it.Href() != "Video/clip.webm" {
		t.Errorf("Href = %q, want Video/clip.webm", it.Href())
	}
}

func TestNewScriptAddsScriptedProperty(t *testing.T) {
	it, err := NewScript("js1", "app.js", []byte("console.log(1)"))
	if err != nil {
		t.Fatal(err)
	}
	if !it.Properties.Has(PropertyScripted) {
		t.Error("script item missing scripted property")
	}
}

func TestNewItemValidation(t *testing.T) {
	cases := []struct {
		name string
		id   string
		file string
	}{
		{"empty id", "", "a.css"},
		{"empty file name", "c1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCSS(tc.id, tc.file, nil); !errors.Is(err, ErrInvalidItem) {
				t.Errorf("err = %v, want ErrInvalidItem", err)
			}
		})
	}
}

func TestApplyFolderLayout(t *testing.T) {
	it, err := NewCSS("style", "main.css", nil)
	if err != nil {
		t.Fatal(err)
	}
	it.ApplyFolderLayout()
	if got := it.Href(); got != "Styles/main.css" {
		t.Errorf("Href = %q, want Styles/main.css", got)
	}

	// Idempotent: a second application derives from the original name
	// instead of stacking subdirectories.
	it.ApplyFolderLayout()
	if got := it.Href(); got != "Styles/main.css" {
		t.Errorf("Href after second layout = %q, want Styles/main.css", got)
	}
}

func TestApplyFolderLayoutPinsNCX(t *testing.T) {
	it, err := NewNCX("ncx", []byte("<ncx/>"))
	if err != nil {
		t.Fatal(err)
	}
	it.ApplyFolderLayout()
	if got := it.Href(); got != NCXFileName {
		t.Errorf("NCX moved to %q, must stay at the content root", got)
	}
}

func TestSanitizeHref(t *testing.T) {
	it, err := NewCSS("style", `\Styles\..\main.css`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := it.Href(); got != "main.css" {
		t.Errorf("Href = %q, want main.css", got)
	}
}

func TestFromArchiveRestoresTraits(t *testing.T) {
	ch, err := FromArchive("ch1", "Text/ch1.xhtml", MediaTypeXHTML, []byte("<html/>"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ch.SpineCandidate {
		t.Error("loaded content document should be a spine candidate")
	}

	nav, err := FromArchive("nav", "nav.xhtml", MediaTypeXHTML, []byte("<html/>"), []string{"nav"})
	if err != nil {
		t.Fatal(err)
	}
	if nav.SpineCandidate {
		t.Error("loaded nav document should not be a spine candidate")
	}
	if !nav.Properties.Has(PropertyNav) {
		t.Error("nav property not restored")
	}

	ncx, err := FromArchive("ncx", "toc.ncx", MediaTypeNCX, []byte("<ncx/>"), nil)
	if err != nil {
		t.Fatal(err)
	}
	ncx.ApplyFolderLayout()
	if ncx.Href() != "toc.ncx" {
		t.Error("loaded NCX should stay pinned to the content root")
	}
}

func TestGuessMediaType(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"ch1.xhtml", MediaTypeXHTML},
		{"style.css", MediaTypeCSS},
		{"cover.JPG", MediaTypeJPEG},
		{"font.otf", MediaTypeOTF},
		{"unknown.bin", ""},
	}
	for _, tc := range cases {
		if got := GuessMediaType(tc.name); got != tc.want {
			t.Errorf("GuessMediaType(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestPropertySetString(t *testing.T) {
	ps := make(PropertySet)
	ps.Add(PropertyScripted)
	ps.Add(PropertyCoverImage)
	ps.Add(PropertyScripted) // duplicate

	if got := ps.String(); got != "cover-image scripted" {
		t.Errorf("String() = %q, want sorted space-joined set", got)
	}
	ps.Remove(PropertyScripted)
	if ps.Has(PropertyScripted) {
		t.Error("Remove did not remove the property")
	}
}

func TestPathIn(t *testing.T) {
	it, err := NewCSS("style", "Styles/main.css", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := it.PathIn("OEBPS"); got != "OEBPS/Styles/main.css" {
		t.Errorf("PathIn = %q", got)
	}
}
