// Package xhtml provides the markup-level helpers the builder leans on:
// wrapping bare fragments in a document shell, injecting stylesheet
// links, and extracting headings for table-of-contents generation.
package xhtml

import (
	"bytes"
	"fmt"
	"strings"
)

// Namespace URIs used in generated documents.
const (
	NamespaceXHTML = "http://www.w3.org/1999/xhtml"
	NamespaceEPUB  = "http://www.idpf.org/2007/ops"
)

// IsDocument reports whether content already forms a complete XHTML
// document, i.e. opens with an XML declaration or a doctype.
func IsDocument(content []byte) bool {
	trimmed := bytes.TrimLeft(content, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return true
	}
	return len(trimmed) >= 2 && trimmed[0] == '<' && trimmed[1] == '!'
}

// WrapFragment wraps a markup fragment in a minimal well-formed XHTML
// document shell. stylesheets, if any, are emitted as link elements in
// the head, in order.
func WrapFragment(fragment []byte, title, language string, stylesheets []string) []byte {
	var links strings.Builder
	for _, href := range stylesheets {
		fmt.Fprintf(&links, "  <link rel=\"stylesheet\" type=\"text/css\" href=\"%s\" />\n", href)
	}
	langAttr := ""
	if language != "" {
		langAttr = fmt.Sprintf(" xml:lang=%q", language)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns=%q xmlns:epub=%q%s>
<head>
  <title>%s</title>
%s</head>
<body>
`, NamespaceXHTML, NamespaceEPUB, langAttr, escapeText(title), links.String())
	buf.Write(fragment)
	buf.WriteString("\n</body>\n</html>\n")
	return buf.Bytes()
}

// InjectStylesheets inserts link elements for the given hrefs just
// before the closing head tag of a complete document. Documents without
// a head are returned unchanged.
func InjectStylesheets(doc []byte, hrefs []string) []byte {
	if len(hrefs) == 0 {
		return doc
	}
	idx := indexCaseInsensitive(doc, "</head>")
	if idx < 0 {
		return doc
	}
	var links bytes.Buffer
	for _, href := range hrefs {
		fmt.Fprintf(&links, "<link rel=\"stylesheet\" type=\"text/css\" href=\"%s\" />\n", href)
	}
	out := make([]byte, 0, len(doc)+links.Len())
	out = append(out, doc[:idx]...)
	out = append(out, links.Bytes()...)
	out = append(out, doc[idx:]...)
	return out
}

func indexCaseInsensitive(b []byte, sub string) int {
	return bytes.Index(bytes.ToLower(b), []byte(strings.ToLower(sub)))
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
