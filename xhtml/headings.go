package xhtml

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Heading is one heading element found in a content document.
type Heading struct {
	// Level is the heading level, 1 through 6.
	Level int

	// Text is the heading's flattened text content.
	Text string

	// ID is the heading's anchor id. Assigned during extraction when
	// the element had none.
	ID string
}

// ExtractHeadings parses a content document and collects its headings
// up to and including maxLevel. Headings without an id attribute get
// one assigned so they can be linked from a table of contents; when
// that happens the second return value carries the re-serialized
// document, otherwise it is the input unchanged.
func ExtractHeadings(content []byte, maxLevel int) ([]Heading, []byte, error) {
	if maxLevel < 1 {
		maxLevel = 1
	}
	if maxLevel > 6 {
		maxLevel = 6
	}

	decl, body := splitXMLDeclaration(content)
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, content, fmt.Errorf("parsing content: %w", err)
	}

	seen := make(map[string]struct{})
	collectIDs(doc, seen)

	var headings []Heading
	changed := false
	counter := 0

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level, ok := headingLevel(n.Data); ok && level <= maxLevel {
				id := attrValue(n, "id")
				if id == "" {
					id = nextAnchorID(seen, &counter)
					n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: id})
					changed = true
				}
				headings = append(headings, Heading{
					Level: level,
					Text:  textContent(n),
					ID:    id,
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if !changed {
		return headings, content, nil
	}

	var buf bytes.Buffer
	buf.Write(decl)
	if err := html.Render(&buf, doc); err != nil {
		return nil, content, fmt.Errorf("rendering content: %w", err)
	}
	return headings, buf.Bytes(), nil
}

// splitXMLDeclaration separates a leading <?xml ...?> declaration from
// the rest of the document. The HTML parser would otherwise mangle the
// declaration into a comment.
func splitXMLDeclaration(content []byte) (decl, rest []byte) {
	trimmed := bytes.TrimLeft(content, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return nil, content
	}
	end := bytes.Index(trimmed, []byte("?>"))
	if end < 0 {
		return nil, content
	}
	decl = append(decl, trimmed[:end+2]...)
	decl = append(decl, '\n')
	return decl, bytes.TrimLeft(trimmed[end+2:], "\r\n")
}

func headingLevel(tag string) (int, bool) {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0'), true
	}
	return 0, false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func collectIDs(n *html.Node, seen map[string]struct{}) {
	if n.Type == html.ElementNode {
		if id := attrValue(n, "id"); id != "" {
			seen[id] = struct{}{}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectIDs(c, seen)
	}
}

func nextAnchorID(seen map[string]struct{}, counter *int) string {
	for {
		*counter++
		id := fmt.Sprintf("heading-%d", *counter)
		if _, taken := seen[id]; !taken {
			seen[id] = struct{}{}
			return id
		}
	}
}

// textContent flattens the text inside a node.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(textContent(c))
	}
	return strings.TrimSpace(text.String())
}
