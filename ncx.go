package bindery

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

const ncxNamespace = "http://www.daisy.org/z3986/2005/ncx/"

// ncxDocument is the legacy NCX index kept for EPUB 2 readers. The
// structs serve emission and, on load, parsing.
type ncxDocument struct {
	XMLName  xml.Name    `xml:"ncx"`
	Xmlns    string      `xml:"xmlns,attr"`
	Version  string      `xml:"version,attr"`
	Head     ncxHead     `xml:"head"`
	DocTitle ncxDocTitle `xml:"docTitle"`
	NavMap   ncxNavMap   `xml:"navMap"`
}

type ncxHead struct {
	Meta []ncxMeta `xml:"meta"`
}

type ncxMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type ncxDocTitle struct {
	Text string `xml:"text"`
}

type ncxNavMap struct {
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

type ncxNavPoint struct {
	ID        string        `xml:"id,attr"`
	PlayOrder string        `xml:"playOrder,attr"`
	Label     string        `xml:"navLabel>text"`
	Content   ncxContent    `xml:"content"`
	Children  []ncxNavPoint `xml:"navPoint"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// renderNCX emits the legacy index: a head carrying the unique
// identifier and the computed nesting depth, then one navPoint per TOC
// node numbered by pre-order traversal starting at 1. An empty forest
// yields (nil, nil): callers skip generation rather than fail.
func renderNCX(uid, title string, toc []*TOCEntry) ([]byte, error) {
	if len(toc) == 0 {
		return nil, nil
	}

	playOrder := 0
	var build func(entries []*TOCEntry) []ncxNavPoint
	build = func(entries []*TOCEntry) []ncxNavPoint {
		points := make([]ncxNavPoint, 0, len(entries))
		for _, e := range entries {
			playOrder++
			points = append(points, ncxNavPoint{
				ID:        fmt.Sprintf("navpoint-%d", playOrder),
				PlayOrder: strconv.Itoa(playOrder),
				Label:     e.Label,
				Content:   ncxContent{Src: e.Href},
				Children:  build(e.Children),
			})
		}
		return points
	}

	doc := ncxDocument{
		Xmlns:   ncxNamespace,
		Version: "2005-1",
		Head: ncxHead{Meta: []ncxMeta{
			{Name: "dtb:uid", Content: uid},
			{Name: "dtb:depth", Content: strconv.Itoa(tocDepth(toc))},
			{Name: "dtb:totalPageCount", Content: "0"},
			{Name: "dtb:maxPageNumber", Content: "0"},
		}},
		DocTitle: ncxDocTitle{Text: title},
		NavMap:   ncxNavMap{NavPoints: build(toc)},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("rendering ncx: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
