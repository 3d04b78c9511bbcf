package bindery

import (
	"encoding/xml"
	"fmt"

	"github.com/tsawler/bindery/xhtml"
)

// navHTML is the EPUB 3 navigation document: an XHTML page whose body
// holds one toc nav region and, when landmarks exist, a hidden
// landmarks region.
type navHTML struct {
	XMLName   xml.Name `xml:"html"`
	Xmlns     string   `xml:"xmlns,attr"`
	XmlnsEpub string   `xml:"xmlns:epub,attr"`
	Lang      string   `xml:"xml:lang,attr,omitempty"`
	Head      navHead  `xml:"head"`
	Body      navBody  `xml:"body"`
}

type navHead struct {
	Title string `xml:"title"`
}

type navBody struct {
	Regions []navRegion `xml:"nav"`
}

type navRegion struct {
	Type    string   `xml:"epub:type,attr"`
	ID      string   `xml:"id,attr,omitempty"`
	Hidden  string   `xml:"hidden,attr,omitempty"`
	Heading string   `xml:"h1"`
	List    *navList `xml:"ol"`
}

type navList struct {
	Items []navListItem `xml:"li"`
}

type navListItem struct {
	Anchor navAnchor `xml:"a"`
	Sub    *navList  `xml:"ol"`
}

type navAnchor struct {
	Href string `xml:"href,attr"`
	Type string `xml:"epub:type,attr,omitempty"`
	Text string `xml:",chardata"`
}

// renderNavDoc emits the semantic navigation document for the given
// title, TOC forest, landmarks and language. Identical inputs produce
// identical bytes.
func renderNavDoc(title string, toc []*TOCEntry, landmarks []Landmark, language string) ([]byte, error) {
	doc := navHTML{
		Xmlns:     xhtml.NamespaceXHTML,
		XmlnsEpub: xhtml.NamespaceEPUB,
		Lang:      language,
		Head:      navHead{Title: "Table of Contents: " + title},
	}

	tocRegion := navRegion{
		Type:    LandmarkTOC,
		ID:      "toc",
		Heading: "Table of Contents",
		List:    buildNavList(toc),
	}
	doc.Body.Regions = append(doc.Body.Regions, tocRegion)

	if len(landmarks) > 0 {
		list := &navList{}
		for _, lm := range landmarks {
			list.Items = append(list.Items, navListItem{
				Anchor: navAnchor{Href: lm.Href, Type: lm.Type, Text: lm.Label},
			})
		}
		doc.Body.Regions = append(doc.Body.Regions, navRegion{
			Type:    "landmarks",
			Hidden:  "hidden",
			Heading: "Landmarks",
			List:    list,
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("rendering navigation document: %w", err)
	}
	result := append([]byte(xml.Header), []byte("<!DOCTYPE html>\n")...)
	return append(result, append(out, '\n')...), nil
}

func buildNavList(entries []*TOCEntry) *navList {
	list := &navList{}
	for _, e := range entries {
		item := navListItem{Anchor: navAnchor{Href: e.Href, Text: e.Label}}
		if len(e.Children) > 0 {
			item.Sub = buildNavList(e.Children)
		}
		list.Items = append(list.Items, item)
	}
	return list
}
