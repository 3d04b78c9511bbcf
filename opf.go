package bindery

import (
	"encoding/xml"
	"fmt"

	"github.com/tsawler/bindery/manifest"
	"github.com/tsawler/bindery/metadata"
)

const (
	opfNamespace = "http://www.idpf.org/2007/opf"
	epubVersion  = "3.0"
)

// opfPackage is the package descriptor. The same structs serve
// emission and, on load, parsing.
type opfPackage struct {
	XMLName          xml.Name    `xml:"package"`
	Xmlns            string      `xml:"xmlns,attr"`
	XmlnsDC          string      `xml:"xmlns:dc,attr"`
	XmlnsDCTerms     string      `xml:"xmlns:dcterms,attr"`
	XmlnsOPF         string      `xml:"xmlns:opf,attr"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         opfManifest `xml:"manifest"`
	Spine            opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Elements []opfElement `xml:",any"`
}

// opfElement is one generic metadata element. On emission the XMLName
// carries a prefixed local name ("dc:title"); on parsing it carries the
// resolved namespace URI instead.
type opfElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

type opfSpine struct {
	Toc      string       `xml:"toc,attr,omitempty"`
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr,omitempty"`
}

// prefixByNamespace maps the namespace URIs the descriptor declares to
// their short prefixes. Parsed names in a recognized namespace are
// folded back to prefix form; anything else keeps its bare local name.
var prefixByNamespace = map[string]string{
	metadata.NamespaceDC:                   "dc",
	metadata.NamespaceDCTerms:              "dcterms",
	opfNamespace:                           "opf",
	"http://www.w3.org/XML/1998/namespace": "xml",
}

// qualifyName folds a parsed element name back to its prefixed form.
// Elements in the descriptor's default (OPF) namespace keep their bare
// names.
func qualifyName(n xml.Name) string {
	if n.Space == opfNamespace {
		return n.Local
	}
	if prefix, ok := prefixByNamespace[n.Space]; ok {
		return prefix + ":" + n.Local
	}
	return n.Local
}

// qualifyAttr folds a parsed attribute name. Attributes never inherit
// the default namespace, so one resolved into the OPF namespace really
// carried an opf: prefix and gets it back.
func qualifyAttr(n xml.Name) string {
	if prefix, ok := prefixByNamespace[n.Space]; ok {
		return prefix + ":" + n.Local
	}
	return n.Local
}

// renderOPF emits the package descriptor: metadata records in
// registration order, manifest entries in registry order, spine
// references in spine order. ncxID, when non-empty, becomes the
// spine's legacy toc attribute.
func renderOPF(idRef string, records []metadata.Record, items []*manifest.Item, spine []spineRef, ncxID string) ([]byte, error) {
	pkg := opfPackage{
		Xmlns:            opfNamespace,
		XmlnsDC:          metadata.NamespaceDC,
		XmlnsDCTerms:     metadata.NamespaceDCTerms,
		XmlnsOPF:         opfNamespace,
		Version:          epubVersion,
		UniqueIdentifier: idRef,
	}

	for _, rec := range records {
		el := opfElement{
			XMLName: xml.Name{Local: rec.Tag},
			Text:    rec.Text,
		}
		for _, a := range rec.Attrs {
			el.Attrs = append(el.Attrs, xml.Attr{
				Name:  xml.Name{Local: a.Name},
				Value: a.Value,
			})
		}
		pkg.Metadata.Elements = append(pkg.Metadata.Elements, el)
	}

	for _, it := range items {
		pkg.Manifest.Items = append(pkg.Manifest.Items, opfItem{
			ID:         it.ID,
			Href:       it.Href(),
			MediaType:  it.MediaType,
			Properties: it.Properties.String(),
		})
	}

	pkg.Spine.Toc = ncxID
	for _, ref := range spine {
		ir := opfItemRef{IDRef: ref.ItemID}
		if !ref.Linear {
			ir.Linear = "no"
		}
		pkg.Spine.ItemRefs = append(pkg.Spine.ItemRefs, ir)
	}

	out, err := xml.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("rendering package descriptor: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
