package bindery

import (
	"encoding/xml"
	"fmt"

	"github.com/tsawler/bindery/manifest"
)

const containerNamespace = "urn:oasis:names:tc:opendocument:xmlns:container"

// containerXML is the structure of META-INF/container.xml, pointing
// readers at the package descriptor.
type containerXML struct {
	XMLName   xml.Name           `xml:"container"`
	Version   string             `xml:"version,attr"`
	Xmlns     string             `xml:"xmlns,attr"`
	Rootfiles containerRootfiles `xml:"rootfiles"`
}

type containerRootfiles struct {
	Rootfile []containerRootfile `xml:"rootfile"`
}

type containerRootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// renderContainer emits the container-root pointer file for the given
// descriptor path (relative to the archive root).
func renderContainer(opfPath string) ([]byte, error) {
	doc := containerXML{
		Version: "1.0",
		Xmlns:   containerNamespace,
		Rootfiles: containerRootfiles{
			Rootfile: []containerRootfile{{
				FullPath:  opfPath,
				MediaType: manifest.MediaTypeOPF,
			}},
		},
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("rendering container.xml: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
