package bindery

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/bindery/manifest"
	"github.com/tsawler/bindery/metadata"
)

// Load opens an existing book for further editing. Metadata, manifest,
// spine, table of contents and landmarks are all restored; a
// subsequent Save regenerates the navigation documents from the
// restored state. Folder layout is left off so loaded paths survive
// round-trips untouched; call Reorganize to impose it.
func Load(filePath string, opts ...Option) (*Builder, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("bindery: load: %w: %v", ErrInvalidArchive, err)
	}
	defer zr.Close()
	return loadArchive(&zr.Reader, opts...)
}

// LoadReader is Load for an in-memory or otherwise already-open
// archive.
func LoadReader(ra io.ReaderAt, size int64, opts ...Option) (*Builder, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("bindery: load: %w: %v", ErrInvalidArchive, err)
	}
	return loadArchive(zr, opts...)
}

func loadArchive(zr *zip.Reader, opts ...Option) (*Builder, error) {
	b := New(append([]Option{WithFolderLayout(false)}, opts...)...)

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	// A missing or wrong mimetype marker is tolerated: plenty of books
	// in the wild get this wrong and the descriptor is authoritative.
	if data, err := readZipFile(files, mimetypeFileName); err != nil {
		b.warn(WarnMimetype, "missing mimetype entry")
	} else if got := strings.TrimSpace(string(data)); got != manifest.MediaTypeEPUB {
		b.warn(WarnMimetype, "unexpected mimetype %q", got)
	}

	opfPath, err := locateOPF(files)
	if err != nil {
		return nil, fmt.Errorf("bindery: load: %w", err)
	}
	opfContent, err := readZipFile(files, opfPath)
	if err != nil {
		return nil, fmt.Errorf("bindery: load: %w: %s", ErrNoOPF, opfPath)
	}

	var pkg opfPackage
	if err := xml.Unmarshal(opfContent, &pkg); err != nil {
		return nil, fmt.Errorf("bindery: load: %w: %v", ErrInvalidOPF, err)
	}
	if dir := path.Dir(opfPath); dir != "." {
		b.contentDir = dir
	}

	restoreMetadata(b, &pkg)
	if err := restoreManifest(b, &pkg, files); err != nil {
		return nil, fmt.Errorf("bindery: load: %w", err)
	}
	restoreSpine(b, &pkg)
	restoreNavigation(b)
	return b, nil
}

func readZipFile(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("%q not in archive", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// locateOPF reads the container pointer file and returns the package
// descriptor's path. A rootfile with the descriptor media type wins;
// otherwise the first rootfile is taken.
func locateOPF(files map[string]*zip.File) (string, error) {
	data, err := readZipFile(files, containerPath)
	if err != nil {
		return "", ErrNoContainer
	}
	var container containerXML
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoContainer, err)
	}
	for _, rf := range container.Rootfiles.Rootfile {
		if (rf.MediaType == manifest.MediaTypeOPF || rf.MediaType == "") && rf.FullPath != "" {
			return rf.FullPath, nil
		}
	}
	if len(container.Rootfiles.Rootfile) > 0 && container.Rootfiles.Rootfile[0].FullPath != "" {
		return container.Rootfiles.Rootfile[0].FullPath, nil
	}
	return "", ErrNoRootfile
}

// restoreMetadata converts the parsed descriptor elements back into
// metadata records, folding resolved namespace URIs back to their
// prefixed names.
func restoreMetadata(b *Builder, pkg *opfPackage) {
	records := make([]metadata.Record, 0, len(pkg.Metadata.Elements))
	for _, el := range pkg.Metadata.Elements {
		rec := metadata.Record{
			Namespace: el.XMLName.Space,
			Tag:       qualifyName(el.XMLName),
			Text:      strings.TrimSpace(el.Text),
		}
		for _, a := range el.Attrs {
			rec.Attrs = append(rec.Attrs, metadata.Attr{
				Name:  qualifyAttr(a.Name),
				Value: a.Value,
			})
		}
		records = append(records, rec)
	}
	b.meta.SetRecords(records, pkg.UniqueIdentifier)
}

func restoreManifest(b *Builder, pkg *opfPackage, files map[string]*zip.File) error {
	for _, entry := range pkg.Manifest.Items {
		content, err := readZipFile(files, joinArchivePath(b.contentDir, entry.Href))
		if err != nil {
			// Keep the manifest entry so references stay resolvable;
			// Save will skip the empty content with its own warning.
			b.warn(WarnEmptyContent, "manifest item %q: %v", entry.ID, err)
		}
		it, err := manifest.FromArchive(entry.ID, entry.Href, entry.MediaType, content, strings.Fields(entry.Properties))
		if err != nil {
			return fmt.Errorf("%w: item %q: %v", ErrInvalidOPF, entry.ID, err)
		}
		if err := b.Register(it, false); err != nil {
			return fmt.Errorf("%w: item %q: %v", ErrInvalidOPF, entry.ID, err)
		}
		if it.Properties.Has(manifest.PropertyCoverImage) {
			b.coverID = it.ID
		}
	}
	return nil
}

func restoreSpine(b *Builder, pkg *opfPackage) {
	for _, ref := range pkg.Spine.ItemRefs {
		if ref.IDRef == "" {
			continue
		}
		b.spine = append(b.spine, spineRef{
			ItemID: ref.IDRef,
			Linear: ref.Linear != "no",
		})
	}
	if ncx := b.ncxItem(); ncx == nil {
		b.includeNCX = false
	}
}

// restoreNavigation rebuilds the TOC forest and landmarks from the
// navigation document, falling back to the legacy index when no nav
// document parses.
func restoreNavigation(b *Builder) {
	if nav := b.ItemByProperty(manifest.PropertyNav); nav != nil && len(nav.Content()) > 0 {
		toc, landmarks, err := parseNavDocument(nav.Content())
		if err == nil {
			b.toc = toc
			b.landmarks = landmarks
			return
		}
	}
	if ncx := b.ncxItem(); ncx != nil && len(ncx.Content()) > 0 {
		var doc ncxDocument
		if err := xml.Unmarshal(ncx.Content(), &doc); err == nil {
			b.toc = entriesFromNavPoints(doc.NavMap.NavPoints)
		}
	}
}

// parseNavDocument extracts the TOC forest and landmarks from a nav
// document. Parsing is tolerant: the nav regions are located by their
// epub:type attribute and anything unrecognized is skipped.
func parseNavDocument(content []byte) ([]*TOCEntry, []Landmark, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, nil, err
	}

	var toc []*TOCEntry
	var landmarks []Landmark

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "nav" {
			switch navType(n) {
			case "toc":
				if ol := findElement(n, "ol"); ol != nil {
					toc = parseNavList(ol)
				}
				return
			case "landmarks":
				landmarks = parseLandmarks(n)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return toc, landmarks, nil
}

func navType(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "epub:type" || attr.Key == "type" {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

func parseNavList(ol *html.Node) []*TOCEntry {
	var entries []*TOCEntry
	for c := ol.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		entry := &TOCEntry{}
		for g := c.FirstChild; g != nil; g = g.NextSibling {
			if g.Type != html.ElementNode {
				continue
			}
			switch g.Data {
			case "a":
				entry.Label = nodeText(g)
				entry.Href = attrVal(g, "href")
			case "span":
				if entry.Label == "" {
					entry.Label = nodeText(g)
				}
			case "ol":
				entry.Children = parseNavList(g)
			}
		}
		if entry.Label != "" || entry.Href != "" || len(entry.Children) > 0 {
			entries = append(entries, entry)
		}
	}
	return entries
}

func parseLandmarks(nav *html.Node) []Landmark {
	var out []Landmark
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			lm := Landmark{
				Label: nodeText(n),
				Href:  attrVal(n, "href"),
				Type:  navType(n),
			}
			if lm.Type != "" && lm.Href != "" {
				out = append(out, lm)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(nav)
	return out
}

func entriesFromNavPoints(points []ncxNavPoint) []*TOCEntry {
	entries := make([]*TOCEntry, 0, len(points))
	for _, p := range points {
		entries = append(entries, &TOCEntry{
			Label:    strings.TrimSpace(p.Label),
			Href:     p.Content.Src,
			Children: entriesFromNavPoints(p.Children),
		})
	}
	return entries
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return strings.TrimSpace(sb.String())
}

func joinArchivePath(contentDir, href string) string {
	href = strings.Split(href, "#")[0]
	if contentDir == "" || contentDir == "." {
		return path.Clean(href)
	}
	return path.Clean(contentDir + "/" + href)
}
