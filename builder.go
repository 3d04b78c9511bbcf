package bindery

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tsawler/bindery/manifest"
	"github.com/tsawler/bindery/markdown"
	"github.com/tsawler/bindery/metadata"
	"github.com/tsawler/bindery/xhtml"
)

// Defaults for the archive layout.
const (
	DefaultContentDir = "OEBPS"
	DefaultLanguage   = "en"

	opfFileName = "content.opf"
	navItemID   = "nav"
	ncxItemID   = "ncx"
)

// spineRef is one entry in the reading order.
type spineRef struct {
	ItemID string
	Linear bool
}

// Builder assembles an EPUB: it owns the manifest registry, the spine,
// the table-of-contents forest, landmarks, the cover binding and the
// metadata records, and seals everything into an archive on Save.
//
// A Builder is not safe for concurrent use; callers needing concurrency
// must serialize access or use one Builder per goroutine.
type Builder struct {
	meta  *metadata.Manager
	items map[string]*manifest.Item
	order []string

	spine     []spineRef
	toc       []*TOCEntry
	landmarks []Landmark
	coverID   string

	useFolderLayout bool
	includeNCX      bool
	contentDir      string
	initialLang     string

	warnings []Warning
	log      zerolog.Logger
}

// New creates an empty book with an auto-generated urn:uuid identifier
// and the default language.
func New(opts ...Option) *Builder {
	b := &Builder{
		meta:            metadata.New(),
		items:           make(map[string]*manifest.Item),
		useFolderLayout: true,
		includeNCX:      true,
		contentDir:      DefaultContentDir,
		initialLang:     DefaultLanguage,
		log:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.meta.SetUniqueIdentifier("urn:uuid:"+uuid.NewString(), "book-id")
	b.SetLanguage(b.initialLang)
	return b
}

// Metadata returns the book's metadata registry for direct record
// manipulation. Prefer SetTitle, SetLanguage and AddCreator for the
// common cases.
func (b *Builder) Metadata() *metadata.Manager { return b.meta }

// SetTitle sets the book title (dc:title).
func (b *Builder) SetTitle(title string) { b.meta.SetTitle(title) }

// SetLanguage sets the book's primary language (dc:language). A code
// that does not parse as a BCP 47 tag is kept but recorded as a
// warning.
func (b *Builder) SetLanguage(code string) {
	if err := b.meta.SetLanguage(code); err != nil {
		b.warn(WarnLanguageTag, "%v", err)
	}
}

// SetUniqueIdentifier replaces the auto-generated unique identifier
// (UUID, ISBN, ...). refID is the id attribute the package element
// references; pass "" for the default.
func (b *Builder) SetUniqueIdentifier(value, refID string) {
	b.meta.SetUniqueIdentifier(value, refID)
}

// AddCreator adds a dc:creator with optional MARC relator role and
// file-as sort name.
func (b *Builder) AddCreator(name, role, fileAs string) {
	b.meta.AddCreator(name, role, fileAs)
}

// SetIncludeNCX controls whether a legacy toc.ncx is generated on save.
// Turning it off removes a previously generated NCX resource at seal
// time.
func (b *Builder) SetIncludeNCX(include bool) { b.includeNCX = include }

// Register adds an item to the manifest. It fails with ErrDuplicateItem
// when the id is taken and overwrite is false, or when another item
// already occupies the same path (folder layout funnels same-kind
// basenames into one subdirectory, so distinct source paths can
// collide). When folder layout is enabled the item's path is rewritten
// to its canonical subdirectory as a side effect.
func (b *Builder) Register(item *manifest.Item, overwrite bool) error {
	if item == nil {
		return fmt.Errorf("%w: nil item", ErrInvalidArgument)
	}
	if _, exists := b.items[item.ID]; exists && !overwrite {
		return fmt.Errorf("%w: %q", ErrDuplicateItem, item.ID)
	}
	if b.useFolderLayout {
		item.ApplyFolderLayout()
	}
	for _, id := range b.order {
		if id != item.ID && b.items[id].Href() == item.Href() {
			return fmt.Errorf("%w: path %q already registered as %q", ErrDuplicateItem, item.Href(), id)
		}
	}
	if _, exists := b.items[item.ID]; !exists {
		b.order = append(b.order, item.ID)
	}
	b.items[item.ID] = item
	return nil
}

// Item returns the manifest item with the given id.
func (b *Builder) Item(id string) (*manifest.Item, error) {
	it, ok := b.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	return it, nil
}

// ItemByProperty returns the first item carrying the given property, or
// nil.
func (b *Builder) ItemByProperty(property string) *manifest.Item {
	for _, id := range b.order {
		if b.items[id].Properties.Has(property) {
			return b.items[id]
		}
	}
	return nil
}

// Items returns all manifest items in registration order.
func (b *Builder) Items() []*manifest.Item {
	out := make([]*manifest.Item, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.items[id])
	}
	return out
}

// Remove deletes an item from the manifest and drops any spine entries
// referencing it. Nothing else cascades: TOC entries and landmarks
// reference items by path and are left untouched, and a cover binding
// pointing at the removed item stays so validation can flag it as a
// dangling reference.
func (b *Builder) Remove(id string) error {
	if _, ok := b.items[id]; !ok {
		return fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	delete(b.items, id)
	for i, oid := range b.order {
		if oid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	kept := b.spine[:0]
	for _, ref := range b.spine {
		if ref.ItemID != id {
			kept = append(kept, ref)
		}
	}
	b.spine = kept
	return nil
}

// AddToSpine appends an item to the reading order. Items that are not
// spine candidates are accepted with a warning; an id already in the
// spine is skipped with a warning.
func (b *Builder) AddToSpine(id string, linear bool) error {
	it, err := b.Item(id)
	if err != nil {
		return err
	}
	if !it.SpineCandidate {
		b.warn(WarnNotSpineCandidate, "item %q (%s) is not usually spine material", id, it.MediaType)
	}
	for _, ref := range b.spine {
		if ref.ItemID == id {
			b.warn(WarnDuplicateSpineItem, "item %q is already in the spine", id)
			return nil
		}
	}
	b.spine = append(b.spine, spineRef{ItemID: id, Linear: linear})
	return nil
}

// SpineItems returns the manifest items in spine order. Dangling
// references are skipped; validation reports them as fatal on save.
func (b *Builder) SpineItems() []*manifest.Item {
	out := make([]*manifest.Item, 0, len(b.spine))
	for _, ref := range b.spine {
		if it, ok := b.items[ref.ItemID]; ok {
			out = append(out, it)
		}
	}
	return out
}

// SetCover designates a registered image item as the cover. The
// cover-image property moves from any previous cover to the new one.
// When addLandmark is true and no cover landmark exists yet, one is
// appended pointing at the image.
func (b *Builder) SetCover(id string, addLandmark bool) error {
	it, err := b.Item(id)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(it.MediaType, "image/") {
		return fmt.Errorf("%w: item %q (%s) is not an image", ErrInvalidArgument, id, it.MediaType)
	}
	if it.MediaType != manifest.MediaTypeSVG {
		if cfg, format, err := manifest.SniffImage(it.Content()); err != nil {
			b.warn(WarnCoverUndecodable, "cover %q does not decode as an image: %v", id, err)
		} else {
			b.log.Debug().Str("format", format).Int("width", cfg.Width).Int("height", cfg.Height).
				Msg("cover image")
		}
	}
	if b.coverID != "" && b.coverID != id {
		if old, ok := b.items[b.coverID]; ok {
			old.Properties.Remove(manifest.PropertyCoverImage)
		}
	}
	it.Properties.Add(manifest.PropertyCoverImage)
	b.coverID = id

	if addLandmark {
		for _, lm := range b.landmarks {
			if lm.Type == LandmarkCover {
				return nil
			}
		}
		b.landmarks = append(b.landmarks, Landmark{Label: "Cover", Href: it.Href(), Type: LandmarkCover})
	}
	return nil
}

// Cover returns the current cover item, or nil if none is set.
func (b *Builder) Cover() *manifest.Item {
	if b.coverID == "" {
		return nil
	}
	return b.items[b.coverID]
}

// Reorganize switches the aggregate to folder layout: every resource's
// path is recomputed and all TOC and landmark references are rewritten
// through the resulting old-to-new path table, preserving fragments.
// Disabling folder layout on an organized aggregate is unsupported and
// does nothing beyond a warning.
func (b *Builder) Reorganize(useFolderLayout bool) {
	if !useFolderLayout {
		b.warn(WarnFlattenUnsupported, "disabling folder layout on an organized book is not supported")
		return
	}
	b.useFolderLayout = true

	moved := make(map[string]string)
	for _, id := range b.order {
		it := b.items[id]
		old := it.Href()
		it.ApplyFolderLayout()
		if it.Href() != old {
			moved[old] = it.Href()
		}
	}
	rewriteEntries(b.toc, moved)
	for i := range b.landmarks {
		b.landmarks[i].Href = rewriteHref(b.landmarks[i].Href, moved)
	}
}

// --- convenience content adders ---

// AddXHTML creates, registers and returns a markup content document. A
// bare fragment is wrapped in a document shell. Pass "" as id to
// auto-generate one. stylesheetIDs name already-registered CSS items to
// link from the document head; unknown ids are skipped with a warning.
func (b *Builder) AddXHTML(id, name string, content []byte, navTitle string, stylesheetIDs ...string) (*manifest.Item, error) {
	if id == "" {
		id = generateID("html")
	}
	hrefs := b.stylesheetHrefs(stylesheetIDs)
	if len(hrefs) > 0 && xhtml.IsDocument(content) {
		content = xhtml.InjectStylesheets(content, hrefs)
	} else if len(hrefs) > 0 {
		title := navTitle
		if title == "" {
			title = strings.TrimSuffix(name, ".xhtml")
		}
		content = xhtml.WrapFragment(content, title, b.languageOrDefault(), hrefs)
	}
	it, err := manifest.NewXHTML(id, name, content, navTitle, b.languageOrDefault())
	if err != nil {
		return nil, err
	}
	if err := b.Register(it, false); err != nil {
		return nil, err
	}
	return it, nil
}

// AddCSS creates, registers and returns a stylesheet item.
func (b *Builder) AddCSS(id, name string, content []byte) (*manifest.Item, error) {
	if id == "" {
		id = generateID("css")
	}
	it, err := manifest.NewCSS(id, name, content)
	if err != nil {
		return nil, err
	}
	if err := b.Register(it, false); err != nil {
		return nil, err
	}
	return it, nil
}

// AddImage creates, registers and returns an image item. Pass "" as
// mediaType to detect it from the name or content.
func (b *Builder) AddImage(id, name string, content []byte, mediaType string) (*manifest.Item, error) {
	if id == "" {
		id = generateID("img")
	}
	it, err := manifest.NewImage(id, name, content, mediaType)
	if err != nil {
		return nil, err
	}
	if err := b.Register(it, false); err != nil {
		return nil, err
	}
	return it, nil
}

// AddFont creates, registers and returns a font item.
func (b *Builder) AddFont(id, name string, content []byte, mediaType string) (*manifest.Item, error) {
	if id == "" {
		id = generateID("font")
	}
	it, err := manifest.NewFont(id, name, content, mediaType)
	if err != nil {
		return nil, err
	}
	if err := b.Register(it, false); err != nil {
		return nil, err
	}
	return it, nil
}

// AddScript creates, registers and returns a JavaScript item.
func (b *Builder) AddScript(id, name string, content []byte) (*manifest.Item, error) {
	if id == "" {
		id = generateID("js")
	}
	it, err := manifest.NewScript(id, name, content)
	if err != nil {
		return nil, err
	}
	if err := b.Register(it, false); err != nil {
		return nil, err
	}
	return it, nil
}

// AddMarkdown converts Markdown source to XHTML and registers it as a
// content document. The name must end in .xhtml or .html.
func (b *Builder) AddMarkdown(id, name string, source []byte, navTitle string) (*manifest.Item, error) {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".xhtml") && !strings.HasSuffix(lower, ".html") {
		return nil, fmt.Errorf("%w: markdown target %q must end in .xhtml or .html", ErrInvalidArgument, name)
	}
	if id == "" {
		id = generateID("md")
	}
	title := navTitle
	if title == "" {
		title = strings.TrimSuffix(strings.TrimSuffix(name, ".xhtml"), ".html")
	}
	content, err := markdown.ToXHTML(source, title, b.languageOrDefault())
	if err != nil {
		return nil, fmt.Errorf("bindery: %w", err)
	}
	it, err := manifest.NewXHTML(id, name, content, navTitle, "")
	if err != nil {
		return nil, err
	}
	if err := b.Register(it, false); err != nil {
		return nil, err
	}
	return it, nil
}

func (b *Builder) stylesheetHrefs(ids []string) []string {
	var hrefs []string
	for _, id := range ids {
		it, err := b.Item(id)
		if err != nil {
			b.warn(WarnStylesheetMissing, "stylesheet id %q not found, skipping link", id)
			continue
		}
		hrefs = append(hrefs, it.Href())
	}
	return hrefs
}

func (b *Builder) languageOrDefault() string {
	if lang, ok := b.meta.FindDC("dc:language"); ok && lang != "" {
		return lang
	}
	return DefaultLanguage
}

func generateID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
