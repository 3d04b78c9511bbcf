package bindery

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tsawler/bindery/manifest"
)

const (
	mimetypeFileName = "mimetype"
	containerPath    = "META-INF/container.xml"
)

// seal regenerates the navigation document and the legacy index from
// the current TOC and landmark state, replacing prior content in place
// and preserving their fixed ids. It also refreshes the modification
// timestamp.
func (b *Builder) seal() error {
	b.meta.EnsureModified(time.Now())

	title, _ := b.meta.FindDC("dc:title")
	if title == "" {
		title = "Untitled"
	}
	lang := b.languageOrDefault()

	navContent, err := renderNavDoc(title, b.toc, b.landmarks, lang)
	if err != nil {
		return err
	}
	if existing := b.ItemByProperty(manifest.PropertyNav); existing != nil {
		existing.SetContent(navContent)
	} else {
		navItem, err := manifest.NewNav(navItemID, navContent)
		if err != nil {
			return err
		}
		if err := b.Register(navItem, true); err != nil {
			return err
		}
	}

	if !b.includeNCX {
		if existing := b.ncxItem(); existing != nil {
			if err := b.Remove(existing.ID); err != nil {
				return err
			}
		}
		return nil
	}

	ncxContent, err := renderNCX(b.ncxUID(), title, b.toc)
	if err != nil {
		return err
	}
	if ncxContent == nil {
		b.warn(WarnEmptyTOC, "skipping ncx generation: table of contents is empty")
		return nil
	}
	if existing := b.ncxItem(); existing != nil {
		existing.SetContent(ncxContent)
	} else {
		ncxItem, err := manifest.NewNCX(ncxItemID, ncxContent)
		if err != nil {
			return err
		}
		if err := b.Register(ncxItem, true); err != nil {
			return err
		}
	}
	return nil
}

// ncxItem returns the registered legacy index item, found by media
// type so loaded books keep their original id, or nil.
func (b *Builder) ncxItem() *manifest.Item {
	for _, id := range b.order {
		if b.items[id].MediaType == manifest.MediaTypeNCX {
			return b.items[id]
		}
	}
	return nil
}

// ncxUID resolves the identifier the legacy index's head references:
// the designated unique identifier, then any identifier, then a fresh
// UUID as a last resort.
func (b *Builder) ncxUID() string {
	if uid, ok := b.meta.FindDCByID("dc:identifier", b.meta.IdentifierRef()); ok {
		return uid
	}
	if uid, ok := b.meta.FindDC("dc:identifier"); ok {
		return uid
	}
	return "urn:uuid:" + uuid.NewString()
}

// validate checks the cross-entity invariants the archive depends on:
// required metadata with a resolvable unique-identifier binding, unique
// item paths, a non-empty spine with no dangling references, and a
// navigation document. A declared cover lacking its property and TOC
// entries pointing at unknown paths are only warnings.
func (b *Builder) validate() error {
	for _, tag := range []string{"dc:identifier", "dc:title", "dc:language"} {
		if text, ok := b.meta.FindDC(tag); !ok || text == "" {
			return fmt.Errorf("%w: %s", ErrMissingMetadata, tag)
		}
	}
	idRef := b.meta.IdentifierRef()
	if idRef == "" || !b.meta.HasRecordWithID(idRef) {
		return fmt.Errorf("%w: unique-identifier reference %q does not resolve", ErrMissingMetadata, idRef)
	}

	// Register rejects path collisions up front; this catches the ones
	// Reorganize can introduce by funnelling basenames together.
	paths := make(map[string]string, len(b.order))
	for _, id := range b.order {
		p := b.items[id].Href()
		if prev, dup := paths[p]; dup {
			return fmt.Errorf("%w: path %q shared by %q and %q", ErrDuplicateItem, p, prev, id)
		}
		paths[p] = id
	}

	if len(b.spine) == 0 {
		return ErrEmptySpine
	}
	for _, ref := range b.spine {
		if _, ok := b.items[ref.ItemID]; !ok {
			return fmt.Errorf("%w: spine itemref %q", ErrDanglingReference, ref.ItemID)
		}
	}

	if b.ItemByProperty(manifest.PropertyNav) == nil {
		return ErrMissingNav
	}

	if b.coverID != "" {
		cover, ok := b.items[b.coverID]
		if !ok {
			return fmt.Errorf("%w: cover %q", ErrDanglingReference, b.coverID)
		}
		if !cover.Properties.Has(manifest.PropertyCoverImage) {
			b.warn(WarnCoverProperty, "cover %q lacks the cover-image property", b.coverID)
		}
	}

	var checkTargets func([]*TOCEntry)
	checkTargets = func(entries []*TOCEntry) {
		for _, e := range entries {
			p := e.Href
			if i := strings.Index(p, "#"); i >= 0 {
				p = p[:i]
			}
			if p != "" {
				if _, ok := paths[p]; !ok {
					b.warn(WarnTOCTarget, "TOC entry %q points at unknown path %q", e.Label, p)
				}
			}
			checkTargets(e.Children)
		}
	}
	checkTargets(b.toc)
	return nil
}

// Save seals, validates and writes the book to path, creating parent
// directories as needed. The whole pipeline reports through a single
// error surface: any seal, validation, rendering or write failure
// aborts the save and carries its cause. A failure after container
// writing has begun may leave a partial file at path; treat a failed
// save as unusable rather than repairable.
func (b *Builder) Save(filePath string) ([]Warning, error) {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return b.Warnings(), fmt.Errorf("bindery: save: %w", err)
		}
	}
	f, err := os.Create(filePath)
	if err != nil {
		return b.Warnings(), fmt.Errorf("bindery: save: %w", err)
	}
	defer f.Close()

	warnings, err := b.Write(f)
	if err != nil {
		return warnings, err
	}
	if err := f.Close(); err != nil {
		return warnings, fmt.Errorf("bindery: save: %w: %v", ErrWrite, err)
	}
	return warnings, nil
}

// Write seals, validates and writes the archive to w. The first entry
// is the uncompressed mimetype marker, then the container pointer file,
// directory entries when folder layout is enabled, the package
// descriptor, and every resource's bytes. Resources with empty content
// are skipped with a warning.
func (b *Builder) Write(w io.Writer) ([]Warning, error) {
	if err := b.seal(); err != nil {
		return b.Warnings(), fmt.Errorf("bindery: save: %w", err)
	}
	if err := b.validate(); err != nil {
		return b.Warnings(), fmt.Errorf("bindery: save: %w", err)
	}

	containerContent, err := renderContainer(b.contentDir + "/" + opfFileName)
	if err != nil {
		return b.Warnings(), fmt.Errorf("bindery: save: %w", err)
	}
	ncxRef := ""
	if ncx := b.ncxItem(); ncx != nil && b.includeNCX {
		ncxRef = ncx.ID
	}
	opfContent, err := renderOPF(b.meta.IdentifierRef(), b.meta.Records(), b.Items(), b.spine, ncxRef)
	if err != nil {
		return b.Warnings(), fmt.Errorf("bindery: save: %w", err)
	}

	zw := zip.NewWriter(w)

	// The mimetype marker must be the first entry and stored without
	// compression so readers can identify the container by its leading
	// bytes.
	mw, err := zw.CreateHeader(&zip.FileHeader{
		Name:   mimetypeFileName,
		Method: zip.Store,
	})
	if err != nil {
		return b.Warnings(), b.writeFailed(zw, err)
	}
	if _, err := mw.Write([]byte(manifest.MediaTypeEPUB)); err != nil {
		return b.Warnings(), b.writeFailed(zw, err)
	}

	if err := writeZipFile(zw, containerPath, containerContent); err != nil {
		return b.Warnings(), b.writeFailed(zw, err)
	}

	if b.useFolderLayout {
		for _, dir := range b.subdirectories() {
			if _, err := zw.Create(dir); err != nil {
				return b.Warnings(), b.writeFailed(zw, err)
			}
		}
	}

	if err := writeZipFile(zw, b.contentDir+"/"+opfFileName, opfContent); err != nil {
		return b.Warnings(), b.writeFailed(zw, err)
	}

	for _, it := range b.Items() {
		if len(it.Content()) == 0 {
			b.warn(WarnEmptyContent, "item %q (%s) has no content, skipping", it.ID, it.Href())
			continue
		}
		if err := writeZipFile(zw, it.PathIn(b.contentDir), it.Content()); err != nil {
			return b.Warnings(), b.writeFailed(zw, err)
		}
	}

	if err := zw.Close(); err != nil {
		return b.Warnings(), fmt.Errorf("bindery: save: %w: %v", ErrWrite, err)
	}
	return b.Warnings(), nil
}

func (b *Builder) writeFailed(zw *zip.Writer, err error) error {
	zw.Close()
	return fmt.Errorf("bindery: save: %w: %v", ErrWrite, err)
}

func writeZipFile(zw *zip.Writer, name string, content []byte) error {
	fw, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = fw.Write(content)
	return err
}

// subdirectories returns the distinct archive directories holding
// resources, sorted, each with a trailing slash so they are written as
// directory entries before any file inside them.
func (b *Builder) subdirectories() []string {
	seen := make(map[string]struct{})
	for _, it := range b.Items() {
		dir := path.Dir(it.PathIn(b.contentDir))
		if dir == "." || dir == b.contentDir {
			continue
		}
		seen[dir+"/"] = struct{}{}
	}
	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// ContentDir returns the content root directory name used inside the
// archive.
func (b *Builder) ContentDir() string { return b.contentDir }

// OPFPath returns the package descriptor's path inside the archive.
func (b *Builder) OPFPath() string {
	return strings.Join([]string{b.contentDir, opfFileName}, "/")
}
