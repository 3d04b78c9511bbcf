package bindery

import "github.com/rs/zerolog"

// Option configures a Builder at construction.
type Option func(*Builder)

// WithFolderLayout controls whether resources are organized into
// per-kind subdirectories (Text, Styles, Images, ...). Enabled by
// default.
func WithFolderLayout(enabled bool) Option {
	return func(b *Builder) { b.useFolderLayout = enabled }
}

// WithNCX controls whether a legacy toc.ncx index is generated for
// EPUB 2 readers. Enabled by default.
func WithNCX(include bool) Option {
	return func(b *Builder) { b.includeNCX = include }
}

// WithLanguage sets the book's initial language instead of the default
// "en".
func WithLanguage(code string) Option {
	return func(b *Builder) { b.initialLang = code }
}

// WithContentDir overrides the content root directory name inside the
// archive (default "OEBPS").
func WithContentDir(dir string) Option {
	return func(b *Builder) { b.contentDir = dir }
}

// WithLogger attaches a logger; warnings recorded on the builder are
// also emitted through it. The default logger discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Builder) { b.log = log }
}
