package bindery

import (
	"fmt"
	"strings"
)

// Warning describes a non-fatal issue encountered while mutating or
// saving a book: a duplicate spine add, an empty-content resource
// skipped at write time, and so on. Warnings never abort an operation.
type Warning struct {
	// Code is a short stable identifier for the class of issue.
	Code string

	// Message is the human-readable description.
	Message string
}

func (w Warning) String() string {
	return w.Code + ": " + w.Message
}

// FormatWarnings joins warnings into a single printable string.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}

// Warning codes.
const (
	WarnNotSpineCandidate  = "not-spine-candidate"
	WarnDuplicateSpineItem = "duplicate-spine-item"
	WarnEmptyContent       = "empty-content"
	WarnFlattenUnsupported = "flatten-unsupported"
	WarnCoverProperty      = "cover-property"
	WarnCoverUndecodable   = "cover-undecodable"
	WarnEmptyTOC           = "empty-toc"
	WarnTOCTarget          = "toc-target"
	WarnNoHeadings         = "no-headings"
	WarnStylesheetMissing  = "stylesheet-missing"
	WarnLanguageTag        = "language-tag"
	WarnMimetype           = "mimetype"
	WarnHeadingExtraction  = "heading-extraction"
)

func (b *Builder) warn(code, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	b.warnings = append(b.warnings, Warning{Code: code, Message: msg})
	b.log.Warn().Str("code", code).Msg(msg)
}

// Warnings returns the warnings accumulated on this builder so far.
func (b *Builder) Warnings() []Warning {
	return append([]Warning(nil), b.warnings...)
}
