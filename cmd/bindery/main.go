// Command bindery assembles EPUB books from XHTML and Markdown sources
// and inspects existing ones.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tsawler/bindery"
)

var log zerolog.Logger

var rootCmd = &cobra.Command{
	Use:           "bindery",
	Short:         "Build and inspect EPUB books",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var buildCmd = &cobra.Command{
	Use:   "build [flags] file...",
	Short: "Assemble an EPUB from XHTML and Markdown files",
	Long: `Assemble an EPUB from content files, in argument order.
Markdown files (.md, .markdown) are converted to XHTML chapters;
.xhtml and .html files are added as-is. A table of contents is
generated from the headings in the content.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Print the metadata, manifest and table of contents of an EPUB",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var (
	buildOutput   string
	buildTitle    string
	buildAuthors  []string
	buildLanguage string
	buildCover    string
	buildCSS      string
	buildNoNCX    bool
	buildFlat     bool
	buildTOCDepth int
)

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "book.epub", "output file")
	buildCmd.Flags().StringVar(&buildTitle, "title", "", "book title (default: output file name)")
	buildCmd.Flags().StringSliceVar(&buildAuthors, "author", nil, "author name (repeatable)")
	buildCmd.Flags().StringVar(&buildLanguage, "lang", bindery.DefaultLanguage, "book language (BCP 47 tag)")
	buildCmd.Flags().StringVar(&buildCover, "cover", "", "cover image file")
	buildCmd.Flags().StringVar(&buildCSS, "css", "", "stylesheet applied to every chapter")
	buildCmd.Flags().BoolVar(&buildNoNCX, "no-ncx", false, "skip the EPUB 2 compatibility index")
	buildCmd.Flags().BoolVar(&buildFlat, "flat", false, "keep all resources at the content root")
	buildCmd.Flags().IntVar(&buildTOCDepth, "toc-depth", 3, "deepest heading level used for the table of contents")

	rootCmd.AddCommand(buildCmd, inspectCmd)
}

func main() {
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("failed")
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	title := buildTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(buildOutput), filepath.Ext(buildOutput))
	}

	b := bindery.New(
		bindery.WithLanguage(buildLanguage),
		bindery.WithNCX(!buildNoNCX),
		bindery.WithFolderLayout(!buildFlat),
		bindery.WithLogger(log),
	)
	b.SetTitle(title)
	for _, author := range buildAuthors {
		b.AddCreator(author, bindery.RoleAuthor, "")
	}

	var styleIDs []string
	if buildCSS != "" {
		content, err := os.ReadFile(buildCSS)
		if err != nil {
			return err
		}
		if _, err := b.AddCSS("style", filepath.Base(buildCSS), content); err != nil {
			return err
		}
		styleIDs = append(styleIDs, "style")
	}

	for i, arg := range args {
		content, err := os.ReadFile(arg)
		if err != nil {
			return err
		}
		id := fmt.Sprintf("chapter-%d", i+1)
		base := filepath.Base(arg)
		navTitle := strings.TrimSuffix(base, filepath.Ext(base))
		name := strings.TrimSuffix(base, filepath.Ext(base)) + ".xhtml"

		switch strings.ToLower(filepath.Ext(arg)) {
		case ".md", ".markdown":
			if _, err := b.AddMarkdown(id, name, content, navTitle); err != nil {
				return err
			}
		case ".xhtml", ".html", ".htm":
			if _, err := b.AddXHTML(id, name, content, navTitle, styleIDs...); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported content file %q (want .md, .xhtml or .html)", arg)
		}
		log.Debug().Str("id", id).Str("source", arg).Msg("added chapter")

		if err := b.AddToSpine(id, true); err != nil {
			return err
		}
	}

	if buildCover != "" {
		content, err := os.ReadFile(buildCover)
		if err != nil {
			return err
		}
		if _, err := b.AddImage("cover-image", filepath.Base(buildCover), content, ""); err != nil {
			return err
		}
		if err := b.SetCover("cover-image", true); err != nil {
			return err
		}
	}

	b.GenerateTOCFromContent(buildTOCDepth)

	warnings, err := b.Save(buildOutput)
	for _, w := range warnings {
		log.Warn().Str("code", w.Code).Msg(w.Message)
	}
	if err != nil {
		return err
	}
	log.Info().Str("output", buildOutput).Int("chapters", len(args)).Msg("book written")
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	b, err := bindery.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, rec := range b.Metadata().Records() {
		if rec.Text == "" {
			continue
		}
		fmt.Fprintf(out, "%-16s %s\n", rec.Tag, rec.Text)
	}

	fmt.Fprintln(out, "\nmanifest:")
	for _, it := range b.Items() {
		fmt.Fprintf(out, "  %s\n", it)
	}

	if toc := b.TOC(); len(toc) > 0 {
		fmt.Fprintln(out, "\ncontents:")
		printTOC(out, toc, 1)
	}
	return nil
}

func printTOC(out io.Writer, entries []*bindery.TOCEntry, depth int) {
	for _, e := range entries {
		fmt.Fprintf(out, "%s%s (%s)\n", strings.Repeat("  ", depth), e.Label, e.Href)
		printTOC(out, e.Children, depth+1)
	}
}
