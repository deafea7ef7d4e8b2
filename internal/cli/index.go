package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docqa/internal/adapter/fs"
	"docqa/internal/adapter/webloader"
)

var indexCmd = &cobra.Command{
	Use:   "index [path|url]",
	Short: "Add documents to the knowledge base",
	Long: `Index a file, a directory of documents, or a single web page.

Directories are walked for .txt, .md and .pdf files (configurable via the
index.includes/index.excludes globs). A URL argument fetches the page and
indexes its readable text.

Examples:
  docqa index ./docs
  docqa index notes.md
  docqa index https://example.com/faq`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	target := args[0]
	ctx := cmd.Context()

	comps, err := openComponents(false)
	if err != nil {
		return err
	}
	defer comps.Close()

	if webloader.IsURL(target) {
		return indexURL(ctx, comps, target)
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", target, err)
	}
	if !info.IsDir() {
		doc, chunks, err := comps.ingest.IngestFile(ctx, target)
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %s (%d chunks)\n", doc.Name, chunks)
		return nil
	}

	walker := fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes)
	files, err := walker.Walk(target)
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", target, err)
	}
	if len(files) == 0 {
		fmt.Println("No matching documents found.")
		return nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
	)

	start := time.Now()
	indexed, chunks, failed := 0, 0, 0
	for _, f := range files {
		_, n, err := comps.ingest.IngestFile(ctx, f.Path)
		if err != nil {
			log.Warn("skipping file", "path", f.Path, "error", err)
			failed++
		} else {
			indexed++
			chunks += n
		}
		bar.Add(1)
	}
	fmt.Println()

	fmt.Printf("Indexed %d documents (%d chunks) in %s", indexed, chunks, time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		fmt.Printf(", %d skipped", failed)
	}
	fmt.Println()
	return nil
}

func indexURL(ctx context.Context, comps *components, pageURL string) error {
	loader := webloader.NewLoader(30 * time.Second)
	page, err := loader.Load(ctx, pageURL)
	if err != nil {
		return err
	}

	doc, chunks, err := comps.ingest.IngestContent(ctx, page.Title, page.URL, page.Text)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %s (%d chunks)\n", doc.Name, chunks)
	return nil
}
