package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	apperrors "github.com/wbkit/waymark/pkg/errors"
	"github.com/wbkit/waymark/pkg/extract"
	"github.com/wbkit/waymark/pkg/store"
	"github.com/wbkit/waymark/pkg/wayback"
)

// fetchOpts holds the command-line flags for the fetch command.
type fetchOpts struct {
	timestamp   string // exact capture timestamp; latest when empty
	output      string // output file path (stdout if empty)
	extractMeta bool   // print metadata instead of HTML
	save        bool   // store the result in the library
	raw         bool   // keep the archive's injected toolbar and URL rewriting
}

// fetchCommand creates the fetch command, retrieving one capture's HTML.
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOpts

	cmd := &cobra.Command{
		Use:   "fetch <target>",
		Short: "Fetch the archived HTML of a capture",
		Long: `Fetch the archived HTML for a target's capture.

Without --timestamp the newest status-200 capture is fetched. The archive's
injected replay toolbar is stripped unless --raw is given.

Examples:
  waymark fetch example.com
  waymark fetch example.com --timestamp 20200101000000 -o page.html
  waymark fetch example.com --extract
  waymark fetch example.com --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.timestamp, "timestamp", "t", "", "capture timestamp (YYYYMMDDhhmmss, prefixes allowed)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.extractMeta, "extract", false, "print page metadata instead of HTML")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the snapshot to the library")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "keep the archive's injected toolbar and rewritten URLs")

	return cmd
}

func (c *CLI) runFetch(cmd *cobra.Command, target string, opts fetchOpts) error {
	if err := apperrors.ValidateTarget(target); err != nil {
		return err
	}
	if opts.timestamp != "" {
		if err := apperrors.ValidateTimestamp(opts.timestamp); err != nil {
			return err
		}
	}

	client := c.newClient()
	ctx := cmd.Context()

	spinner := newSpinnerWithContext(ctx, "Resolving capture...")
	spinner.Start()
	snap, err := client.ResolveSnapshot(ctx, target, opts.timestamp)
	spinner.Stop()
	if err != nil {
		return err
	}

	return c.fetchSnapshot(cmd, target, *snap, opts)
}

// fetchSnapshot fetches one resolved capture and handles output, metadata
// extraction, and saving. Shared by fetch and browse.
func (c *CLI) fetchSnapshot(cmd *cobra.Command, target string, snap wayback.Snapshot, opts fetchOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	client := c.newClient()

	logger.Debugf("Fetching %s", client.SnapshotURL(snap.Timestamp, snap.OriginalURL))

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching capture %s...", snap.Timestamp))
	spinner.Start()
	content, err := client.Content(ctx, snap)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Fetched %d bytes", content.Length))

	html := content.HTML
	if !opts.raw {
		stripped, err := extract.StripArchiveChrome(html)
		if err != nil {
			return fmt.Errorf("strip archive chrome: %w", err)
		}
		html = stripped
	}

	if opts.save {
		if err := c.saveSnapshot(cmd, target, snap, content, html); err != nil {
			return err
		}
	}

	if opts.extractMeta {
		meta, err := extract.Metadata(html)
		if err != nil {
			return fmt.Errorf("extract metadata: %w", err)
		}
		printMeta(snap, content, meta)
		return nil
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.WriteString(out, html); err != nil {
		return err
	}
	if opts.output != "" {
		printSuccess("Wrote capture %s", StyleHighlight.Render(snap.Timestamp))
		printFile(opts.output)
	}
	return nil
}

// saveSnapshot stores the fetched capture in the library. The stored HTML
// is the post-processed form the user saw.
func (c *CLI) saveSnapshot(cmd *cobra.Command, target string, snap wayback.Snapshot, content *wayback.Content, html string) error {
	st, err := c.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	rec := &store.Record{
		Target:      wayback.NormalizeTarget(target),
		Timestamp:   snap.Timestamp,
		OriginalURL: snap.OriginalURL,
		SnapshotURL: content.URL,
		Title:       extract.Title(html),
		HTML:        html,
		Length:      len(html),
	}
	if snap.StatusCode != nil {
		rec.StatusCode = *snap.StatusCode
	}
	if err := st.Save(cmd.Context(), rec); err != nil {
		return err
	}

	printSuccess("Saved to library")
	printDetail("id: %s", rec.ID)
	return nil
}

// printMeta renders extracted page metadata as key-value lines.
func printMeta(snap wayback.Snapshot, content *wayback.Content, meta *extract.Meta) {
	printKeyValue("captured", formatTimestamp(snap.Timestamp))
	printKeyValue("original", snap.OriginalURL)
	printKeyValue("snapshot", content.URL)
	printKeyValue("size", strconv.Itoa(content.Length))
	printKeyValue("title", meta.Title)
	if meta.Description != "" {
		printKeyValue("description", meta.Description)
	}
	if meta.Canonical != "" {
		printKeyValue("canonical", meta.Canonical)
	}
	printKeyValue("links", strconv.Itoa(meta.Links))
	if meta.Snippet != "" {
		printNewline()
		printDetail("%s", meta.Snippet)
	}
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
