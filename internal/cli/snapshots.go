package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	apperrors "github.com/wbkit/waymark/pkg/errors"
	"github.com/wbkit/waymark/pkg/wayback"
)

// snapshotsOpts holds the command-line flags for the snapshots command.
type snapshotsOpts struct {
	limit   int  // maximum index rows requested
	all     bool // include non-200 captures
	jsonOut bool // machine-readable output
}

// snapshotsCommand creates the snapshots command, listing archived captures
// of a target.
func (c *CLI) snapshotsCommand() *cobra.Command {
	opts := snapshotsOpts{limit: wayback.DefaultLimit}

	cmd := &cobra.Command{
		Use:   "snapshots <target>",
		Short: "List archived captures of a URL or domain",
		Long: `List the captures the archive holds for a URL or domain.

The target may be a full URL or a bare domain; both address the same
captures. Only status-200 captures are listed unless --all is given.

Examples:
  waymark snapshots example.com
  waymark snapshots https://example.com/page --limit 50
  waymark snapshots example.com --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSnapshots(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "l", opts.limit, "maximum captures to list")
	cmd.Flags().BoolVar(&opts.all, "all", false, "include captures with any HTTP status")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print captures as JSON")

	return cmd
}

func (c *CLI) runSnapshots(cmd *cobra.Command, target string, opts snapshotsOpts) error {
	if err := apperrors.ValidateTarget(target); err != nil {
		return err
	}
	if err := apperrors.ValidateLimit(opts.limit); err != nil {
		return err
	}

	logger := loggerFromContext(cmd.Context())
	normalized := wayback.NormalizeTarget(target)
	logger.Debugf("Querying index for %s", normalized)

	spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Querying captures of %s...", normalized))
	spinner.Start()
	snaps, err := c.newClient().Snapshots(cmd.Context(), target, wayback.SnapshotOptions{
		Limit:       opts.limit,
		AllStatuses: opts.all,
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	if opts.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	}

	if len(snaps) == 0 {
		printInfo("No captures found for %s", StyleHighlight.Render(normalized))
		return nil
	}

	fmt.Println(StyleTitle.Render(fmt.Sprintf("Captures of %s", normalized)))
	fmt.Println(snapshotTable(snaps))
	printDetail("%d captures", len(snaps))
	return nil
}

// snapshotTable renders captures as a lipgloss table.
func snapshotTable(snaps []wayback.Snapshot) string {
	t := table.New().
		Headers("CAPTURED", "STATUS", "ORIGINAL URL").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			if col == 0 {
				return StyleHighlight
			}
			return StyleValue
		})

	for _, s := range snaps {
		t.Row(formatTimestamp(s.Timestamp), formatStatus(s.StatusCode), s.OriginalURL)
	}
	return t.Render()
}

// formatTimestamp renders a 14-digit capture timestamp as a readable time.
// Shorter or malformed timestamps pass through unchanged.
func formatTimestamp(ts string) string {
	parsed, err := time.Parse("20060102150405", ts)
	if err != nil {
		return ts
	}
	return parsed.Format("2006-01-02 15:04:05")
}

// formatStatus renders the capture's HTTP status, "-" when the index did
// not report one.
func formatStatus(code *int) string {
	if code == nil {
		return "-"
	}
	return strconv.Itoa(*code)
}
