package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	apperrors "github.com/wbkit/waymark/pkg/errors"
	"github.com/wbkit/waymark/pkg/wayback"
)

// browseCommand creates the browse command, an interactive capture picker.
// Selecting a capture fetches it with the same flags fetch supports.
func (c *CLI) browseCommand() *cobra.Command {
	opts := fetchOpts{}
	limit := 50

	cmd := &cobra.Command{
		Use:   "browse <target>",
		Short: "Interactively pick and fetch a capture",
		Long: `Browse a target's captures in an interactive list and fetch the
selected one. Selection behaves like fetch: HTML goes to stdout or
--output, --extract prints metadata, --save stores the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd, args[0], limit, opts)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", limit, "maximum captures to browse")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.extractMeta, "extract", false, "print page metadata instead of HTML")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the snapshot to the library")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "keep the archive's injected toolbar and rewritten URLs")

	return cmd
}

func (c *CLI) runBrowse(cmd *cobra.Command, target string, limit int, opts fetchOpts) error {
	if err := apperrors.ValidateTarget(target); err != nil {
		return err
	}
	if err := apperrors.ValidateLimit(limit); err != nil {
		return err
	}

	ctx := cmd.Context()
	normalized := wayback.NormalizeTarget(target)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Querying captures of %s...", normalized))
	spinner.Start()
	snaps, err := c.newClient().Snapshots(ctx, target, wayback.SnapshotOptions{Limit: limit})
	spinner.Stop()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		printInfo("No captures found for %s", StyleHighlight.Render(normalized))
		return nil
	}

	model := NewSnapshotListModel(normalized, snaps)
	prog, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}

	final, ok := prog.(SnapshotListModel)
	if !ok || final.Selected == nil {
		return nil // quit without selecting
	}
	return c.fetchSnapshot(cmd, target, *final.Selected, opts)
}
