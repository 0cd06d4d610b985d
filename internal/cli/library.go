package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/wbkit/waymark/pkg/store"
)

// libraryCommand creates the library command group for managing saved
// snapshots.
func (c *CLI) libraryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage saved snapshots",
	}

	cmd.AddCommand(c.libraryListCommand())
	cmd.AddCommand(c.libraryShowCommand())
	cmd.AddCommand(c.libraryOpenCommand())
	cmd.AddCommand(c.libraryRemoveCommand())
	cmd.AddCommand(c.libraryExportCommand())

	return cmd
}

// libraryListCommand creates the "library list" subcommand.
func (c *CLI) libraryListCommand() *cobra.Command {
	var (
		target string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			recs, err := st.List(cmd.Context(), store.Filter{Target: target, Limit: limit})
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("Library is empty")
				return nil
			}

			t := table.New().
				Headers("ID", "TARGET", "CAPTURED", "TITLE", "SIZE").
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return styleTableHeader
					}
					if col == 0 {
						return StyleDim
					}
					return StyleValue
				})
			for _, rec := range recs {
				t.Row(shortID(rec.ID), rec.Target, formatTimestamp(rec.Timestamp), rec.Title, strconv.Itoa(rec.Length))
			}
			fmt.Println(t.Render())
			printDetail("%d saved snapshots", len(recs))
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "filter by target")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum records to list (0 = all)")
	return cmd
}

// libraryShowCommand creates the "library show" subcommand.
func (c *CLI) libraryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved snapshot's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := c.findRecord(cmd, st, args[0])
			if err != nil {
				return err
			}

			printKeyValue("id", rec.ID)
			printKeyValue("target", rec.Target)
			printKeyValue("captured", formatTimestamp(rec.Timestamp))
			printKeyValue("original", rec.OriginalURL)
			printKeyValue("snapshot", rec.SnapshotURL)
			if rec.Title != "" {
				printKeyValue("title", rec.Title)
			}
			printKeyValue("size", strconv.Itoa(rec.Length))
			printKeyValue("fetched", rec.FetchedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

// libraryOpenCommand creates the "library open" subcommand, writing the
// saved HTML out for a browser.
func (c *CLI) libraryOpenCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Write a saved snapshot's HTML to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := c.findRecord(cmd, st, args[0])
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = filepath.Join(os.TempDir(), fmt.Sprintf("waymark-%s.html", shortID(rec.ID)))
			}
			if err := os.WriteFile(path, []byte(rec.HTML), 0o644); err != nil {
				return err
			}

			printSuccess("Wrote saved snapshot")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (a temp file if empty)")
	return cmd
}

// libraryRemoveCommand creates the "library rm" subcommand.
func (c *CLI) libraryRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Remove saved snapshots",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, id := range args {
				rec, err := c.findRecord(cmd, st, id)
				if err != nil {
					return err
				}
				if err := st.Delete(cmd.Context(), rec.ID); err != nil {
					return err
				}
				printSuccess("Removed %s", StyleHighlight.Render(rec.Target))
			}
			return nil
		},
	}
}

// libraryExportCommand creates the "library export" subcommand, writing
// the full records (HTML included) as portable JSON.
func (c *CLI) libraryExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the library as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			summaries, err := st.List(cmd.Context(), store.Filter{})
			if err != nil {
				return err
			}

			// List omits bodies; re-read each record in full.
			records := make([]*store.Record, 0, len(summaries))
			for _, s := range summaries {
				rec, err := st.Get(cmd.Context(), s.ID)
				if err != nil {
					return err
				}
				records = append(records, rec)
			}

			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(records); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Exported %d records", len(records))
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

// findRecord resolves a full or shortened record ID. Short prefixes are
// accepted when they match exactly one record.
func (c *CLI) findRecord(cmd *cobra.Command, st store.Store, id string) (*store.Record, error) {
	rec, err := st.Get(cmd.Context(), id)
	if err == nil {
		return rec, nil
	}

	recs, listErr := st.List(cmd.Context(), store.Filter{})
	if listErr != nil {
		return nil, err
	}

	var match *store.Record
	for _, r := range recs {
		if len(id) >= 4 && len(r.ID) >= len(id) && r.ID[:len(id)] == id {
			if match != nil {
				return nil, fmt.Errorf("ambiguous id %q", id)
			}
			match = r
		}
	}
	if match == nil {
		return nil, err
	}
	return st.Get(cmd.Context(), match.ID)
}

// shortID abbreviates a UUID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
