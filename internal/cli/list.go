package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ohare93/xagentsync/internal/app"
	"github.com/ohare93/xagentsync/internal/handoff"
)

// filterFlags are shared by list, receive and browse.
type filterFlags struct {
	mode  string
	since string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "Only handoffs of this mode (deploy|debug|plan)")
	cmd.Flags().StringVar(&f.since, "since", "", `Only handoffs created after this ("2h", "yesterday", "2026-10-01")`)
}

func (f *filterFlags) filter(now time.Time) (app.Filter, error) {
	var out app.Filter
	if f.mode != "" {
		mode, err := handoff.ParseMode(f.mode)
		if err != nil {
			return out, err
		}
		out.Mode = mode
	}
	since, err := parseSince(f.since, now)
	if err != nil {
		return out, err
	}
	out.Since = since
	return out, nil
}

func listCmd() *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pending handoffs",
		Long: `List the handoffs waiting to be received, newest first.

Examples:
  xas list
  xas list --mode debug
  xas list --since "3 hours ago" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			now := time.Now()
			filter, err := ff.filter(now)
			if err != nil {
				return err
			}
			summaries, err := ws.service.ListPending(filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if GlobalOpts.JSON {
				return printJSON(out, summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprint(out, handoff.NothingPending)
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(out)
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"ID", "Mode", "Summary", "From", "Created", "Entries", "Tags"})
			for _, s := range summaries {
				tw.AppendRow(table.Row{
					s.ID[:min(8, len(s.ID))],
					GetModeStyle(s.Mode).Render(string(s.Mode)),
					truncate(s.Summary, 50),
					s.Author,
					humanTime(s.CreatedAt, now),
					s.Entries,
					strings.Join(s.Tags, ","),
				})
			}
			tw.Render()
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func truncate(s string, n int) string {
	s = firstLine(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
