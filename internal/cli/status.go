package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ohare93/xagentsync/internal/handoff"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show identity, the handoff in progress, and what is pending",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	report, err := ws.service.Status()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if GlobalOpts.JSON {
		counts := make(map[handoff.Field]int)
		for _, c := range report.WIPCounts {
			counts[c.Field] = c.Count
		}
		return printJSON(out, struct {
			Agent         string               `json:"agent,omitempty"`
			VCS           string               `json:"vcs"`
			WIP           *handoff.Summary     `json:"wip,omitempty"`
			WIPCounts     map[handoff.Field]int `json:"wip_counts,omitempty"`
			Pending       int                  `json:"pending"`
			PendingByMode map[handoff.Mode]int `json:"pending_by_mode"`
		}{report.Author, ws.backend.Type().String(), report.WIP, counts, report.Pending, report.PendingByMode})
	}

	if report.AuthorErr != nil {
		fmt.Fprintf(out, "Agent:    %s\n", StyleWarning.Render(report.AuthorErr.Error()))
	} else {
		fmt.Fprintf(out, "Agent:    %s\n", StyleHighlight.Render(report.Author))
	}
	fmt.Fprintf(out, "VCS:      %s\n", ws.backend.Type())
	fmt.Fprintf(out, "Sync dir: %s\n\n", ws.dir)

	if report.WIP == nil {
		fmt.Fprintln(out, StyleDim.Render("No handoff in progress."))
	} else {
		w := report.WIP
		fmt.Fprintf(out, "In progress: %s %s\n", GetModeStyle(w.Mode).Render(string(w.Mode)), w.Summary)
		fmt.Fprintf(out, "  started %s\n", StyleDim.Render(humanTime(w.CreatedAt, time.Now())))
		for _, c := range report.WIPCounts {
			fmt.Fprintf(out, "  %-14s %d\n", c.Field, c.Count)
		}
	}

	fmt.Fprintf(out, "\nPending: %d", report.Pending)
	if report.Pending > 0 {
		fmt.Fprint(out, " (")
		first := true
		for _, mode := range handoff.Modes {
			n := report.PendingByMode[mode]
			if n == 0 {
				continue
			}
			if !first {
				fmt.Fprint(out, ", ")
			}
			first = false
			fmt.Fprintf(out, "%s %d", GetModeStyle(mode).Render(string(mode)), n)
		}
		fmt.Fprint(out, ")")
	}
	fmt.Fprintln(out)
	return nil
}
