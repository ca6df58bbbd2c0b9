package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ohare93/xagentsync/internal/tui"
	"github.com/ohare93/xagentsync/internal/watcher"
)

func browseCmd() *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:     "browse",
		Aliases: []string{"tui"},
		Short:   "Browse pending handoffs interactively",
		Long: `Open a terminal browser over the pending handoffs.

Select a handoff to read it as it will be received, press "a" to archive
it. The list refreshes when handoffs arrive or are archived by another
process or a sync.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			filter, err := ff.filter(time.Now())
			if err != nil {
				return err
			}

			// Live refresh is optional; the browser still works without it
			w, err := watcher.New()
			if err != nil {
				ws.log.Warn("live refresh disabled", "error", err)
				w = nil
			} else {
				defer w.Close()
				if err := w.WatchDirs(ws.store.PendingDir(), ws.store.ArchiveDir()); err != nil {
					ws.log.Warn("live refresh disabled", "error", err)
				} else {
					w.Start()
				}
			}
			return tui.Run(ws.service, filter, w)
		},
	}
	ff.register(cmd)
	return cmd
}
