package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ohare93/xagentsync/internal/app"
	"github.com/ohare93/xagentsync/internal/vcs"
)

func syncCmd() *cobra.Command {
	var pullOnly bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull handoffs from other agents and push your own",
		Long: `Pull from the configured remote, then commit the sync directory and push.

Network failures are retried with exponential backoff (sync_retries in
.xas/config.yaml). Merge conflicts and missing remotes fail immediately.

Examples:
  xas sync
  xas sync --pull-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			syncer := vcs.NewSyncer(ws.backend, ws.dir, ws.config.Remote, ws.config.SyncRetries, ws.log)
			message := fmt.Sprintf("xas sync: %s", time.Now().UTC().Format("2006-01-02 15:04 UTC"))

			result, err := syncer.Sync(cmd.Context(), pullOnly, message)
			out := cmd.OutOrStdout()
			ok := color.New(color.FgGreen).SprintFunc()
			if result != nil {
				if result.Pulled {
					fmt.Fprintf(out, "%s pulled from %s\n", ok("✓"), ws.config.Remote)
				}
				if c := result.Commit; c != nil && c.CommitHash != "" {
					fmt.Fprintf(out, "%s committed %s\n", ok("✓"), c.CommitHash)
				}
				if result.Pushed {
					fmt.Fprintf(out, "%s pushed to %s\n", ok("✓"), ws.config.Remote)
				}
			}
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			pending, err := ws.service.ListPending(app.Filter{})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d pending handoff(s)\n", len(pending))
			return nil
		},
	}
	cmd.Flags().BoolVar(&pullOnly, "pull-only", false, "Only pull; do not commit or push")
	return cmd
}
