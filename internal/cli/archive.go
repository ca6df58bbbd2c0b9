package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func archiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive ID...",
		Short: "Archive pending handoffs",
		Long: `Move handoffs from pending/ to archive/. Unique id prefixes are accepted.

Every id is checked before anything moves: if one is unknown or ambiguous,
nothing is archived.

Examples:
  xas archive 8f14e45f
  xas archive 8f14 c9f0`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			ids, err := ws.service.Archive(args)
			out := cmd.OutOrStdout()
			for _, id := range ids {
				fmt.Fprintf(out, "Archived %s\n", id[:min(8, len(id))])
			}
			return err
		},
	}
}
