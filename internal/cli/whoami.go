package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ohare93/xagentsync/internal/identity"
)

// GetIdentity returns the identity provider for a state directory with the
// --agent override applied.
func GetIdentity(stateDir string) *identity.Provider {
	p := identity.New(stateDir)
	p.Override = GlobalOpts.Agent
	return p
}

func whoamiCmd() *cobra.Command {
	var setName string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show or set the agent identity",
		Long: `Show the agent name stamped on new handoffs, or set it with --set.

The name is stored in .xas/current_agent.json, which is never committed.
XAS_AGENT or --agent overrides it for a single command.

Examples:
  xas whoami
  xas whoami --set backend-agent
  XAS_AGENT=reviewer xas whoami`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cmd.Flags().Changed("set") {
				agent, err := ws.identity.Set(setName, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Agent identity set to %s\n", StyleHighlight.Render(agent.ID))
				return nil
			}

			name, err := ws.identity.CurrentAuthor()
			if errors.Is(err, identity.ErrNotSet) {
				fmt.Fprintln(out, "No agent identity set.")
				fmt.Fprintln(out, "Set one with: xas whoami --set <name>")
				return nil
			}
			if err != nil {
				return err
			}
			if GlobalOpts.JSON {
				return printJSON(out, map[string]string{"agent_id": name})
			}
			fmt.Fprintln(out, name)
			return nil
		},
	}
	cmd.Flags().StringVar(&setName, "set", "", "Set the agent name")
	return cmd
}
