package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ohare93/xagentsync/internal/app"
	"github.com/ohare93/xagentsync/internal/handoff"
	"github.com/ohare93/xagentsync/internal/vcs"
)

var modeDescriptions = map[handoff.Mode]string{
	handoff.ModeDeploy: "Hand off a deploy: what ships, how to verify it, how to roll back",
	handoff.ModeDebug:  "Hand off a debugging session: symptoms, hypotheses, what was tried",
	handoff.ModePlan:   "Hand off a plan: requirements, decisions, open questions",
}

// modeCmd builds the command group for one handoff mode.
func modeCmd(mode handoff.Mode) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(mode),
		Short: modeDescriptions[mode],
		Long: fmt.Sprintf(`%s.

Start with "xas %[2]s new", record facts as you learn them, then finish
with "xas %[2]s done". Only one handoff can be in progress at a time.`, modeDescriptions[mode], mode),
	}

	cmd.AddCommand(newHandoffCmd(mode))
	for _, fc := range fieldCommandsFor(mode) {
		cmd.AddCommand(fieldCmd(mode, fc))
	}
	cmd.AddCommand(summaryCmd(mode))
	cmd.AddCommand(showCmd(mode))
	cmd.AddCommand(doneCmd(mode))
	cmd.AddCommand(discardCmd(mode))
	return cmd
}

func newHandoffCmd(mode handoff.Mode) *cobra.Command {
	var (
		tags     []string
		ref      handoff.GitRef
		tldr     string
		mustKnow []string
		files    []string
		start    string
	)

	cmd := &cobra.Command{
		Use:     "new SUMMARY...",
		Aliases: []string{"start"},
		Short:   fmt.Sprintf("Start a %s handoff", mode),
		Long: fmt.Sprintf(`Start a %s handoff authored by the current agent.

The branch and commit of the sync directory are captured when available;
--branch, --commit and --pr replace the captured values. The warm-up flags
record the same facts as the tldr, must-know, priority-file and
suggest-start subcommands.`, mode),
		Example: fmt.Sprintf(`  xas %[1]s new "short headline" --tag auth --tag api
  xas %[1]s new "release 1.4" --pr 212 -k "feature flag is off in prod" -f cmd/api/main.go`, mode),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			opts := app.StartOptions{Tags: tags, Ref: ref}
			if tldr != "" {
				opts.Facts = append(opts.Facts, handoff.TLDR(tldr))
			}
			for _, item := range mustKnow {
				opts.Facts = append(opts.Facts, handoff.MustKnow(item))
			}
			for _, path := range files {
				opts.Facts = append(opts.Facts, handoff.PriorityFile{Path: path})
			}
			if start != "" {
				opts.Facts = append(opts.Facts, handoff.SuggestedStart(start))
			}

			h, err := ws.service.StartMode(mode, joinArgs(args), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Started %s handoff %s", GetModeStyle(mode).Render(string(mode)), StyleHighlight.Render(h.ShortID()))
			if h.Summary != "" {
				fmt.Fprintf(out, ": %s", h.Summary)
			}
			fmt.Fprintln(out)
			if h.Summary == "" {
				fmt.Fprintln(out, StyleDim.Render(fmt.Sprintf("Add a summary before finishing: xas %s summary <text>", mode)))
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringSliceVarP(&tags, "tag", "t", nil, "Tag the handoff (repeatable or comma-separated)")
	flags.StringVar(&ref.Branch, "branch", "", "Attach to this branch instead of the current one")
	flags.StringVar(&ref.Commit, "commit", "", "Attach to this commit instead of the current one")
	flags.StringVar(&ref.PR, "pr", "", "Attach to a pull request number")
	flags.StringVar(&tldr, "tldr", "", "The essential context in a sentence or two")
	flags.StringArrayVarP(&mustKnow, "know", "k", nil, "Something the next agent must know (repeatable)")
	flags.StringArrayVarP(&files, "file", "f", nil, "A file to read first, most important first (repeatable)")
	flags.StringVar(&start, "suggest-start", "", "Suggested first action for the next agent")
	return cmd
}

func fieldCmd(mode handoff.Mode, fc fieldCommand) *cobra.Command {
	var v fieldFlags

	cmd := &cobra.Command{
		Use:   fc.use,
		Short: fc.short,
		Args:  fc.args,
		RunE: func(cmd *cobra.Command, args []string) error {
			fact, err := fc.build(args, &v)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			if err := ws.service.AppendField(fact); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s\n", fc.field)
			return nil
		},
	}
	if fc.example != "" {
		cmd.Example = "  " + strings.ReplaceAll(fc.example, "<mode>", string(mode))
	}
	if fc.flags != nil {
		fc.flags(cmd.Flags(), &v)
	}
	return cmd
}

// currentOfMode returns the WIP handoff, refusing to act on one that was
// started under another mode.
func currentOfMode(ws *workspace, mode handoff.Mode) (*handoff.Handoff, error) {
	current, err := ws.service.Current()
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &handoff.ConflictError{Reason: handoff.ConflictNoWIP}
	}
	if current.Mode != mode {
		mismatch := &handoff.ModeMismatchError{FieldMode: mode, Active: current.Mode}
		return nil, fmt.Errorf("%w (%q); use 'xas %s ...' instead", mismatch, current.Summary, current.Mode)
	}
	return current, nil
}

func summaryCmd(mode handoff.Mode) *cobra.Command {
	return &cobra.Command{
		Use:   "summary TEXT...",
		Short: "Replace the headline of the handoff in progress",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			if _, err := currentOfMode(ws, mode); err != nil {
				return err
			}
			if err := ws.service.SetSummary(joinArgs(args)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Summary updated")
			return nil
		},
	}
}

func showCmd(mode handoff.Mode) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the handoff in progress as it will be received",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			current, err := currentOfMode(ws, mode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if GlobalOpts.JSON {
				return printJSON(out, current)
			}
			fmt.Fprint(out, renderMarkdown(out, handoff.Compile(current, time.Now())))
			return nil
		},
	}
}

func doneCmd(mode handoff.Mode) *cobra.Command {
	var noCommit bool

	cmd := &cobra.Command{
		Use:     "done",
		Aliases: []string{"finish"},
		Short:   "Finalize the handoff so other agents can receive it",
		Long: `Validate the handoff in progress and move it to pending/.

When auto_commit is on (the default) the sync directory is committed with
the message "xas handoff [<mode>]: <summary>". When auto_push is on the
commit is pushed too. Commit and push failures are reported but do not undo
the handoff; run "xas sync" to retry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			if _, err := currentOfMode(ws, mode); err != nil {
				return err
			}
			record, err := ws.service.FinalizeCurrent()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Handoff %s is pending: %s\n", StyleHighlight.Render(record.ShortID()), record.Summary)

			if noCommit || !ws.config.AutoCommit {
				return nil
			}
			shareRecord(cmd.Context(), cmd, ws, record)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCommit, "no-commit", false, "Skip the automatic commit")
	return cmd
}

// CommitMessage is the message used when a finalized handoff is committed.
func CommitMessage(h *handoff.Handoff) string {
	summary := strings.TrimSpace(strings.SplitN(h.Summary, "\n", 2)[0])
	return fmt.Sprintf("xas handoff [%s]: %s", h.Mode, summary)
}

// shareRecord commits, and optionally pushes, a freshly finalized record.
// Failures are warnings: the record is already stored locally.
func shareRecord(ctx context.Context, cmd *cobra.Command, ws *workspace, record *handoff.Handoff) {
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	syncer := vcs.NewSyncer(ws.backend, ws.dir, ws.config.Remote, ws.config.SyncRetries, ws.log)

	result, err := syncer.Commit(CommitMessage(record))
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), StyleWarning.Render("Warning: handoff not committed: "+firstLine(err.Error())))
		return
	}
	if result.CommitHash != "" {
		fmt.Fprintf(out, "Committed %s\n", StyleDim.Render(result.CommitHash))
	}

	if !ws.config.AutoPush {
		return
	}
	if err := syncer.Push(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), StyleWarning.Render("Warning: push failed: "+firstLine(err.Error())))
		return
	}
	fmt.Fprintf(out, "Pushed to %s\n", ws.config.Remote)
}

func firstLine(s string) string {
	return strings.TrimSpace(strings.SplitN(strings.TrimSpace(s), "\n", 2)[0])
}

func discardCmd(mode handoff.Mode) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "discard",
		Short: "Drop the handoff in progress without sharing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			current, err := currentOfMode(ws, mode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !yes {
				prompt := fmt.Sprintf("Discard %s handoff %q with %d entries?", current.Mode, current.Summary, current.Entries())
				ok, err := ConfirmSingleKey(out, prompt)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Kept.")
					return nil
				}
			}

			dropped, err := ws.service.DiscardCurrent()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Discarded %s handoff %s\n", dropped.Mode, dropped.ID[:min(8, len(dropped.ID))])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
