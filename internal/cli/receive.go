package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ohare93/xagentsync/internal/handoff"
	"github.com/ohare93/xagentsync/internal/watcher"
)

type receiveOptions struct {
	filterFlags
	raw     bool
	archive bool
	watch   bool
}

func receiveCmd() *cobra.Command {
	var opts receiveOptions

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Compile pending handoffs into one prompt",
		Long: `Render every pending handoff, newest first, as a single markdown prompt
for the agent picking up the work.

On a terminal the prompt is rendered for reading; piped output and --raw
print the markdown unchanged. --archive archives exactly the handoffs that
were printed. --watch keeps running and prints each new handoff as it
arrives in pending/.

Examples:
  xas receive
  xas receive --mode debug --archive
  xas receive --raw | claude -p
  xas receive --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReceive(cmd, &opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print markdown without terminal rendering")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "Archive the handoffs that were printed")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Keep watching for new handoffs")
	return cmd
}

func runReceive(cmd *cobra.Command, opts *receiveOptions) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	filter, err := opts.filter(time.Now())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	receipt, err := ws.service.Receive(filter, opts.archive)
	if err != nil {
		return err
	}
	if GlobalOpts.JSON {
		if err := printJSON(out, receipt.Handoffs); err != nil {
			return err
		}
	} else {
		printPrompt(cmd, opts, receipt.Prompt)
	}
	if len(receipt.Archived) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), StyleDim.Render(fmt.Sprintf("Archived %d handoff(s)", len(receipt.Archived))))
	}

	if !opts.watch {
		return nil
	}
	return watchPending(cmd, ws, opts, receipt.Handoffs)
}

func printPrompt(cmd *cobra.Command, opts *receiveOptions, prompt string) {
	out := cmd.OutOrStdout()
	if opts.raw {
		fmt.Fprint(out, prompt)
		return
	}
	fmt.Fprint(out, renderMarkdown(out, prompt))
}

// watchPending prints each handoff that arrives until interrupted.
func watchPending(cmd *cobra.Command, ws *workspace, opts *receiveOptions, shown []*handoff.Handoff) error {
	w, err := watcher.New()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.WatchDirs(ws.store.PendingDir(), ws.store.ArchiveDir()); err != nil {
		return err
	}
	w.Start()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(cmd.ErrOrStderr(), StyleDim.Render("Watching "+ws.store.PendingDir()+" (Ctrl+C to stop)"))
	seen := make(map[string]bool)
	for _, h := range shown {
		seen[h.Key()] = true
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors:
			ws.log.Warn("watcher error", "error", err)
		case e := <-w.Events:
			if e.Type != watcher.HandoffArrived {
				continue
			}
			if err := printArrivals(cmd, ws, opts, seen); err != nil {
				return err
			}
		}
	}
}

// printArrivals prints pending handoffs not shown before in this session.
func printArrivals(cmd *cobra.Command, ws *workspace, opts *receiveOptions, seen map[string]bool) error {
	filter, err := opts.filter(time.Now())
	if err != nil {
		return err
	}
	pending, err := ws.service.Pending(filter)
	if err != nil {
		return err
	}

	var fresh []*handoff.Handoff
	for _, h := range pending {
		if !seen[h.Key()] {
			seen[h.Key()] = true
			fresh = append(fresh, h)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	out := cmd.OutOrStdout()
	if GlobalOpts.JSON {
		if err := printJSON(out, fresh); err != nil {
			return err
		}
	} else {
		printPrompt(cmd, opts, handoff.CompileAll(fresh, time.Now()))
	}
	if opts.archive {
		ids := make([]string, len(fresh))
		for i, h := range fresh {
			ids[i] = h.ID
		}
		if _, err := ws.service.Archive(ids); err != nil {
			return err
		}
	}
	return nil
}
