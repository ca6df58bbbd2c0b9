package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ohare93/xagentsync/internal/config"
	"github.com/ohare93/xagentsync/internal/store"
	"github.com/ohare93/xagentsync/internal/vcs"
)

func initCmd() *cobra.Command {
	var vcsFlag string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Prepare a directory for sharing handoffs",
		Long: `Create pending/, archive/ and .xas/ in the sync directory, write the
default .xas/config.yaml, and keep local-only state out of version control.

Running init again is safe; existing files are left alone.

Examples:
  xas init
  xas init --vcs jj
  xas --dir ~/handoffs init`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, vcsFlag)
		},
	}
	cmd.Flags().StringVar(&vcsFlag, "vcs", config.VCSAuto, "Version control to sync with (auto|git|jj)")
	return cmd
}

func runInit(cmd *cobra.Command, vcsFlag string) error {
	dir, err := GetWorkingDir()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	out := cmd.OutOrStdout()

	cfg := config.Default()
	cfg.VCS = vcsFlag
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := store.New(dir, newLogger(cmd.ErrOrStderr(), GlobalOpts.Verbose))
	if err != nil {
		return fmt.Errorf("failed to create sync directory: %w", err)
	}
	if err := st.EnsureGitignore(); err != nil {
		return err
	}
	written, err := config.WriteDefault(st.StateDir(), cfg)
	if err != nil {
		return err
	}
	if !written {
		// An existing config wins over --vcs; make sure it is usable.
		if cfg, err = config.ReadFile(st.StateDir()); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Initialized handoff directory in %s\n", st.Root())
	fmt.Fprintf(out, "  %s\n", StyleDim.Render(filepath.Base(st.PendingDir())+"/  handoffs waiting to be received"))
	fmt.Fprintf(out, "  %s\n", StyleDim.Render(filepath.Base(st.ArchiveDir())+"/  handoffs already received"))
	if written {
		fmt.Fprintf(out, "  %s\n", StyleDim.Render("wrote "+config.Path(st.StateDir())))
	} else {
		fmt.Fprintf(out, "  %s\n", StyleDim.Render("kept "+config.Path(st.StateDir())))
	}

	detected := vcs.Detect(st.Root(), cfg.VCSType())
	fmt.Fprintf(out, "\nSyncing with %s.\n", detected)
	if _, err := GetIdentity(st.StateDir()).CurrentAuthor(); err != nil {
		fmt.Fprintln(out, "Next: name this agent with 'xas whoami --set <name>'")
	}
	return nil
}
