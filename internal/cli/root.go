package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ohare93/xagentsync/internal/app"
	"github.com/ohare93/xagentsync/internal/config"
	"github.com/ohare93/xagentsync/internal/handoff"
	"github.com/ohare93/xagentsync/internal/identity"
	"github.com/ohare93/xagentsync/internal/store"
	"github.com/ohare93/xagentsync/internal/vcs"
)

// GlobalOptions holds global flags and path overrides
type GlobalOptions struct {
	Dir     string // Sync directory; defaults to the working directory
	Agent   string // Identity override, also read from XAS_AGENT
	Verbose bool   // Debug logging on stderr
	JSON    bool   // Machine-readable output where supported
}

// GlobalOpts holds the parsed global flags (exported for testing)
var GlobalOpts GlobalOptions

// NewRootCmd builds the xas command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xas",
		Short: "Hand off work between AI agents through a shared directory",
		Long: `xas lets one agent leave a structured handoff for the next one.

A handoff is built one fact at a time while you work, finalized with
"done", and shared through git or jj. The receiving agent compiles every
pending handoff into a single prompt.

Getting started:
  xas init                         # create pending/, archive/ and .xas/
  xas whoami --set backend-agent   # name yourself
  xas debug new "500 on large payloads"
  xas debug symptom "fails above 1MB"
  xas debug done
  xas receive                      # on the other side

Modes:
  deploy  what ships, how to verify it, how to roll back
  debug   symptoms, hypotheses, what was tried
  plan    requirements, decisions, open questions`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadGlobalOptions,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&GlobalOpts.Dir, "dir", "C", GlobalOpts.Dir, "Sync directory (default: current directory, env XAS_DIR)")
	pf.StringVar(&GlobalOpts.Agent, "agent", GlobalOpts.Agent, "Agent identity for this command (env XAS_AGENT)")
	pf.BoolVarP(&GlobalOpts.Verbose, "verbose", "v", GlobalOpts.Verbose, "Log debug output to stderr (env XAS_VERBOSE)")
	pf.BoolVar(&GlobalOpts.JSON, "json", GlobalOpts.JSON, "Output JSON where supported")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(statusCmd())
	for _, mode := range handoff.Modes {
		rootCmd.AddCommand(modeCmd(mode))
	}
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(receiveCmd())
	rootCmd.AddCommand(archiveCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(browseCmd())
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// loadGlobalOptions lets XAS_* environment variables fill flags that were
// not given on the command line.
func loadGlobalOptions(cmd *cobra.Command, args []string) error {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	for _, name := range []string{"dir", "agent", "verbose"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	GlobalOpts.Dir = v.GetString("dir")
	GlobalOpts.Agent = v.GetString("agent")
	GlobalOpts.Verbose = v.GetBool("verbose")
	return nil
}

// GetWorkingDir returns the sync directory, respecting the --dir override
func GetWorkingDir() (string, error) {
	if GlobalOpts.Dir != "" {
		return filepath.Abs(GlobalOpts.Dir)
	}
	return os.Getwd()
}

// workspace bundles what a command needs to operate on a sync directory.
type workspace struct {
	dir      string
	store    *store.Store
	config   config.Config
	identity *identity.Provider
	backend  vcs.VCS
	service  *app.Service
	log      *slog.Logger
}

// openWorkspace loads config and wires the service for the sync directory.
func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	dir, err := GetWorkingDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	log := newLogger(cmd.ErrOrStderr(), GlobalOpts.Verbose)

	st, err := store.New(dir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open sync directory: %w", err)
	}
	cfg, err := config.Load(viper.New(), st.StateDir())
	if err != nil {
		return nil, err
	}

	ids := GetIdentity(st.StateDir())
	backend := vcs.GetBackendForDir(dir, cfg.VCSType())

	svc := app.New(st, st.WIP(), ids, log)
	svc.Refs = func() (*handoff.GitRef, error) { return vcs.CurrentRef(backend, dir) }
	st.Now = svc.Now

	log.Debug("opened workspace", "dir", dir, "vcs", backend.Type())
	return &workspace{
		dir:      dir,
		store:    st,
		config:   cfg,
		identity: ids,
		backend:  backend,
		service:  svc,
		log:      log,
	}, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

