// Package cli wires the bookmark service to cobra commands. Running marks
// without a subcommand starts the terminal UI.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/browser"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/marks/internal/config"
	"github.com/nikbrunner/marks/internal/service"
	"github.com/nikbrunner/marks/internal/storage"
	"github.com/nikbrunner/marks/internal/tui"
)

// Options injects process dependencies. Zero values use the real ones.
type Options struct {
	OpenURL func(url string) error
}

// app carries the persistent flag values shared by every command.
type app struct {
	configPath string
	ephemeral  bool
	openURL    func(url string) error
}

// session is an opened service plus whatever has to be released afterwards.
type session struct {
	cfg     *config.Config
	svc     *service.BookmarkService
	log     *slog.Logger
	closeKV func() error
}

func (s *session) Close() error {
	return s.closeKV()
}

// NewRootCmd builds the marks command tree.
func NewRootCmd(opts Options) *cobra.Command {
	a := &app{openURL: opts.OpenURL}
	if a.openURL == nil {
		a.openURL = browser.OpenURL
	}

	rootCmd := &cobra.Command{
		Use:   "marks",
		Short: "A small bookmark manager for the terminal",
		Long: `marks keeps a flat list of bookmarks with a title, URL, description and tags.
Run it without arguments for the interactive UI, or use the subcommands
to script it. Bookmarks can be imported from and exported to the
Netscape bookmarks.html format every browser understands.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/marks/config.json)")
	rootCmd.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "keep bookmarks in memory only")

	rootCmd.AddCommand(
		a.newAddCmd(),
		a.newEditCmd(),
		a.newRmCmd(),
		a.newLsCmd(),
		a.newImportCmd(),
		a.newExportCmd(),
		a.newOpenCmd(),
		a.newCheckCmd(),
		a.newServeCmd(),
		a.newThemeCmd(),
	)

	return rootCmd
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute() int {
	if err := NewRootCmd(Options{}).Execute(); err != nil {
		return 1
	}
	return 0
}

func (a *app) loadConfig() (*config.Config, error) {
	path := a.configPath
	if path == "" {
		var err error
		path, err = config.DefaultConfigFilePath()
		if err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if a.ephemeral {
		cfg.Backend = storage.BackendMemory
	}
	return cfg, nil
}

// open loads config, opens the configured store and the service on top of
// it. newHandler builds the slog handler once the config is known.
func (a *app) open(newHandler func(cfg *config.Config, level slog.Level) slog.Handler) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(newHandler(cfg, level))

	kv, closeKV, err := storage.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	svc, err := service.Open(storage.NewRepository(kv), logger)
	if err != nil {
		_ = closeKV()
		return nil, err
	}
	if warn := svc.LoadWarning(); warn != nil {
		logger.Warn("starting with an empty collection", "error", warn)
	}

	return &session{cfg: cfg, svc: svc, log: logger, closeKV: closeKV}, nil
}

// openCLI opens a session that logs as text to the command's stderr.
func (a *app) openCLI(cmd *cobra.Command) (*session, error) {
	return a.open(func(_ *config.Config, level slog.Level) slog.Handler {
		return slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	})
}

// runTUI starts the interactive UI. The UI owns the terminal, so logs go to
// a file in the data directory, or nowhere if that file can't be opened.
func (a *app) runTUI() error {
	var logFile *os.File
	sess, err := a.open(func(cfg *config.Config, level slog.Level) slog.Handler {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return slog.DiscardHandler
		}
		f, err := os.OpenFile(cfg.LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return slog.DiscardHandler
		}
		logFile = f
		return slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	})
	if logFile != nil {
		defer logFile.Close()
	}
	if err != nil {
		return err
	}
	defer sess.Close()

	ui := tui.NewApp(tui.AppParams{
		Service:        sess.svc,
		Logger:         sess.log,
		ExportPath:     sess.cfg.ExportPath,
		SkipDuplicates: sess.cfg.SkipDuplicateImports,
		OpenURL:        a.openURL,
	})
	if _, err := tea.NewProgram(ui, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
