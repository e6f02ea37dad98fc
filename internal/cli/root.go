// Package cli wires configuration, the asset API and the store into the
// assets command line.
package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"editor-assets/internal/api"
	"editor-assets/internal/config"
	"editor-assets/internal/i18n"
	"editor-assets/internal/infra/logx"
	"editor-assets/internal/store"
	"editor-assets/internal/ui"
)

// Version is set at build time with -ldflags "-X editor-assets/internal/cli.Version=...".
var Version = "dev"

type flags struct {
	configPath string
	locale     string
	apiURL     string
	username   string
	debug      bool
}

// app holds what every subcommand shares once flags are parsed.
type app struct {
	cfg     config.Config
	tr      *i18n.Translator
	metrics *api.Metrics
	store   *store.Store
	logFile io.Closer
}

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the interactive list.
func NewRootCmd() *cobra.Command {
	root, _ := newRootCmd()
	return root
}

func newRootCmd() (*cobra.Command, *app) {
	var f flags
	a := &app{}

	root := &cobra.Command{
		Use:           "assets",
		Short:         "Browse and delete your uploaded sketch assets",
		Long:          "assets lists the files you uploaded to the web editor and lets you open or delete them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "set" {
				return nil
			}
			return a.init(cmd, f)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "path of the rc file (default ~/.assetsrc)")
	pf.StringVar(&f.locale, "locale", "", "message locale, e.g. en-US, es-419, ja")
	pf.StringVar(&f.apiURL, "api-url", "", "asset API base URL")
	pf.StringVar(&f.username, "username", "", "account name used for sketch links")
	pf.BoolVar(&f.debug, "debug", false, "write debug logs to debug.log")

	root.AddCommand(newListCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newVersionCmd())
	root.AddCommand(newConfigCmd(a, &f))
	return root, a
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	root, a := newRootCmd()
	if err := execute(root, a); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		os.Exit(1)
	}
}

// execute runs root and releases the log file and reports metrics even
// when the command failed.
func execute(root *cobra.Command, a *app) error {
	defer a.close()
	return root.Execute()
}

func (a *app) init(cmd *cobra.Command, f flags) error {
	path := f.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if f.locale != "" {
		cfg.Locale = f.locale
	}
	if f.apiURL != "" {
		cfg.APIURL = f.apiURL
	}
	if f.username != "" {
		cfg.Username = f.username
	}
	a.cfg = cfg

	if err := a.setupLogging(cmd, f.debug || os.Getenv("DEBUG") != ""); err != nil {
		return err
	}
	logx.RegisterSecret(cfg.Token)

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	a.tr = bundle.Translator(cfg.Locale)

	opts := api.DefaultTransportOptionsFromEnv()
	a.metrics = api.NewMetrics()
	opts.Metrics = a.metrics
	client := api.NewWithTransport(cfg.APIURL, cfg.Token, api.NewRetryingLimiterTransport(opts))
	a.store = store.New(client, cfg.Username)

	logx.With(logx.Fields{"api": cfg.APIURL, "locale": a.tr.Locale(), "rc": cfg.FromFile}).Debugf("configured")
	return nil
}

func (a *app) setupLogging(cmd *cobra.Command, debug bool) error {
	switch {
	case debug:
		f, err := tea.LogToFile("debug.log", "debug")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		a.logFile = f
		logx.SetOutput(f)
		logx.SetMinLevel(logx.LevelDebug)
		logx.SetVerbose(true)
	case cmd.Parent() == nil:
		// the TUI owns the terminal
		logx.SetOutput(nil)
	default:
		logx.SetOutput(cmd.ErrOrStderr())
		logx.SetMinLevel(logx.ParseLevel(a.cfg.LogLevel))
	}
	return nil
}

func (a *app) close() {
	if a.metrics != nil {
		logx.Infof("api metrics: %s", a.metrics.Snapshot())
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

func (a *app) runTUI() error {
	m := ui.New(ui.Deps{
		Store:      a.store,
		Translator: a.tr,
		Opener:     ui.BrowserOpener{},
		Clipboard:  ui.SystemClipboard{},
		SketchURL:  a.cfg.SketchURL,
	})
	defer m.Unmount()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
