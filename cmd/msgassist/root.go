package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"msgassist/pkg/ai"
	"msgassist/pkg/assistant"
	"msgassist/pkg/config"
	"msgassist/pkg/logging"
	"msgassist/pkg/store"
	"msgassist/pkg/ui"
	"msgassist/pkg/version"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errAskFailed = errors.New("ask failed")

type rootOptions struct {
	configPath string
	storePath  string
	channelID  string

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "msgassist",
		Short: "Ask an AI model about messages in a chat channel",
		Long: `msgassist browses a channel's message history and asks an AI model about
any message, using the few messages before it as context. Answers stream
into a modal; run without a subcommand for the interactive browser.`,
		Version:       version.Summary(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowser(opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", config.GetConfigPath(), "config file path")
	root.PersistentFlags().StringVar(&opts.storePath, "store", "", "message store (.json export or .db/.sqlite); defaults to store_path from the config")
	root.PersistentFlags().StringVar(&opts.channelID, "channel", "", "channel or direct message ID")

	root.AddCommand(
		newAskCmd(opts),
		newContextCmd(opts),
		newImportCmd(opts),
		newBackendsCmd(),
		newVersionCmd(),
	)
	return root
}

// load reads the config and sets up logging. Every command runs it first.
func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", o.configPath, err)
	}
	if _, err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	o.cfg = cfg
	slog.Debug("config_loaded", "path", o.configPath, "backend", cfg.Backend)
	return nil
}

func (o *rootOptions) resolvedStorePath() (string, error) {
	path := strings.TrimSpace(o.storePath)
	if path == "" {
		path = strings.TrimSpace(o.cfg.StorePath)
	}
	if path == "" {
		return "", errors.New("no message store: pass --store or set store_path in the config")
	}
	return path, nil
}

func (o *rootOptions) requireChannel() error {
	if strings.TrimSpace(o.channelID) == "" {
		return errors.New("--channel is required")
	}
	return nil
}

// newAssistant opens the store and the configured backend. The caller closes
// the returned store.
func (o *rootOptions) newAssistant() (*assistant.Assistant, store.Store, error) {
	path, err := o.resolvedStorePath()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	completer, err := ai.GetCompleterFromConfig(o.cfg)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return assistant.New(st, completer, o.cfg), st, nil
}

func runBrowser(opts *rootOptions) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the interactive browser needs a terminal; use 'msgassist ask' in scripts")
	}
	if err := opts.requireChannel(); err != nil {
		return err
	}

	a, st, err := opts.newAssistant()
	if err != nil {
		return err
	}
	defer st.Close()

	slog.Info("browser_start", "channel_id", opts.channelID, "version", version.Summary())
	p := tea.NewProgram(ui.NewModel(a, opts.channelID, opts.configPath))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}
