package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ggonzalez94/evm-agent/internal/actions"
	"github.com/ggonzalez94/evm-agent/internal/cache"
	"github.com/ggonzalez94/evm-agent/internal/config"
	"github.com/ggonzalez94/evm-agent/internal/engine"
	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/ggonzalez94/evm-agent/internal/execution"
	"github.com/ggonzalez94/evm-agent/internal/execution/signer"
	"github.com/ggonzalez94/evm-agent/internal/httpx"
	"github.com/ggonzalez94/evm-agent/internal/logger"
	"github.com/ggonzalez94/evm-agent/internal/model"
	"github.com/ggonzalez94/evm-agent/internal/out"
	"github.com/ggonzalez94/evm-agent/internal/providers/dexscreener"
	"github.com/ggonzalez94/evm-agent/internal/providers/kyberswap"
	"github.com/ggonzalez94/evm-agent/internal/registry"
	"github.com/ggonzalez94/evm-agent/internal/schema"
	"github.com/ggonzalez94/evm-agent/internal/version"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type Runner struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

type runtimeState struct {
	runner      *Runner
	flags       config.GlobalFlags
	settings    config.Settings
	root        *cobra.Command
	lastCommand string
	log         *zap.Logger

	httpClient *httpx.Client
	actions    *actions.Registry
	cache      *cache.Store
	journal    *execution.Store
	client     *execution.NetworkClient
	engine     *engine.Engine
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r, log: zap.NewNop()}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.ExecuteContext(context.Background())
	err = normalizeRunError(err)
	if err != nil {
		state.renderError("", err)
	}
	state.close()
	if err != nil {
		return clierr.ExitCode(err)
	}
	return 0
}

func (s *runtimeState) close() {
	if s.client != nil {
		s.client.Close()
	}
	if s.journal != nil {
		_ = s.journal.Close()
	}
	if s.cache != nil {
		_ = s.cache.Close()
	}
	_ = logger.Sync()
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Agent-first EVM wallet and swap CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return clierr.Wrap(clierr.CodeConfiguration, "load configuration", err)
			}
			s.settings = settings
			s.lastCommand = trimRootPath(cmd.CommandPath())

			if err := logger.Init(logger.Config{Level: settings.LogLevel, Format: settings.LogFormat, OutputPaths: settings.LogOutputs}); err != nil {
				return clierr.Wrap(clierr.CodeConfiguration, "init logger", err)
			}
			s.log = logger.Named("cli")

			s.httpClient = httpx.New(settings.Timeout, settings.Retries)
			s.actions = actions.NewRegistry()
			s.actions.SetAllowlist(settings.EnableActions)
			// Contracts only; handlers are rebound once a network is connected.
			actions.RegisterBuiltin(s.actions, nil)
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	cmd.PersistentFlags().BoolVar(&s.flags.JSON, "json", false, "Output JSON (default)")
	cmd.PersistentFlags().BoolVar(&s.flags.Plain, "plain", false, "Output plain text")
	cmd.PersistentFlags().StringVar(&s.flags.Select, "select", "", "Select fields from data (comma-separated)")
	cmd.PersistentFlags().BoolVar(&s.flags.ResultsOnly, "results-only", false, "Output only data payload")
	cmd.PersistentFlags().StringVar(&s.flags.EnableActions, "enable-actions", "", "Allowlist action names (comma-separated)")
	cmd.PersistentFlags().StringVar(&s.flags.Network, "network", "", "Network to use (ethereum, base, polygon)")
	cmd.PersistentFlags().StringVar(&s.flags.RPCURL, "rpc-url", "", "Override the network's RPC endpoint")
	cmd.PersistentFlags().StringVar(&s.flags.KeySource, "key-source", "", "Signing key source (auto|env|file|keystore|mnemonic)")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "HTTP request timeout")
	cmd.PersistentFlags().IntVar(&s.flags.Retries, "retries", -1, "Retries per HTTP request")
	cmd.PersistentFlags().StringVar(&s.flags.ReceiptTimeout, "receipt-timeout", "", "Maximum wait for a transaction receipt")
	cmd.PersistentFlags().BoolVar(&s.flags.NoCache, "no-cache", false, "Disable cache reads and writes")
	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")
	cmd.PersistentFlags().StringVar(&s.flags.EnvFile, "env-file", "", "Path to a .env file with credentials")
	cmd.PersistentFlags().StringVar(&s.flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(s.newSchemaCommand())
	cmd.AddCommand(s.newActionsCommand())
	cmd.AddCommand(s.newNetworksCommand())
	cmd.AddCommand(s.newHistoryCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

func (s *runtimeState) newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Print machine-readable command and action schema",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := schema.BuildDocument(s.root, strings.Join(args, " "), s.actions.List())
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), doc)
		},
	}
}

func (s *runtimeState) newActionsCommand() *cobra.Command {
	root := &cobra.Command{Use: "actions", Short: "Agent action commands"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List actions and their parameters (no network required)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), s.actions.List())
		},
	}

	var params string
	run := &cobra.Command{
		Use:   "run <action> [params...]",
		Short: "Run an action with positional and/or JSON parameters",
		Long:  "Positional values bind to the action's parameters in declaration order. --params values override positional ones.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			kwargs, err := s.actions.Bind(name, args[1:])
			if err != nil {
				return err
			}
			extra, err := actions.DecodeKwargs(params)
			if err != nil {
				return err
			}
			for k, v := range extra {
				kwargs[k] = v
			}
			// Reject bad input before touching the network or the key.
			if _, err := s.actions.Validate(name, kwargs); err != nil {
				return err
			}
			if err := s.connect(cmd.Context()); err != nil {
				return err
			}
			s.log.Debug("dispatching action", zap.String("action", name))
			result, err := s.actions.Dispatch(cmd.Context(), name, kwargs)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), model.ActionResult{Action: name, Result: result})
		},
	}
	run.Flags().StringVar(&params, "params", "", "JSON object of action parameters")

	root.AddCommand(list)
	root.AddCommand(run)
	return root
}

func (s *runtimeState) newNetworksCommand() *cobra.Command {
	root := &cobra.Command{Use: "networks", Short: "Network commands"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List supported networks",
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]model.NetworkInfo, 0)
			for _, n := range registry.Networks() {
				info := model.NetworkInfo{
					Name:         n.Name,
					ChainID:      n.ChainID,
					RPCURL:       n.RPCURL,
					ExplorerHost: n.ExplorerHost,
				}
				if n.Name == s.settings.Network {
					info.Active = true
					if s.settings.RPCURL != "" {
						info.RPCURL = s.settings.RPCURL
					}
				}
				items = append(items, info)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), items)
		},
	}
	root.AddCommand(list)
	return root
}

func (s *runtimeState) newHistoryCommand() *cobra.Command {
	root := &cobra.Command{Use: "history", Short: "Inspect journaled on-chain actions"}

	var status string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := s.openJournal()
			if err != nil {
				return err
			}
			items, err := store.List(strings.TrimSpace(status), limit)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), items)
		},
	}
	list.Flags().StringVar(&status, "status", "", "Filter by status (planned, running, completed, failed)")
	list.Flags().IntVar(&limit, "limit", 20, "Maximum actions to return")

	show := &cobra.Command{
		Use:   "show <action-id>",
		Short: "Show one action and its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := s.openJournal()
			if err != nil {
				return err
			}
			item, err := store.Get(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), item)
		},
	}

	root.AddCommand(list)
	root.AddCommand(show)
	return root
}

func (s *runtimeState) openJournal() (*execution.Store, error) {
	if s.journal != nil {
		return s.journal, nil
	}
	store, err := execution.OpenStore(s.settings.JournalPath, s.settings.JournalLockPath)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "open action journal", err)
	}
	s.journal = store
	return store, nil
}

// connect builds the signer, the network client and the engine, then
// rebinds the action handlers to it.
func (s *runtimeState) connect(ctx context.Context) error {
	if s.engine != nil {
		return nil
	}
	network, err := registry.ResolveNetwork(s.settings.Network, s.settings.RPCURL)
	if err != nil {
		return err
	}
	txSigner, err := signer.NewLocalSignerFromEnv(s.settings.KeySource)
	if err != nil {
		return err
	}
	client, err := execution.Dial(ctx, network, execution.DialOptions{
		Attempts:       s.settings.ConnectAttempts,
		Backoff:        s.settings.ConnectBackoff,
		PollInterval:   s.settings.PollInterval,
		ReceiptTimeout: s.settings.ReceiptTimeout,
		Logger:         logger.Named("network"),
	})
	if err != nil {
		return err
	}
	s.client = client

	journal, err := s.openJournal()
	if err != nil {
		return err
	}
	if s.settings.CacheEnabled && s.cache == nil {
		store, err := cache.Open(s.settings.CachePath, s.settings.CacheLockPath)
		if err != nil {
			// Lookups still work uncached.
			s.log.Warn("token cache unavailable", zap.Error(err))
		} else {
			s.cache = store
		}
	}

	routes := kyberswap.New(s.httpClient, network.Name, s.settings.AggregatorBaseURL, s.settings.AggregatorClientID)
	tokens := dexscreener.New(s.httpClient, s.settings.DexScreenerBaseURL)
	s.engine = engine.New(execution.NewSubmitter(client, txSigner), routes, tokens, engine.Options{
		Journal: journal,
		Cache:   s.cache,
		Logger:  logger.Named("engine"),
	})
	actions.RegisterBuiltin(s.actions, s.engine)
	s.log.Info("agent ready", zap.String("network", network.Name), zap.String("address", txSigner.Address().Hex()))
	return nil
}

func (s *runtimeState) emitSuccess(commandPath string, data any) error {
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: true,
		Data:    data,
		Error:   nil,
		Meta:    s.meta(commandPath),
	}
	return out.Render(s.runner.stdout, env, s.settings)
}

func (s *runtimeState) meta(commandPath string) model.EnvelopeMeta {
	meta := model.EnvelopeMeta{
		RequestID: newRequestID(),
		Timestamp: s.runner.now().UTC(),
		Command:   commandPath,
		Cache:     model.CacheStatus{Status: "bypass"},
	}
	if s.engine != nil {
		meta.Network = s.engine.Network().Name
	}
	return meta
}

func (s *runtimeState) renderError(commandPath string, err error) {
	if strings.TrimSpace(commandPath) == "" {
		commandPath = s.lastCommand
		if commandPath == "" {
			commandPath = version.CLIName
		}
	}
	code := clierr.ExitCode(err)
	typ := "internal_error"
	message := err.Error()
	if cErr, ok := clierr.As(err); ok {
		typ = clierr.TypeName(cErr.Code)
	}
	s.log.Debug("command failed", zap.String("command", commandPath), zap.String("error_type", typ), zap.Error(err))

	settings := s.settings
	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	settings.ResultsOnly = false
	settings.SelectFields = nil
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: false,
		Data:    []any{},
		Error: &model.ErrorBody{
			Code:    code,
			Type:    typ,
			Message: message,
		},
		Meta: s.meta(commandPath),
	}
	_ = out.Render(s.runner.stderr, env, settings)
}

func newRequestID() string {
	return uuid.NewString()
}

func trimRootPath(path string) string {
	parts := strings.Fields(path)
	if len(parts) <= 1 {
		return path
	}
	return strings.Join(parts[1:], " ")
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
