package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type GlobalFlags struct {
	ConfigPath     string
	EnvFile        string
	JSON           bool
	Plain          bool
	Select         string
	ResultsOnly    bool
	EnableActions  string
	Network        string
	RPCURL         string
	KeySource      string
	Timeout        string
	Retries        int
	ReceiptTimeout string
	NoCache        bool
	LogLevel       string
}

type Settings struct {
	OutputMode         string
	SelectFields       []string
	ResultsOnly        bool
	EnableActions      []string
	Network            string
	RPCURL             string
	KeySource          string
	Timeout            time.Duration
	Retries            int
	ReceiptTimeout     time.Duration
	PollInterval       time.Duration
	ConnectAttempts    int
	ConnectBackoff     time.Duration
	AggregatorClientID string
	AggregatorBaseURL  string
	DexScreenerBaseURL string
	CacheEnabled       bool
	CachePath          string
	CacheLockPath      string
	JournalPath        string
	JournalLockPath    string
	LogLevel           string
	LogFormat          string
	LogOutputs         []string
}

type fileConfig struct {
	Output          string   `yaml:"output"`
	Network         string   `yaml:"network"`
	RPC             string   `yaml:"rpc"`
	KeySource       string   `yaml:"key_source"`
	Timeout         string   `yaml:"timeout"`
	Retries         *int     `yaml:"retries"`
	EnableActions   []string `yaml:"enable_actions"`
	ReceiptTimeout  string   `yaml:"receipt_timeout"`
	PollInterval    string   `yaml:"poll_interval"`
	ConnectAttempts *int     `yaml:"connect_attempts"`
	ConnectBackoff  string   `yaml:"connect_backoff"`
	Aggregator      struct {
		ClientID string `yaml:"client_id"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"aggregator"`
	DexScreener struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"dexscreener"`
	Cache struct {
		Enabled  *bool  `yaml:"enabled"`
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"cache"`
	Journal struct {
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"journal"`
	Log struct {
		Level   string   `yaml:"level"`
		Format  string   `yaml:"format"`
		Outputs []string `yaml:"outputs"`
	} `yaml:"log"`
}

func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}

	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	if err := loadDotEnv(flags.EnvFile); err != nil {
		return Settings{}, err
	}
	applyEnv(&settings)

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 15 * time.Second
	}
	if settings.Retries < 0 {
		settings.Retries = 0
	}
	if settings.ReceiptTimeout <= 0 {
		settings.ReceiptTimeout = 3 * time.Minute
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = 2 * time.Second
	}
	if settings.ConnectAttempts <= 0 {
		settings.ConnectAttempts = 3
	}
	if settings.ConnectBackoff < 0 {
		settings.ConnectBackoff = time.Second
	}

	return settings, nil
}

func defaultSettings() (Settings, error) {
	cachePath, lockPath, err := defaultCachePaths()
	if err != nil {
		return Settings{}, err
	}
	cacheDir := filepath.Dir(cachePath)
	return Settings{
		OutputMode:         "json",
		Network:            "ethereum",
		KeySource:          "auto",
		Timeout:            15 * time.Second,
		Retries:            2,
		ReceiptTimeout:     3 * time.Minute,
		PollInterval:       2 * time.Second,
		ConnectAttempts:    3,
		ConnectBackoff:     time.Second,
		AggregatorClientID: "evm-agent",
		CacheEnabled:       true,
		CachePath:          cachePath,
		CacheLockPath:      lockPath,
		JournalPath:        filepath.Join(cacheDir, "journal.db"),
		JournalLockPath:    filepath.Join(cacheDir, "journal.lock"),
		LogLevel:           "info",
		LogFormat:          "console",
	}, nil
}

func resolveConfigPath(input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "evm-agent", "config.yaml"), nil
}

func defaultCachePaths() (string, string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "evm-agent")
	return filepath.Join(dir, "cache.db"), filepath.Join(dir, "cache.lock"), nil
}

// loadDotEnv populates the process environment from a .env file without
// overriding variables that are already set. A missing default file is fine.
func loadDotEnv(path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("parse env file: %w", err)
	}
	return nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.Network != "" {
		settings.Network = strings.ToLower(cfg.Network)
	}
	if cfg.RPC != "" {
		settings.RPCURL = cfg.RPC
	}
	if cfg.KeySource != "" {
		settings.KeySource = cfg.KeySource
	}
	if len(cfg.EnableActions) > 0 {
		settings.EnableActions = splitList(strings.Join(cfg.EnableActions, ","))
	}
	durations := []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{cfg.Timeout, "timeout", &settings.Timeout},
		{cfg.ReceiptTimeout, "receipt_timeout", &settings.ReceiptTimeout},
		{cfg.PollInterval, "poll_interval", &settings.PollInterval},
		{cfg.ConnectBackoff, "connect_backoff", &settings.ConnectBackoff},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config %s: %w", d.name, err)
		}
		*d.dst = v
	}
	if cfg.Retries != nil {
		settings.Retries = *cfg.Retries
	}
	if cfg.ConnectAttempts != nil {
		settings.ConnectAttempts = *cfg.ConnectAttempts
	}
	if cfg.Aggregator.ClientID != "" {
		settings.AggregatorClientID = cfg.Aggregator.ClientID
	}
	if cfg.Aggregator.BaseURL != "" {
		settings.AggregatorBaseURL = cfg.Aggregator.BaseURL
	}
	if cfg.DexScreener.BaseURL != "" {
		settings.DexScreenerBaseURL = cfg.DexScreener.BaseURL
	}
	if cfg.Cache.Enabled != nil {
		settings.CacheEnabled = *cfg.Cache.Enabled
	}
	if cfg.Cache.Path != "" {
		settings.CachePath = cfg.Cache.Path
	}
	if cfg.Cache.LockPath != "" {
		settings.CacheLockPath = cfg.Cache.LockPath
	}
	if cfg.Journal.Path != "" {
		settings.JournalPath = cfg.Journal.Path
	}
	if cfg.Journal.LockPath != "" {
		settings.JournalLockPath = cfg.Journal.LockPath
	}
	if cfg.Log.Level != "" {
		settings.LogLevel = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		settings.LogFormat = cfg.Log.Format
	}
	if len(cfg.Log.Outputs) > 0 {
		settings.LogOutputs = cfg.Log.Outputs
	}

	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("EVM_AGENT_OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv("EVM_AGENT_NETWORK"); v != "" {
		settings.Network = strings.ToLower(v)
	}
	if v := os.Getenv("EVM_AGENT_RPC_URL"); v != "" {
		settings.RPCURL = v
	}
	if v := os.Getenv("EVM_AGENT_KEY_SOURCE"); v != "" {
		settings.KeySource = v
	}
	if v := os.Getenv("EVM_AGENT_ENABLE_ACTIONS"); v != "" {
		settings.EnableActions = splitList(v)
	}
	if v := os.Getenv("EVM_AGENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv("EVM_AGENT_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			settings.Retries = n
		}
	}
	if v := os.Getenv("EVM_AGENT_RECEIPT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.ReceiptTimeout = d
		}
	}
	if v := os.Getenv("EVM_AGENT_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.PollInterval = d
		}
	}
	if v := os.Getenv("EVM_AGENT_AGGREGATOR_CLIENT_ID"); v != "" {
		settings.AggregatorClientID = v
	}
	if v := os.Getenv("EVM_AGENT_AGGREGATOR_BASE_URL"); v != "" {
		settings.AggregatorBaseURL = v
	}
	if v := os.Getenv("EVM_AGENT_DEXSCREENER_BASE_URL"); v != "" {
		settings.DexScreenerBaseURL = v
	}
	if v := os.Getenv("EVM_AGENT_NO_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.CacheEnabled = !b
		}
	}
	if v := os.Getenv("EVM_AGENT_CACHE_PATH"); v != "" {
		settings.CachePath = v
	}
	if v := os.Getenv("EVM_AGENT_CACHE_LOCK_PATH"); v != "" {
		settings.CacheLockPath = v
	}
	if v := os.Getenv("EVM_AGENT_JOURNAL_PATH"); v != "" {
		settings.JournalPath = v
	}
	if v := os.Getenv("EVM_AGENT_JOURNAL_LOCK_PATH"); v != "" {
		settings.JournalLockPath = v
	}
	if v := os.Getenv("EVM_AGENT_LOG_LEVEL"); v != "" {
		settings.LogLevel = v
	}
	if v := os.Getenv("EVM_AGENT_LOG_FORMAT"); v != "" {
		settings.LogFormat = v
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON && flags.Plain {
		return fmt.Errorf("cannot use --json and --plain together")
	}
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.Plain {
		settings.OutputMode = "plain"
	}
	if strings.TrimSpace(flags.Select) != "" {
		settings.SelectFields = splitList(flags.Select)
	}
	settings.ResultsOnly = flags.ResultsOnly

	if strings.TrimSpace(flags.EnableActions) != "" {
		settings.EnableActions = splitList(flags.EnableActions)
	}
	if strings.TrimSpace(flags.Network) != "" {
		settings.Network = strings.ToLower(strings.TrimSpace(flags.Network))
	}
	if strings.TrimSpace(flags.RPCURL) != "" {
		settings.RPCURL = strings.TrimSpace(flags.RPCURL)
	}
	if strings.TrimSpace(flags.KeySource) != "" {
		settings.KeySource = strings.TrimSpace(flags.KeySource)
	}
	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.Retries >= 0 {
		settings.Retries = flags.Retries
	}
	if flags.ReceiptTimeout != "" {
		d, err := time.ParseDuration(flags.ReceiptTimeout)
		if err != nil {
			return fmt.Errorf("parse --receipt-timeout: %w", err)
		}
		settings.ReceiptTimeout = d
	}
	if flags.NoCache {
		settings.CacheEnabled = false
	}
	if strings.TrimSpace(flags.LogLevel) != "" {
		settings.LogLevel = strings.TrimSpace(flags.LogLevel)
	}

	if settings.OutputMode != "json" && settings.OutputMode != "plain" {
		return fmt.Errorf("output must be json or plain")
	}

	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
