package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "cache"))
	t.Chdir(tmp)
	return tmp
}

func TestLoadPrecedenceFlagsOverEnvOverFile(t *testing.T) {
	tmp := isolate(t)
	configPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(configPath, []byte("output: plain\nretries: 1\nnetwork: polygon\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("EVM_AGENT_OUTPUT", "json")
	t.Setenv("EVM_AGENT_NETWORK", "base")
	flags := GlobalFlags{ConfigPath: configPath, Plain: true, Retries: 5}
	settings, err := Load(flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.OutputMode != "plain" {
		t.Fatalf("expected flag to win, got output=%s", settings.OutputMode)
	}
	if settings.Retries != 5 {
		t.Fatalf("expected retries from flags, got %d", settings.Retries)
	}
	if settings.Network != "base" {
		t.Fatalf("expected env network to beat file, got %s", settings.Network)
	}
}

func TestLoadMutuallyExclusiveOutputFlags(t *testing.T) {
	isolate(t)
	_, err := Load(GlobalFlags{JSON: true, Plain: true, Retries: -1})
	if err == nil {
		t.Fatal("expected error with --json and --plain")
	}
}

func TestLoadDefaults(t *testing.T) {
	tmp := isolate(t)
	settings, err := Load(GlobalFlags{Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.Network != "ethereum" || settings.KeySource != "auto" {
		t.Fatalf("unexpected defaults: %+v", settings)
	}
	if settings.ConnectAttempts != 3 || settings.Retries != 2 {
		t.Fatalf("unexpected retry defaults: %+v", settings)
	}
	if settings.ReceiptTimeout != 3*time.Minute {
		t.Fatalf("unexpected receipt timeout: %s", settings.ReceiptTimeout)
	}
	wantJournal := filepath.Join(tmp, "cache", "evm-agent", "journal.db")
	if settings.JournalPath != wantJournal {
		t.Fatalf("expected journal path %s, got %s", wantJournal, settings.JournalPath)
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	tmp := isolate(t)
	envPath := filepath.Join(tmp, "agent.env")
	body := "EVM_AGENT_NETWORK=polygon\nEVM_AGENT_LOG_LEVEL=debug\n"
	if err := os.WriteFile(envPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("EVM_AGENT_LOG_LEVEL", "warn")

	settings, err := Load(GlobalFlags{EnvFile: envPath, Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.Network != "polygon" {
		t.Fatalf("expected network from env file, got %s", settings.Network)
	}
	if settings.LogLevel != "warn" {
		t.Fatalf("expected existing env to win over env file, got %s", settings.LogLevel)
	}
}

func TestLoadMissingExplicitEnvFile(t *testing.T) {
	tmp := isolate(t)
	_, err := Load(GlobalFlags{EnvFile: filepath.Join(tmp, "missing.env"), Retries: -1})
	if err == nil {
		t.Fatal("expected error for missing explicit env file")
	}
}

func TestLoadEnableActionsAndInvalidDuration(t *testing.T) {
	tmp := isolate(t)
	configPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(configPath, []byte("enable_actions: [get-balance, get-address]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	settings, err := Load(GlobalFlags{ConfigPath: configPath, Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(settings.EnableActions) != 2 || settings.EnableActions[1] != "get-address" {
		t.Fatalf("unexpected enable actions: %v", settings.EnableActions)
	}

	if _, err := Load(GlobalFlags{ConfigPath: configPath, Timeout: "soon", Retries: -1}); err == nil {
		t.Fatal("expected invalid --timeout to fail")
	}
}
