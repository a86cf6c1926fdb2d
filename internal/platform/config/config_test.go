package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"sleeptrack/internal/platform/config"
)

func TestNewDerivesPaths(t *testing.T) {
	t.Parallel()
	cfg, err := config.New("/data")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join("/data", "sleeptrack.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
	if cfg.JournalDir != filepath.Join("/data", "journal") {
		t.Fatalf("unexpected journal dir %s", cfg.JournalDir)
	}
	if _, err := config.New(" "); err == nil {
		t.Fatalf("blank data dir must fail")
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	yaml := "journal_dir: /from-file\nlog_level: warn\nmetrics_addr: \":9100\"\n"
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.EnvDataDir, dir)
	t.Setenv(config.EnvLogLevel, "debug")
	t.Setenv(config.EnvJournalDir, "")
	t.Setenv(config.EnvMetricsAddr, "")

	cfg, err := config.Load(config.Overrides{MetricsAddr: "127.0.0.1:9200"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != dir {
		t.Fatalf("expected data dir from env, got %s", cfg.DataDir)
	}
	if cfg.JournalDir != "/from-file" {
		t.Fatalf("expected journal dir from file, got %s", cfg.JournalDir)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("env must override file, got %s", cfg.LogLevel)
	}
	if cfg.MetricsAddr != "127.0.0.1:9200" {
		t.Fatalf("flag must override file, got %s", cfg.MetricsAddr)
	}
}

func TestLoadFailsOnMissingExplicitFile(t *testing.T) {
	t.Setenv(config.EnvDataDir, t.TempDir())
	if _, err := config.Load(config.Overrides{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
		t.Fatalf("explicit missing config file must fail")
	}
}
