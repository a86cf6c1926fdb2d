package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	FileName = "sleeptrack.yaml"

	EnvDataDir     = "SLEEPTRACK_DATA_DIR"
	EnvJournalDir  = "SLEEPTRACK_JOURNAL_DIR"
	EnvLogLevel    = "SLEEPTRACK_LOG_LEVEL"
	EnvMetricsAddr = "SLEEPTRACK_METRICS_ADDR"
)

type Config struct {
	DataDir     string
	DBPath      string
	JournalDir  string
	LogLevel    string
	MetricsAddr string
}

// fileConfig mirrors the optional YAML file. Empty fields keep lower-precedence values.
type fileConfig struct {
	JournalDir  string `yaml:"journal_dir"`
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Overrides carries values set explicitly on the command line.
type Overrides struct {
	DataDir     string
	ConfigFile  string
	JournalDir  string
	LogLevel    string
	MetricsAddr string
}

func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, "sleeptrack.db"),
		JournalDir: filepath.Join(dataDir, "journal"),
		LogLevel:   "info",
	}, nil
}

// Load resolves configuration with precedence flags > environment (.env included) > YAML file > defaults.
func Load(o Overrides) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	dataDir := firstNonEmpty(o.DataDir, os.Getenv(EnvDataDir), defaultDataDir())
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}

	path := o.ConfigFile
	if path == "" {
		path = filepath.Join(dataDir, FileName)
	}
	file, err := readFile(path, o.ConfigFile != "")
	if err != nil {
		return Config{}, err
	}

	cfg.JournalDir = firstNonEmpty(o.JournalDir, os.Getenv(EnvJournalDir), file.JournalDir, cfg.JournalDir)
	cfg.LogLevel = firstNonEmpty(o.LogLevel, os.Getenv(EnvLogLevel), file.LogLevel, cfg.LogLevel)
	cfg.MetricsAddr = firstNonEmpty(o.MetricsAddr, os.Getenv(EnvMetricsAddr), file.MetricsAddr)
	return cfg, nil
}

func readFile(path string, required bool) (fileConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("read config file: %w", err)
	}
	out := fileConfig{}
	if err := yaml.Unmarshal(payload, &out); err != nil {
		return fileConfig{}, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return out, nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "sleeptrack")
	}
	return ".sleeptrack"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
