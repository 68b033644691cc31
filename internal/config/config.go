package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default configuration file name.
const FileName = "cardledger.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CARDLEDGER_"

// Config represents the top-level cardledger.yaml configuration.
type Config struct {
	Inbox     InboxConfig     `yaml:"inbox"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Workers   int             `yaml:"workers"`
	Log       LogConfig       `yaml:"log"`
	Git       GitConfig       `yaml:"git"`
	RulesFile string          `yaml:"rules_file,omitempty"`
}

// InboxConfig locates incoming and processed statements.
type InboxConfig struct {
	Dir          string `yaml:"dir"`
	ProcessedDir string `yaml:"processed_dir"`
}

// LedgerConfig locates the ledger and the failure log.
type LedgerConfig struct {
	Path         string `yaml:"path"`
	FailuresPath string `yaml:"failures_path"`
}

// ExtractorConfig names the external program that turns an encrypted PDF
// into an extraction dump. An empty command reads inbox files as dumps.
type ExtractorConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// GitConfig controls committing the ledger after each ingest cycle that
// writes rows. The project directory must be a git work tree.
type GitConfig struct {
	Commit      bool   `yaml:"commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a cardledger.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Inbox: InboxConfig{
			Dir:          "inbox",
			ProcessedDir: "inbox/processed",
		},
		Ledger: LedgerConfig{
			Path:         "ledger.csv",
			FailuresPath: "logs/failures.csv",
		},
		Workers: runtime.NumCPU(),
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AuthorName:  "cardledger",
			AuthorEmail: "cardledger@localhost",
		},
	}
}

// LoadEnvFile loads KEY=value pairs from a .env file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from CARDLEDGER_* variables looked up with
// getenv (usually os.Getenv). Extractor args are split on whitespace.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	str("INBOX_DIR", &c.Inbox.Dir)
	str("PROCESSED_DIR", &c.Inbox.ProcessedDir)
	str("LEDGER_PATH", &c.Ledger.Path)
	str("FAILURES_PATH", &c.Ledger.FailuresPath)
	str("EXTRACTOR", &c.Extractor.Command)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("RULES_FILE", &c.RulesFile)

	if v := getenv(EnvPrefix + "EXTRACTOR_ARGS"); v != "" {
		c.Extractor.Args = strings.Fields(v)
	}
	if v := getenv(EnvPrefix + "GIT_COMMIT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %sGIT_COMMIT %q: %w", EnvPrefix, v, err)
		}
		c.Git.Commit = b
	}
	if v := getenv(EnvPrefix + "WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %sWORKERS %q: %w", EnvPrefix, v, err)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Inbox.Dir == "" {
		errs = append(errs, errors.New("inbox.dir is required"))
	}
	if c.Inbox.ProcessedDir == "" {
		errs = append(errs, errors.New("inbox.processed_dir is required"))
	}
	if c.Ledger.Path == "" {
		errs = append(errs, errors.New("ledger.path is required"))
	}
	if c.Ledger.FailuresPath == "" {
		errs = append(errs, errors.New("ledger.failures_path is required"))
	}
	if c.Git.Commit && (c.Git.AuthorName == "" || c.Git.AuthorEmail == "") {
		errs = append(errs, errors.New("git.author_name and git.author_email are required when git.commit is set"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// ResolvePaths makes every relative path absolute against base, which is
// normally the directory holding the config file.
func (c *Config) ResolvePaths(base string) {
	for _, p := range []*string{
		&c.Inbox.Dir,
		&c.Inbox.ProcessedDir,
		&c.Ledger.Path,
		&c.Ledger.FailuresPath,
		&c.RulesFile,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}
