package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"spendcal/internal/calendar"
)

// ICSConfig controls calendar export.
type ICSConfig struct {
	// ProductID is written as the PRODID of exported calendars.
	ProductID string `yaml:"product_id" json:"product_id"`
	// Name is the calendar display name (X-WR-CALNAME).
	Name string `yaml:"name" json:"name"`
}

// Config is the top-level application configuration.
type Config struct {
	// LedgerPath is the YAML file holding expenses and tags.
	LedgerPath string `yaml:"ledger_path" json:"ledger_path"`

	// LogLevel is one of "debug", "info" or "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// WeekStart controls which weekday starts a week in weekly reports.
	// Supported values:
	//   - "monday" (default)
	//   - "sunday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// ReportPeriod is the default window for spread reports, e.g. "1 month".
	ReportPeriod calendar.Duration `yaml:"report_period" json:"report_period"`

	// Tags is the set of tags expenses may carry.
	Tags []string `yaml:"tags" json:"tags"`

	ICS ICSConfig `yaml:"ics" json:"ics"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		LedgerPath:   defaultLedgerPath(),
		LogLevel:     "info",
		WeekStart:    "monday",
		ReportPeriod: calendar.Months(1),
		Tags:         []string{"rent", "food", "bills", "salary"},
		ICS: ICSConfig{
			ProductID: "-//spendcal//EN",
			Name:      "spendcal",
		},
	}
}

func defaultLedgerPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "spendcal", "ledger.yaml")
	}
	return "ledger.yaml"
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.LedgerPath == "" {
		c.LedgerPath = def.LedgerPath
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	switch c.WeekStart {
	case "monday", "sunday":
		// ok
	default:
		// Unknown value; fall back to monday.
		c.WeekStart = "monday"
	}
	if c.ReportPeriod.N <= 0 {
		c.ReportPeriod = def.ReportPeriod
	}
	c.Tags = cleanTags(c.Tags)
	if c.ICS.ProductID == "" {
		c.ICS.ProductID = def.ICS.ProductID
	}
	if c.ICS.Name == "" {
		c.ICS.Name = def.ICS.Name
	}
}

// cleanTags trims tags and drops blanks and repeats, keeping first-seen
// order.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FirstWeekday returns the configured start of the week.
func (c *Config) FirstWeekday() calendar.Weekday {
	if c.WeekStart == "sunday" {
		return calendar.Sunday
	}
	return calendar.Monday
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path as YAML with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path. The parent directory is created (0700) if needed
// and the final file is 0600.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".spendcal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
