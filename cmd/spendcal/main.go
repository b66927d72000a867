package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"spendcal/internal/calendar"
	"spendcal/internal/config"
	"spendcal/internal/ledger"
	appLog "spendcal/internal/log"
)

var version = "0.1.0"

// Global state shared by subcommands, filled in by the root pre-run hook.
var (
	configPath string
	ledgerPath string
	verbose    bool
	conf       *config.Config
)

// now is replaced in tests.
var now = time.Now

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		appLog.Sync()
		os.Exit(1)
	}
	appLog.Sync()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spendcal",
		Short: "Calendar dates, repeating schedules and a small expense ledger",
		Long: `spendcal does calendar arithmetic on plain dates, evaluates repeating
schedules written in English, and keeps a ledger of one-off and repeating
expenses that can be reported over a period or exported as iCalendar.

Examples:
  spendcal weekday 2020-09-20
  spendcal add-duration 2020-01-31 "1 month"
  spendcal occurrences 2020-09-20 "every 2 weeks on mon" "after 5 times"
  spendcal expense add rent 1000.00 --start 2020-01-01 --every monthly --tag rent
  spendcal spread --from 2020-11-01 --period "1 month"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "Path to config file")
	rootCmd.PersistentFlags().StringVar(&ledgerPath, "ledger", "", "Ledger file (overrides config if set)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(weekdayCmd())
	rootCmd.AddCommand(addDurationCmd())
	rootCmd.AddCommand(nextCmd())
	rootCmd.AddCommand(lastCmd())
	rootCmd.AddCommand(occurrencesCmd())
	rootCmd.AddCommand(rruleCmd())
	rootCmd.AddCommand(cronCmd())
	rootCmd.AddCommand(expenseCmd())
	rootCmd.AddCommand(tagCmd())
	rootCmd.AddCommand(spreadCmd())
	rootCmd.AddCommand(agendaCmd())
	rootCmd.AddCommand(exportICSCmd())
	rootCmd.AddCommand(importICSCmd())

	return rootCmd
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "spendcal", "config.yaml")
	}
	return "config.yaml"
}

func loadConfig() error {
	c, err := config.Load(configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", configPath)
		return fmt.Errorf("load config: %w", err)
	}
	if ledgerPath != "" {
		c.LedgerPath = ledgerPath
	}

	level, err := appLog.ParseLevel(c.LogLevel)
	if err != nil {
		appLog.Error("invalid log level, using info", err, "log_level", c.LogLevel)
	}
	if verbose {
		level = appLog.LevelDebug
	}
	appLog.SetLevel(level)

	appLog.Debug("effective config",
		"config_path", configPath,
		"ledger_path", c.LedgerPath,
		"week_start", c.WeekStart,
		"report_period", c.ReportPeriod.String(),
		"tag_count", len(c.Tags),
	)
	conf = c
	return nil
}

func openLedger() (*ledger.Store, error) {
	store, err := ledger.Load(conf.LedgerPath, conf.Tags)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return store, nil
}

func today() calendar.Date {
	y, m, d := now().Date()
	return calendar.FromYMD(y, int(m), d)
}

// dateFlag reads a YYYY-MM-DD flag, falling back to def when it is unset.
func dateFlag(cmd *cobra.Command, name string, def calendar.Date) (calendar.Date, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return def, nil
	}
	d, err := calendar.Parse(s)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

// periodStart is the first day of the period of the given unit containing d.
func periodStart(d calendar.Date, unit calendar.Unit, weekStart calendar.Weekday) calendar.Date {
	switch unit {
	case calendar.Week:
		for d.Weekday() != weekStart {
			d = d.AddDays(-1)
		}
		return d
	case calendar.Month:
		return calendar.MustNew(d.Year, d.Month, 1)
	case calendar.Year:
		return calendar.MustNew(d.Year, 1, 1)
	}
	return d
}
