package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"spendcal/internal/calendar"
	"spendcal/internal/ledger"
	"spendcal/internal/model"
	"spendcal/internal/recur"
)

func expenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Manage ledger expenses",
		Long: `Add, list and remove expenses in the ledger.

Examples:
  spendcal expense add rent 1000 --start 2020-01-01 --every monthly --tag rent
  spendcal expense add gym 25.05 --every "weekly on mon" --end "after 4 times" --spread "1 week"
  spendcal expense add salary 3000 --income --every "monthly on the 1st"
  spendcal expense list --sorted
  spendcal expense remove 3`,
	}

	cmd.AddCommand(expenseAddCmd())
	cmd.AddCommand(expenseListCmd())
	cmd.AddCommand(expenseRemoveCmd())

	return cmd
}

func expenseAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add DESCRIPTION AMOUNT",
		Short: "Record a one-off or repeating expense",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			income, _ := cmd.Flags().GetBool("income")
			spreadStr, _ := cmd.Flags().GetString("spread")
			every, _ := cmd.Flags().GetString("every")
			end, _ := cmd.Flags().GetString("end")
			tags, _ := cmd.Flags().GetStringSlice("tag")

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			if !income {
				amount = -amount
			}
			start, err := dateFlag(cmd, "start", today())
			if err != nil {
				return err
			}
			var spread *calendar.Duration
			if spreadStr != "" {
				d, err := calendar.ParseDuration(spreadStr)
				if err != nil {
					return fmt.Errorf("--spread: %w", err)
				}
				spread = &d
			}
			if every == "" && end != "" {
				return errors.New("--end needs a schedule in --every")
			}
			rep, err := recur.ParseRepetition(every, end, start)
			if err != nil {
				return err
			}

			store, err := openLedger()
			if err != nil {
				return err
			}
			e, err := store.Add(args[0], amount, start, spread, rep, tags)
			if err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e)
			return nil
		},
	}

	cmd.Flags().Bool("income", false, "Record money coming in rather than going out")
	cmd.Flags().String("start", "", "First day of the expense, YYYY-MM-DD (default today)")
	cmd.Flags().String("spread", "", "Spread each occurrence over a duration, e.g. \"1 month\"")
	cmd.Flags().String("every", "", "Repeat schedule, e.g. \"every 2 weeks on fri\"")
	cmd.Flags().String("end", "", "When the schedule stops: \"never\", \"after N times\" or YYYY-MM-DD")
	cmd.Flags().StringSlice("tag", nil, "Tag to attach (repeatable)")

	return cmd
}

func expenseListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sorted, _ := cmd.Flags().GetBool("sorted")
			tag, _ := cmd.Flags().GetString("tag")

			store, err := openLedger()
			if err != nil {
				return err
			}
			expenses := store.Expenses()
			if sorted {
				expenses = store.Sorted()
			}
			for _, e := range expenses {
				if tag != "" && !e.HasTag(tag) {
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}

	cmd.Flags().Bool("sorted", false, "Order by end date, never ending expenses last")
	cmd.Flags().String("tag", "", "Only show expenses carrying this tag")

	return cmd
}

func expenseRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			store, err := openLedger()
			if err != nil {
				return err
			}
			if err := store.Remove(id); err != nil {
				return err
			}
			return store.Save()
		},
	}
}

func tagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage the tags expenses may carry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add TAG",
		Short: "Make a tag available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateLedger(func(s *ledger.Store) error { return s.AddTag(args[0]) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove TAG",
		Short: "Forget a tag and strip it from every expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateLedger(func(s *ledger.Store) error { return s.RemoveTag(args[0]) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLedger()
			if err != nil {
				return err
			}
			for _, t := range store.Tags() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	})

	return cmd
}

func updateLedger(fn func(*ledger.Store) error) error {
	store, err := openLedger()
	if err != nil {
		return err
	}
	if err := fn(store); err != nil {
		return err
	}
	return store.Save()
}

func spreadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spread",
		Short: "Total the ledger over a period, pro rata by spread",
		Long: `Total every expense falling within [from, from + period). An expense
spread over several days contributes only the share of it that lands in
the period.

Without --from the period containing today is used, with weeks starting
on the configured week_start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			periodStr, _ := cmd.Flags().GetString("period")

			period := conf.ReportPeriod
			if periodStr != "" {
				p, err := calendar.ParseDuration(periodStr)
				if err != nil {
					return fmt.Errorf("--period: %w", err)
				}
				period = p
			}
			from, err := dateFlag(cmd, "from", periodStart(today(), period.Unit, conf.FirstWeekday()))
			if err != nil {
				return err
			}

			store, err := openLedger()
			if err != nil {
				return err
			}
			total := ledger.CalculateSpread(store.Expenses(), from, period)
			fmt.Fprintf(cmd.OutOrStdout(), "%s to %s: %.2f\n", from, from.Add(period), total)
			return nil
		},
	}

	cmd.Flags().String("from", "", "First day of the period, YYYY-MM-DD")
	cmd.Flags().String("period", "", "Period length (default from config report_period)")

	return cmd
}

func agendaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "List the days expenses land on within a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := dateFlag(cmd, "from", today())
			if err != nil {
				return err
			}
			to, err := dateFlag(cmd, "to", from.Add(conf.ReportPeriod).AddDays(-1))
			if err != nil {
				return err
			}
			if to.Before(from) {
				return fmt.Errorf("--to %s is before --from %s", to, from)
			}

			store, err := openLedger()
			if err != nil {
				return err
			}
			for _, o := range ledger.Agenda(store.Expenses(), from, to) {
				fmt.Fprintln(cmd.OutOrStdout(), formatOccurrence(o))
			}
			return nil
		},
	}

	cmd.Flags().String("from", "", "First day, YYYY-MM-DD (default today)")
	cmd.Flags().String("to", "", "Last day, YYYY-MM-DD (default one report period on)")

	return cmd
}

func formatOccurrence(o model.Occurrence) string {
	return fmt.Sprintf("%s %10s  %s [id=%d]", o.Date, formatCents(o.Amount), o.Description, o.ExpenseID)
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// parseAmount reads a non-negative dollar amount with at most two decimals
// and returns it in cents.
func parseAmount(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && !hasFrac {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	dollars, err := strconv.ParseUint(whole, 10, 53)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	var cents uint64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid amount %q: want at most two decimals", s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		if cents, err = strconv.ParseUint(frac, 10, 8); err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
	}
	return int64(dollars*100 + cents), nil
}
