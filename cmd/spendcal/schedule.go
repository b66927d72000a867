package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"spendcal/internal/calendar"
	"spendcal/internal/convert"
	"spendcal/internal/recur"
)

func weekdayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weekday DATE",
		Short: "Print the day of the week of a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := calendar.Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.Weekday())
			return nil
		},
	}
}

func addDurationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-duration DATE DURATION",
		Short: "Add a calendar duration such as \"1 month\" to a date",
		Long: `Add a calendar duration to a date. Month and year steps that land past
the end of a month are clamped to its last day.

Examples:
  spendcal add-duration 2020-01-31 "1 month"       # 2020-02-29
  spendcal add-duration --sub 2020-03-31 "1 month" # 2020-02-29`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, _ := cmd.Flags().GetBool("sub")

			d, err := calendar.Parse(args[0])
			if err != nil {
				return err
			}
			dur, err := calendar.ParseDuration(args[1])
			if err != nil {
				return err
			}
			if sub {
				d = d.Sub(dur)
			} else {
				d = d.Add(dur)
			}
			fmt.Fprintln(cmd.OutOrStdout(), d)
			return nil
		},
	}

	cmd.Flags().Bool("sub", false, "Subtract the duration instead of adding it")

	return cmd
}

func nextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next DATE SCHEDULE",
		Short: "Print the first occurrence of a schedule after a date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			anchor, delta, err := parseSchedule(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), recur.Next(anchor, delta))
			return nil
		},
	}
}

func lastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last DATE SCHEDULE END",
		Short: "Print the final occurrence of a schedule",
		Long: `Print the final occurrence of a schedule starting on DATE. END is
"never", a count such as "after 5 times", or an end date.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			anchor, rep, err := parseRepetition(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			last, ok := rep.Last(anchor)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "never")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), last)
			return nil
		},
	}
}

func occurrencesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "occurrences DATE SCHEDULE [END]",
		Short: "List the dates a schedule falls on, starting with DATE",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1, got %d", limit)
			}

			anchor, rep, err := parseRepetition(args[0], args[1], optionalArg(args, 2))
			if err != nil {
				return err
			}
			for _, d := range recur.Take(rep.Occurrences(anchor), limit) {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 10, "Maximum number of dates to print")

	return cmd
}

func rruleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rrule DATE SCHEDULE [END]",
		Short: "Print the iCalendar RRULE for a schedule",
		Long: `Print the iCalendar recurrence rule for a schedule. DTSTART is the first
occurrence after DATE, so the rule lists every repeat of DATE.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			anchor, rep, err := parseRepetition(args[0], args[1], optionalArg(args, 2))
			if err != nil {
				return err
			}
			opt, err := convert.ToROption(rep, anchor)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), opt.String())
			return nil
		},
	}
}

func cronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron DATE SCHEDULE",
		Short: "Print a cron expression for a never ending schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")

			anchor, rep, err := parseRepetition(args[0], args[1], "never")
			if err != nil {
				return err
			}
			expr, err := convert.ToCron(rep, anchor)
			if errors.Is(err, convert.ErrNotExpressible) {
				return fmt.Errorf("%q has no cron form: %w", args[1], err)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, expr)
			d := anchor
			for range count {
				if d, err = convert.NextCron(expr, d); err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s\n", d)
			}
			return nil
		},
	}

	cmd.Flags().Int("count", 0, "Also print the next N days the expression fires")

	return cmd
}

func parseSchedule(date, schedule string) (calendar.Date, recur.Delta, error) {
	anchor, err := calendar.Parse(date)
	if err != nil {
		return calendar.Date{}, nil, err
	}
	delta, err := recur.ParseDelta(schedule, anchor)
	if err != nil {
		return calendar.Date{}, nil, err
	}
	return anchor, delta, nil
}

func parseRepetition(date, schedule, end string) (calendar.Date, recur.Repetition, error) {
	anchor, delta, err := parseSchedule(date, schedule)
	if err != nil {
		return calendar.Date{}, recur.Repetition{}, err
	}
	e, err := recur.ParseEnd(end)
	if err != nil {
		return calendar.Date{}, recur.Repetition{}, err
	}
	return anchor, recur.Repetition{Delta: delta, End: e}, nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
