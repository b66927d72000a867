package main

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"spendcal/internal/config"
	"spendcal/internal/ics"
	appLog "spendcal/internal/log"
)

func exportICSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-ics FILE",
		Short: "Write the ledger as an iCalendar file (\"-\" for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLedger()
			if err != nil {
				return err
			}
			body, err := ics.Export(store.Expenses(), conf.ICS, now().UTC())
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			if args[0] == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			if err := config.WriteFileAtomic(args[0], []byte(body)); err != nil {
				return fmt.Errorf("write %s: %w", args[0], err)
			}
			appLog.Info("ics written", "path", args[0], "bytes", len(body))
			return nil
		},
	}
}

func importICSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ics FILE",
		Short: "Add the events of an iCalendar file to the ledger",
		Long: `Add every VEVENT that carries an amount to the ledger. Events written by
export-ics keep their exact schedule; other RRULEs are mapped where the
ledger can represent them. Unknown categories become new tags.

With --preview nothing is saved; the days the events fall on between
--from and --to are listed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preview, _ := cmd.Flags().GetBool("preview")

			body, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			events, err := ics.ParseICS(body)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			if preview {
				from, err := dateFlag(cmd, "from", today())
				if err != nil {
					return err
				}
				to, err := dateFlag(cmd, "to", from.Add(conf.ReportPeriod).AddDays(-1))
				if err != nil {
					return err
				}
				res, err := ics.ExpandOccurrences(events, ics.ExpandConfig{From: from, To: to})
				if err != nil {
					return err
				}
				for _, o := range res.Occurrences {
					fmt.Fprintln(cmd.OutOrStdout(), formatOccurrence(o))
				}
				return nil
			}

			store, err := openLedger()
			if err != nil {
				return err
			}
			var imported int
			var errs []error
			for _, ev := range events {
				e, err := ev.Expense()
				if err != nil {
					appLog.Error("import: skipping event", err, "uid", ev.UID)
					errs = append(errs, err)
					continue
				}
				for _, t := range e.Tags {
					if !slices.Contains(store.Tags(), t) {
						if err := store.AddTag(t); err != nil {
							return err
						}
					}
				}
				if _, err := store.Add(e.Description, e.Amount, e.Start, e.Spread, e.Repetition, e.Tags); err != nil {
					appLog.Error("import: skipping event", err, "uid", ev.UID)
					errs = append(errs, err)
					continue
				}
				imported++
			}
			if err := store.Save(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d events\n", imported, len(events))
			if imported == 0 && len(errs) > 0 {
				return errors.Join(errs...)
			}
			return nil
		},
	}

	cmd.Flags().Bool("preview", false, "List occurrences instead of saving")
	cmd.Flags().String("from", "", "Preview window start, YYYY-MM-DD (default today)")
	cmd.Flags().String("to", "", "Preview window end, YYYY-MM-DD (default one report period on)")

	return cmd
}
