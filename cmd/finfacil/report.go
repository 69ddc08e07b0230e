package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/finfacil/internal/cli"
	"github.com/Veraticus/finfacil/internal/model"
	"github.com/Veraticus/finfacil/internal/report"
	"github.com/Veraticus/finfacil/internal/storage"
)

type reportOptions struct {
	kind     string
	category string
	from     string
	to       string
}

func reportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report <user-id>",
		Short: "Print a user's income or expense report",
		Long: `Print the income or expense records of a user, optionally narrowed to one
category and a date range (dd/mm/yyyy, both ends inclusive).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ns, err := model.ParseCategoryType(opts.kind)
			if err != nil {
				return err
			}
			criteria, err := opts.criteria()
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			return printReport(ctx, cmd.OutOrStdout(), st.ledger, args[0], ns, criteria)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "type", "expense", "record type (income, expense)")
	cmd.Flags().StringVar(&opts.category, "category", model.AllCategories, "category to include, GERAL for all")
	cmd.Flags().StringVar(&opts.from, "from", "", "first day to include (dd/mm/yyyy)")
	cmd.Flags().StringVar(&opts.to, "to", "", "last day to include (dd/mm/yyyy)")

	return cmd
}

func (o reportOptions) criteria() (report.Criteria, error) {
	c := report.Criteria{Category: o.category}

	parse := func(flag, value string) (*time.Time, error) {
		if value == "" {
			return nil, nil
		}
		t, err := model.ParseDate(value)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s date %q: want dd/mm/yyyy", flag, value)
		}
		return &t, nil
	}

	var err error
	if c.Start, err = parse("from", o.from); err != nil {
		return report.Criteria{}, err
	}
	if c.End, err = parse("to", o.to); err != nil {
		return report.Criteria{}, err
	}
	return c, nil
}

func printReport(ctx context.Context, out io.Writer, ledger *storage.LedgerStore, userID string, ns model.CategoryType, c report.Criteria) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	total := decimal.Zero
	var count int

	if ns == model.CategoryTypeIncome {
		records, err := ledger.FilterIncome(ctx, userID, c)
		if err != nil {
			return fmt.Errorf("failed to filter income: %w", err)
		}
		if len(records) == 0 {
			fmt.Fprintln(out, cli.InfoStyle.Render("No income records match."))
			return nil
		}
		header(w, "ID", "Date", "Category", "Amount", "Note")
		for _, r := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\tR$ %s\t%s\n", r.ID, r.Date, r.Category, r.Amount.StringFixed(2), r.Note)
			total = total.Add(r.Amount)
		}
		count = len(records)
	} else {
		records, err := ledger.FilterExpenses(ctx, userID, c)
		if err != nil {
			return fmt.Errorf("failed to filter expenses: %w", err)
		}
		if len(records) == 0 {
			fmt.Fprintln(out, cli.InfoStyle.Render("No expense records match."))
			return nil
		}
		header(w, "ID", "Date", "Category", "Amount", "Note", "Receipt")
		for _, r := range records {
			receipt := "no"
			if r.HasAttachment() {
				receipt = "yes"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\tR$ %s\t%s\t%s\n", r.ID, r.Date, r.Category, r.Amount.StringFixed(2), r.Note, receipt)
			total = total.Add(r.Amount)
		}
		count = len(records)
	}

	fmt.Fprintf(w, "\t\t%s\tR$ %s\t%d records\n", cli.TableHeaderStyle.Render("Total"), total.StringFixed(2), count)
	return nil
}

func header(w io.Writer, columns ...string) {
	for i, col := range columns {
		sep := "\t"
		if i == len(columns)-1 {
			sep = "\n"
		}
		fmt.Fprint(w, cli.TableHeaderStyle.Render(col)+sep)
	}
}
