package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finfacil/internal/cli"
	"github.com/Veraticus/finfacil/internal/storage"
)

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [user-id]",
		Short: "Show stored balances",
		Long:  `Print the balance of one user, or of every user with stored data when no id is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			users := args
			if len(users) == 0 {
				if users, err = st.ledger.Users(ctx); err != nil {
					return fmt.Errorf("failed to list users: %w", err)
				}
			}

			return printBalances(ctx, cmd.OutOrStdout(), st.ledger, users)
		},
	}
}

func printBalances(ctx context.Context, out io.Writer, ledger *storage.LedgerStore, users []string) error {
	if len(users) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No users found. Balances appear after the first income or expense."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\n",
		cli.TableHeaderStyle.Render("User"),
		cli.TableHeaderStyle.Render("Balance"))

	for _, user := range users {
		balance, err := ledger.Balance(ctx, user)
		if err != nil {
			return fmt.Errorf("failed to read balance of %s: %w", user, err)
		}
		fmt.Fprintf(w, "%s\tR$ %s\n", user, balance.StringFixed(2))
	}

	return nil
}
