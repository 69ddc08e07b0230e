package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finfacil/internal/cli"
	"github.com/Veraticus/finfacil/internal/model"
	"github.com/Veraticus/finfacil/internal/storage"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Inspect user categories",
		Long:  `Inspect the income and expense categories stored for each user.`,
	}

	cmd.AddCommand(listCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list <user-id>",
		Short: "List the categories of a user",
		Long:  `Display the stored categories of a user without modifying them. Stock categories that would be restored on the next chat are marked.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ns, err := model.ParseCategoryType(kind)
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

			return printCategories(ctx, cmd.OutOrStdout(), st.categories, args[0], ns)
		},
	}

	cmd.Flags().StringVar(&kind, "type", "expense", "category type (income, expense)")

	return cmd
}

func printCategories(ctx context.Context, out io.Writer, categories *storage.CategoryStore, userID string, ns model.CategoryType) error {
	stored, err := categories.PeekCategories(ctx, userID, ns)
	if err != nil {
		return fmt.Errorf("failed to get categories: %w", err)
	}

	defaults := categories.Defaults(ns)
	if len(stored) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render(fmt.Sprintf("No %s categories stored for %s. Defaults: %s",
			ns, userID, strings.Join(defaults, ", "))))
		return nil
	}

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s categories for %s", ns, userID)))

	sorted := slices.Clone(stored)
	slices.Sort(sorted)
	for _, name := range sorted {
		if slices.Contains(defaults, name) {
			fmt.Fprintf(out, "  %s %s\n", name, cli.SubtleStyle.Render("(default)"))
			continue
		}
		fmt.Fprintf(out, "  %s\n", name)
	}

	for _, name := range defaults {
		if !slices.Contains(stored, name) {
			fmt.Fprintf(out, "  %s\n", cli.SubtleStyle.Render(name+" (removed, restored on next use)"))
		}
	}

	return nil
}
