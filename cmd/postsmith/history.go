package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/postsmith/internal/db"
)

func newHistoryCmd(root *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generations",
		Long:  "Lists generations recorded in the database (database_url in config or POSTSMITH_DATABASE_URL), newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			if a.cfg.DatabaseURL == "" {
				return errors.New("generation history requires database_url")
			}

			database, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			gens, err := database.ListGenerations(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printHistory(cmd, gens)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", db.DefaultListLimit, "Maximum number of generations to list")
	return cmd
}

func printHistory(cmd *cobra.Command, gens []db.Generation) error {
	if len(gens) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No generations recorded.")
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tMODE\tPROVIDER\tTONE\tREGEN\tTEXT")
	for _, g := range gens {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n",
			g.CreatedAt.Local().Format("2006-01-02 15:04"),
			g.Mode, g.Provider, g.Tone, g.Regenerated, preview(g.Text, 50))
	}
	return tw.Flush()
}

func preview(s string, n int) string {
	runes := []rune(s)
	for i, r := range runes {
		if r == '\n' {
			runes[i] = ' '
		}
	}
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-3]) + "..."
}
