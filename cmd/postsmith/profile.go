package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCmd(root *rootFlags) *cobra.Command {
	var (
		page   pageFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Extract and print the profile from a page",
		Long:  "Loads the profile page and prints the profession and about text that generation would use.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			page.apply(a)

			doc, err := a.loadDocument(cmd.Context(), page.source())
			if err != nil {
				return err
			}
			prof := a.resolver().Resolve(doc)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(prof); err != nil {
					return fmt.Errorf("failed to encode profile: %w", err)
				}
				return nil
			}
			a.printer.PrintProfile(prof)
			return nil
		},
	}

	page.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the profile as JSON")
	return cmd
}
