package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/postsmith/internal/keystore"
)

func newKeysCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage stored API keys",
		Long: fmt.Sprintf(`Stores API keys in the key file (keys_file in config, mode 0600).
Key names: %s.`, strings.Join(keystore.Names, ", ")),
	}

	open := func(cmd *cobra.Command) (*keystore.Store, error) {
		a, err := loadApp(cmd, root)
		if err != nil {
			return nil, err
		}
		return keystore.Open(a.cfg.KeysFile)
	}

	setCmd := &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Store a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			if err := store.Set(args[0], args[1]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", args[0], store.Path())
			return err
		},
	}

	var reveal bool
	getCmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print a stored key (masked unless --reveal)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			value := store.Get(args[0])
			if value == "" {
				return fmt.Errorf("%s is not set", args[0])
			}
			if !reveal {
				value = keystore.Mask(value)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		},
	}
	getCmd.Flags().BoolVar(&reveal, "reveal", false, "Print the full key")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored keys (masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			entries := store.List()
			if len(entries) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No keys stored.")
				return err
			}
			for _, e := range entries {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", e.Name, e.Masked); err != nil {
					return err
				}
			}
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a stored key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return err
		},
	}

	cmd.AddCommand(setCmd, getCmd, listCmd, deleteCmd)
	return cmd
}
