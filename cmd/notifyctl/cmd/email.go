package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/models"
)

func newEmailCmd(withDeps depsRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Show or change the report's sender and recipient",
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "get <sender|recipient>",
		Short:     "Print the stored address for a role",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"sender", "recipient"},
		RunE: func(c *cobra.Command, args []string) error {
			role, err := models.ParseRole(args[0])
			if err != nil {
				return err
			}
			return withDeps(c, func(ctx context.Context, d *Deps) error {
				addr, err := d.Addresses.Get(ctx, role)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.OutOrStdout(), addr)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <sender|recipient> <address>",
		Short: "Store an address and request SES verification for it",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			role, err := models.ParseRole(args[0])
			if err != nil {
				return err
			}
			addr := strings.TrimSpace(args[1])
			return withDeps(c, func(ctx context.Context, d *Deps) error {
				if err := d.Addresses.Put(ctx, role, addr); err != nil {
					return err
				}
				sent, err := d.Identities.RequestVerification(ctx, addr)
				if err != nil {
					return fmt.Errorf("request verification: %w", err)
				}
				if !sent {
					fmt.Fprintf(c.OutOrStdout(), "%s is already verified\n", addr)
					return nil
				}
				fmt.Fprintf(c.OutOrStdout(), "Verification email sent to %s\n", addr)
				return nil
			})
		},
	})

	return cmd
}
