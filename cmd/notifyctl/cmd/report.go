package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCmd(withDeps depsRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Send today's late-task report now",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return withDeps(c, func(ctx context.Context, d *Deps) error {
				diag, err := d.Reports.Run(ctx)
				if err != nil {
					return err
				}
				if diag != "" {
					fmt.Fprintln(c.OutOrStdout(), diag)
					return errors.New("report not sent")
				}
				fmt.Fprintln(c.OutOrStdout(), "report sent")
				return nil
			})
		},
	}
}

func newPreviewCmd(withDeps depsRunner) *cobra.Command {
	var text bool

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render today's report without sending it",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return withDeps(c, func(ctx context.Context, d *Deps) error {
				rep, err := d.Reports.Preview(ctx)
				if err != nil {
					return err
				}
				out := c.OutOrStdout()
				fmt.Fprintf(out, "Subject: %s\n\n", rep.Subject)
				if text {
					fmt.Fprintln(out, rep.Text)
				} else {
					fmt.Fprintln(out, rep.HTML)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "print the plain-text body instead of HTML")
	return cmd
}
