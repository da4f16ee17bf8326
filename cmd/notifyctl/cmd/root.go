package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/app"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/models"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/report"
)

type Reporter interface {
	Run(ctx context.Context) (string, error)
	Preview(ctx context.Context) (report.Report, error)
}

type AddressStore interface {
	Get(ctx context.Context, role models.Role) (string, error)
	Put(ctx context.Context, role models.Role, addr string) error
}

type VerificationRequester interface {
	RequestVerification(ctx context.Context, addr string) (bool, error)
}

// Deps are the collaborators a command needs. They are built lazily so
// --help works without AWS credentials.
type Deps struct {
	Reports    Reporter
	Addresses  AddressStore
	Identities VerificationRequester
}

type Loader func(ctx context.Context) (*Deps, error)

func loadFromEnv(ctx context.Context) (*Deps, error) {
	_, _, svc, err := app.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Deps{Reports: svc.Notifier, Addresses: svc.Addresses, Identities: svc.Email}, nil
}

// NewRootCmd builds the notifyctl command tree around load.
func NewRootCmd(load Loader) *cobra.Command {
	var timeout time.Duration

	root := &cobra.Command{
		Use:   "notifyctl",
		Short: "Operate the makerspace late-task report",
		Long: `notifyctl runs the daily late-task report by hand, previews it,
and manages the sender and recipient addresses stored in S3.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "overall timeout for AWS calls")

	withDeps := func(c *cobra.Command, fn func(ctx context.Context, d *Deps) error) error {
		ctx, cancel := context.WithTimeout(c.Context(), timeout)
		defer cancel()
		d, err := load(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, d)
	}

	root.AddCommand(newRunCmd(withDeps), newPreviewCmd(withDeps), newEmailCmd(withDeps))
	return root
}

type depsRunner func(c *cobra.Command, fn func(ctx context.Context, d *Deps) error) error

// Execute runs notifyctl against the environment's AWS account.
func Execute() error {
	return NewRootCmd(loadFromEnv).ExecuteContext(context.Background())
}
