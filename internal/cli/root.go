package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/y4d-ngo/beneficiary-portal/config"
	"github.com/y4d-ngo/beneficiary-portal/internal/bootstrap"
	"github.com/y4d-ngo/beneficiary-portal/internal/platform/logger"
)

// AppFactory opens the application dependencies for one command run.
type AppFactory func(ctx context.Context) (*bootstrap.App, error)

// RootOptions holds global flags and the dependency factory shared by all commands.
type RootOptions struct {
	Format string
	NewApp AppFactory
}

var validFormats = []string{"text", "json"}

// NewRootCommand builds ngoctl. A nil factory loads config from the environment.
func NewRootCommand(newApp AppFactory) *cobra.Command {
	if newApp == nil {
		newApp = appFromEnv
	}
	opts := &RootOptions{NewApp: newApp}

	cmd := &cobra.Command{
		Use:           "ngoctl",
		Short:         "Operator tools for the beneficiary portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newReconcileCommand(opts))
	cmd.AddCommand(newHashPasswordCommand())
	return cmd
}

func appFromEnv(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return bootstrap.NewApp(ctx, cfg, logger.New(cfg.App.LogLevel, cfg.App.Environment))
}

// withApp opens the app, runs fn and closes the app again.
func withApp(ctx context.Context, opts *RootOptions, fn func(*bootstrap.App) error) error {
	app, err := opts.NewApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.WithoutCancel(ctx))
	return fn(app)
}

func (o *RootOptions) print(w io.Writer, v any, text string) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
