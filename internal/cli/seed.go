package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/y4d-ngo/beneficiary-portal/internal/bootstrap"
	"github.com/y4d-ngo/beneficiary-portal/internal/seed"
)

func newSeedCommand(opts *RootOptions) *cobra.Command {
	var (
		file  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo projects and registrations",
		Long:  "Loads projects and registrations from a YAML file (the built-in demo set by default), then reconciles beneficiary counts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadSeed(file)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withApp(ctx, opts, func(app *bootstrap.App) error {
				sum, err := seed.Apply(ctx, app.Store, f, force, time.Now().UTC())
				if err != nil {
					return fmt.Errorf("seed: %w", err)
				}
				for _, id := range sum.ProjectIDs {
					if _, err := app.Lifecycle.Reconcile(ctx, id); err != nil {
						return fmt.Errorf("reconcile %s: %w", id, err)
					}
				}
				return opts.print(cmd.OutOrStdout(), sum,
					fmt.Sprintf("seeded %d projects and %d registrations", sum.Projects, sum.Registrations))
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed YAML file (defaults to the built-in demo data)")
	cmd.Flags().BoolVar(&force, "force", false, "seed even when projects already exist")
	return cmd
}

func loadSeed(path string) (*seed.File, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.Load(path)
}
