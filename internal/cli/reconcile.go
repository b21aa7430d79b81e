package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/y4d-ngo/beneficiary-portal/internal/bootstrap"
	"github.com/y4d-ngo/beneficiary-portal/internal/lifecycle"
)

func newReconcileCommand(opts *RootOptions) *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recount beneficiaries and repair drifted projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, opts, func(app *bootstrap.App) error {
				var results []lifecycle.ReconcileResult
				if projectID != "" {
					res, err := app.Lifecycle.Reconcile(ctx, projectID)
					if err != nil {
						return err
					}
					results = append(results, res)
				} else {
					all, err := app.Lifecycle.ReconcileAll(ctx)
					if err != nil {
						return err
					}
					results = all
				}
				return opts.print(cmd.OutOrStdout(), results, formatResults(results))
			})
		},
	}
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "reconcile a single project")
	return cmd
}

func formatResults(results []lifecycle.ReconcileResult) string {
	var b strings.Builder
	repaired, deferred := 0, 0
	for _, r := range results {
		switch {
		case r.Repaired:
			repaired++
			fmt.Fprintf(&b, "repaired %s: %d -> %d\n", r.ProjectID, r.Previous, r.Actual)
		case r.Deferred:
			deferred++
			fmt.Fprintf(&b, "deferred %s: %d (counted %d)\n", r.ProjectID, r.Previous, r.Actual)
		}
	}
	fmt.Fprintf(&b, "checked %d projects, repaired %d", len(results), repaired)
	if deferred > 0 {
		fmt.Fprintf(&b, ", deferred %d", deferred)
	}
	return b.String()
}
