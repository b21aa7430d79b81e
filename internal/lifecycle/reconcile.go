package lifecycle

import (
	"context"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
)

// CountsOccupyingSlot reports whether reg takes one of its project's slots. Every registration
// does: the count goes up at admission and is not given back on rejection.
func CountsOccupyingSlot(reg domain.Registration) bool {
	switch reg.Status {
	case domain.RegistrationPending, domain.RegistrationApproved, domain.RegistrationRejected:
		return true
	default:
		return false
	}
}

// ReconcileResult describes one project's recount.
type ReconcileResult struct {
	ProjectID string `json:"projectId"`
	Previous  int    `json:"previous"`
	Actual    int    `json:"actual"`
	Repaired  bool   `json:"repaired"`
	// Deferred is set when drift was seen but the count was left alone: it may belong to an
	// admission still in flight, or the count moved while recounting.
	Deferred bool `json:"deferred"`
}

// Reconcile recounts the registrations occupying slots of one project and rewrites the stored
// count when it has drifted. A count is only lowered once the project has gone
// reconcileGrace without a count change, and the rewrite only applies if the count is still
// the one that was read.
func (s *Service) Reconcile(ctx context.Context, projectID string) (ReconcileResult, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return ReconcileResult{}, domain.Upstream("get project", err)
	}

	regs, err := s.store.ListRegistrations(ctx, domain.RegistrationFilter{ProjectID: projectID})
	if err != nil {
		return ReconcileResult{}, domain.Upstream("list registrations", err)
	}
	actual := 0
	for _, r := range regs {
		if CountsOccupyingSlot(r) {
			actual++
		}
	}

	res := ReconcileResult{ProjectID: projectID, Previous: p.CurrentBeneficiaries, Actual: actual}
	if actual == p.CurrentBeneficiaries {
		s.observer.ObserveReconcile(false)
		return res, nil
	}

	now := s.now()
	if actual < p.CurrentBeneficiaries && now.Sub(p.UpdatedAt) < s.reconcileGrace {
		res.Deferred = true
		s.logger.InfoContext(ctx, "beneficiary count drift deferred",
			"project_id", projectID,
			"previous", p.CurrentBeneficiaries,
			"actual", actual,
			"updated_at", p.UpdatedAt,
		)
		s.observer.ObserveReconcile(false)
		return res, nil
	}

	ok, err := s.store.SetBeneficiaryCount(ctx, projectID, p.CurrentBeneficiaries, actual, now)
	if err != nil {
		return res, domain.Upstream("set beneficiary count", err)
	}
	if !ok {
		res.Deferred = true
		s.logger.InfoContext(ctx, "beneficiary count moved during reconcile", "project_id", projectID)
		s.observer.ObserveReconcile(false)
		return res, nil
	}
	res.Repaired = true
	s.logger.WarnContext(ctx, "beneficiary count repaired",
		"project_id", projectID,
		"previous", p.CurrentBeneficiaries,
		"actual", actual,
	)
	s.observer.ObserveReconcile(true)
	return res, nil
}

// ReconcileAll reconciles every project and returns one result per project. It stops at the
// first store failure.
func (s *Service) ReconcileAll(ctx context.Context) ([]ReconcileResult, error) {
	projects, err := s.store.ListProjects(ctx, domain.ProjectFilter{})
	if err != nil {
		return nil, domain.Upstream("list projects", err)
	}
	results := make([]ReconcileResult, 0, len(projects))
	for _, p := range projects {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.Reconcile(ctx, p.ID)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
