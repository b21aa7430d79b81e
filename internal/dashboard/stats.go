package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
)

// Stats is the admin dashboard summary. TotalBeneficiaries counts approved registrations
// only; AllBeneficiaries lists every registration whatever its status.
type Stats struct {
	TotalProjects        int64                 `json:"totalProjects"`
	ActiveProjects       int64                 `json:"activeProjects"`
	ClosedProjects       int64                 `json:"closedProjects"`
	TotalRegistrations   int64                 `json:"totalRegistrations"`
	PendingRegistrations int64                 `json:"pendingRegistrations"`
	TotalBeneficiaries   int64                 `json:"totalBeneficiaries"`
	AllBeneficiaries     []domain.Registration `json:"allBeneficiaries"`
}

// Service computes dashboard stats straight from the entity store.
type Service struct {
	store domain.Store
}

func NewService(store domain.Store) *Service {
	return &Service{store: store}
}

// Stats runs every count concurrently and fails on the first store error.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	g, ctx := errgroup.WithContext(ctx)

	countProjects := func(dst *int64, f domain.ProjectFilter) {
		g.Go(func() error {
			n, err := s.store.CountProjects(ctx, f)
			if err != nil {
				return domain.Upstream("count projects", err)
			}
			*dst = n
			return nil
		})
	}
	countRegistrations := func(dst *int64, f domain.RegistrationFilter) {
		g.Go(func() error {
			n, err := s.store.CountRegistrations(ctx, f)
			if err != nil {
				return domain.Upstream("count registrations", err)
			}
			*dst = n
			return nil
		})
	}

	countProjects(&out.TotalProjects, domain.ProjectFilter{})
	countProjects(&out.ActiveProjects, domain.ProjectFilter{Status: domain.ProjectActive})
	countProjects(&out.ClosedProjects, domain.ProjectFilter{Status: domain.ProjectClosed})
	countRegistrations(&out.TotalRegistrations, domain.RegistrationFilter{})
	countRegistrations(&out.PendingRegistrations, domain.RegistrationFilter{Status: domain.RegistrationPending})
	countRegistrations(&out.TotalBeneficiaries, domain.RegistrationFilter{Status: domain.RegistrationApproved})

	g.Go(func() error {
		regs, err := s.store.ListRegistrations(ctx, domain.RegistrationFilter{})
		if err != nil {
			return domain.Upstream("list registrations", err)
		}
		out.AllBeneficiaries = regs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.AllBeneficiaries == nil {
		out.AllBeneficiaries = []domain.Registration{}
	}
	return &out, nil
}
