package lifecycle

import (
	"context"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
)

// CreateProject validates input and stores a new active project with no beneficiaries.
func (s *Service) CreateProject(ctx context.Context, in domain.ProjectInput) (*domain.Project, error) {
	p, err := domain.NewProject(in, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, domain.Upstream("create project", err)
	}
	s.logger.InfoContext(ctx, "project created", "project_id", p.ID, "target", p.TargetBeneficiaries)
	return p, nil
}

// GetProject returns one project.
func (s *Service) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, domain.Upstream("get project", err)
	}
	return p, nil
}

// ListProjects returns projects newest first. An empty status lists everything; an unknown
// status is ErrInvalidStatus.
func (s *Service) ListProjects(ctx context.Context, status string) ([]domain.Project, error) {
	var f domain.ProjectFilter
	if status != "" {
		st, err := domain.ValidateProjectStatus(status)
		if err != nil {
			return nil, err
		}
		f.Status = st
	}
	projects, err := s.store.ListProjects(ctx, f)
	if err != nil {
		return nil, domain.Upstream("list projects", err)
	}
	return projects, nil
}

// UpdateProject replaces the editable fields of a project. The beneficiary count, id and
// creation time are never changed. Lowering the target below the current count is allowed;
// admission simply stays closed until the count drops.
func (s *Service) UpdateProject(ctx context.Context, id string, in domain.ProjectInput) (*domain.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, domain.Upstream("get project", err)
	}
	if err := p.ApplyUpdate(in, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, domain.Upstream("update project", err)
	}
	return s.GetProject(ctx, id)
}

// SetProjectStatus validates status and writes it. Any legal status may follow any other.
func (s *Service) SetProjectStatus(ctx context.Context, id, status string) (*domain.Project, error) {
	st, err := domain.ValidateProjectStatus(status)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetProjectStatus(ctx, id, st, s.now()); err != nil {
		return nil, domain.Upstream("set project status", err)
	}
	s.logger.InfoContext(ctx, "project status set", "project_id", id, "status", st)
	return s.GetProject(ctx, id)
}

// CanDeleteProject reports ErrHasRegistrations while any registration references the project.
func (s *Service) CanDeleteProject(ctx context.Context, id string) error {
	n, err := s.store.CountRegistrations(ctx, domain.RegistrationFilter{ProjectID: id})
	if err != nil {
		return domain.Upstream("count registrations", err)
	}
	if n > 0 {
		return domain.ErrHasRegistrations
	}
	return nil
}

// DeleteProject removes a project that has no registrations. The store re-checks that no
// slot is held, which also refuses an admission that reserved after the count above.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.CanDeleteProject(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return domain.Upstream("delete project", err)
	}
	s.logger.InfoContext(ctx, "project deleted", "project_id", id)
	return nil
}
