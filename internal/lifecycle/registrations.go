package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
	"github.com/y4d-ngo/beneficiary-portal/internal/events"
	"github.com/y4d-ngo/beneficiary-portal/internal/notify"
)

const (
	maxStatusAttempts = 5
	joinConcurrency   = 8
)

// StatusChange is the outcome of SetRegistrationStatus.
type StatusChange struct {
	Registration     *domain.Registration `json:"registration"`
	Changed          bool                 `json:"changed"`
	NotificationSent bool                 `json:"notificationSent"`
}

// SetRegistrationStatus moves a registration to status. The write is a compare-and-set on the
// previous value, so of several concurrent callers asking for the same change exactly one sees
// Changed and only that caller notifies the applicant. Setting the current value again is a
// no-op without notification.
func (s *Service) SetRegistrationStatus(ctx context.Context, id, status string) (StatusChange, error) {
	to, err := domain.ValidateRegistrationStatus(status)
	if err != nil {
		return StatusChange{}, err
	}

	for attempt := 0; attempt < maxStatusAttempts; attempt++ {
		reg, err := s.store.GetRegistration(ctx, id)
		if err != nil {
			return StatusChange{}, domain.Upstream("get registration", err)
		}
		if reg.Status == to {
			return StatusChange{Registration: reg}, nil
		}

		now := s.now()
		ok, err := s.store.CompareAndSetStatus(ctx, id, reg.Status, to, now)
		if err != nil {
			return StatusChange{}, domain.Upstream("set registration status", err)
		}
		if !ok {
			continue
		}

		from := reg.Status
		reg.Status = to
		reg.UpdatedAt = now
		s.observer.ObserveStatusChange(string(to))
		s.logger.InfoContext(ctx, "registration status changed",
			"registration_id", id,
			"from", from,
			"to", to,
		)
		s.publish(ctx, events.RegistrationEvent{
			Type:           events.TypeRegistrationStatusChanged,
			RegistrationID: id,
			ProjectID:      reg.ProjectID,
			From:           string(from),
			To:             string(to),
			At:             now,
		})

		return StatusChange{
			Registration:     reg,
			Changed:          true,
			NotificationSent: s.notifyDecision(ctx, reg),
		}, nil
	}
	return StatusChange{}, &domain.UpstreamError{
		Op:  "set registration status",
		Err: fmt.Errorf("registration %s changed concurrently %d times", id, maxStatusAttempts),
	}
}

// notifyDecision tells the applicant about an approval or rejection. Failures only show up
// in the returned flag.
func (s *Service) notifyDecision(ctx context.Context, reg *domain.Registration) bool {
	var kind notify.Kind
	switch reg.Status {
	case domain.RegistrationApproved:
		kind = notify.KindApproved
	case domain.RegistrationRejected:
		kind = notify.KindRejected
	default:
		return false
	}
	if s.notifier == nil {
		return false
	}

	title := ""
	if p, err := s.store.GetProject(ctx, reg.ProjectID); err == nil {
		title = p.Title
	} else if !errors.Is(err, domain.ErrProjectNotFound) {
		s.logger.WarnContext(ctx, "project lookup for notification failed", "project_id", reg.ProjectID, "error", err)
	}

	res := s.notifier.Notify(ctx, notify.Notification{
		Kind:          kind,
		To:            reg.Email,
		ApplicantName: reg.Name,
		ProjectTitle:  title,
	})
	return res.Sent
}

// GetRegistration returns one registration joined with its project summary.
func (s *Service) GetRegistration(ctx context.Context, id string) (*domain.RegistrationWithProject, error) {
	reg, err := s.store.GetRegistration(ctx, id)
	if err != nil {
		return nil, domain.Upstream("get registration", err)
	}
	out := &domain.RegistrationWithProject{Registration: *reg}
	p, err := s.store.GetProject(ctx, reg.ProjectID)
	switch {
	case err == nil:
		out.Project = p.Summary()
	case !errors.Is(err, domain.ErrProjectNotFound):
		return nil, domain.Upstream("get project", err)
	}
	return out, nil
}

// ListRegistrations returns registrations newest first, optionally filtered by project and
// status, each joined with its project summary. The summary is nil for deleted projects.
func (s *Service) ListRegistrations(ctx context.Context, projectID, status string) ([]domain.RegistrationWithProject, error) {
	f := domain.RegistrationFilter{ProjectID: projectID}
	if status != "" {
		st, err := domain.ValidateRegistrationStatus(status)
		if err != nil {
			return nil, err
		}
		f.Status = st
	}

	regs, err := s.store.ListRegistrations(ctx, f)
	if err != nil {
		return nil, domain.Upstream("list registrations", err)
	}

	summaries, err := s.projectSummaries(ctx, regs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RegistrationWithProject, len(regs))
	for i, r := range regs {
		out[i] = domain.RegistrationWithProject{Registration: r, Project: summaries[r.ProjectID]}
	}
	return out, nil
}

// projectSummaries loads each distinct parent project once.
func (s *Service) projectSummaries(ctx context.Context, regs []domain.Registration) (map[string]*domain.ProjectSummary, error) {
	var (
		mu        sync.Mutex
		summaries = make(map[string]*domain.ProjectSummary)
		seen      = make(map[string]struct{})
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(joinConcurrency)
	for _, r := range regs {
		if _, ok := seen[r.ProjectID]; ok {
			continue
		}
		seen[r.ProjectID] = struct{}{}

		projectID := r.ProjectID
		g.Go(func() error {
			p, err := s.store.GetProject(gctx, projectID)
			if errors.Is(err, domain.ErrProjectNotFound) {
				return nil
			}
			if err != nil {
				return domain.Upstream("get project", err)
			}
			mu.Lock()
			summaries[projectID] = p.Summary()
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}
