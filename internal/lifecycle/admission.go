package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
	"github.com/y4d-ngo/beneficiary-portal/internal/events"
)

// Admission outcomes reported to the observer.
const (
	OutcomeAdmitted  = "admitted"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeNotFound  = "not_found"
	OutcomeFull      = "full"
	OutcomeError     = "error"
)

// AdmitRegistration registers an applicant for a project.
//
// The checks run in a fixed order: input, duplicate (project, email), project existence,
// capacity. A slot is then reserved with the store's conditional increment, so concurrent
// admissions can never push the count past the target. If inserting the registration fails
// the slot is released again.
func (s *Service) AdmitRegistration(ctx context.Context, projectID string, in domain.RegistrationInput) (*domain.Registration, error) {
	reg, err := s.admit(ctx, projectID, in)
	s.observer.ObserveAdmission(admissionOutcome(err))
	return reg, err
}

func (s *Service) admit(ctx context.Context, projectID string, in domain.RegistrationInput) (*domain.Registration, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(in.Email)

	existing, err := s.store.FindRegistration(ctx, projectID, email)
	if err != nil {
		return nil, domain.Upstream("find registration", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateRegistration
	}

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, domain.Upstream("get project", err)
	}
	if project.IsFull() {
		return nil, domain.ErrProjectFull
	}

	now := s.now()
	if err := s.store.ReserveSlot(ctx, projectID, now); err != nil {
		return nil, domain.Upstream("reserve slot", err)
	}

	reg := domain.NewRegistration(projectID, in, now)
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		return nil, s.releaseAfterFailedInsert(ctx, projectID, err)
	}

	s.logger.InfoContext(ctx, "registration admitted",
		"registration_id", reg.ID,
		"project_id", projectID,
	)
	s.publish(ctx, events.RegistrationEvent{
		Type:           events.TypeRegistrationCreated,
		RegistrationID: reg.ID,
		ProjectID:      projectID,
		To:             string(reg.Status),
		At:             now,
	})
	return reg, nil
}

// releaseAfterFailedInsert gives back a reserved slot. When that fails too the count is left
// one too high until the next reconciliation.
func (s *Service) releaseAfterFailedInsert(ctx context.Context, projectID string, insertErr error) error {
	releaseErr := s.store.ReleaseSlot(ctx, projectID, s.now())
	s.observer.ObserveSlotRelease(releaseErr == nil)
	if releaseErr != nil {
		s.logger.ErrorContext(ctx, "beneficiary count drift: slot reserved but registration not stored",
			"project_id", projectID,
			"insert_error", insertErr,
			"release_error", releaseErr,
		)
		return &domain.UpstreamError{
			Op:  "release slot",
			Err: fmt.Errorf("insert failed: %v; release failed: %v", insertErr, releaseErr),
		}
	}
	return domain.Upstream("create registration", insertErr)
}

func admissionOutcome(err error) string {
	if err == nil {
		return OutcomeAdmitted
	}
	switch {
	case errors.Is(err, domain.ErrDuplicateRegistration):
		return OutcomeDuplicate
	case errors.Is(err, domain.ErrProjectFull):
		return OutcomeFull
	case errors.Is(err, domain.ErrProjectNotFound):
		return OutcomeNotFound
	}
	if domain.KindOf(err) == domain.KindValidation {
		return OutcomeInvalid
	}
	return OutcomeError
}
