package domain

import (
	"context"
	"time"
)

// ProjectFilter narrows project listings and counts. Zero value matches everything.
type ProjectFilter struct {
	Status ProjectStatus
}

// RegistrationFilter narrows registration listings and counts. Zero value matches everything.
type RegistrationFilter struct {
	ProjectID string
	Status    RegistrationStatus
}

// ProjectStore persists projects. Implementations return ErrProjectNotFound for unknown ids.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	// ListProjects returns projects newest first.
	ListProjects(ctx context.Context, f ProjectFilter) ([]Project, error)
	CountProjects(ctx context.Context, f ProjectFilter) (int64, error)
	// UpdateProject writes the editable fields and status; it never touches
	// CurrentBeneficiaries or CreatedAt.
	UpdateProject(ctx context.Context, p *Project) error
	SetProjectStatus(ctx context.Context, id string, status ProjectStatus, now time.Time) error
	// DeleteProject removes a project only while CurrentBeneficiaries is zero;
	// otherwise it returns ErrHasRegistrations.
	DeleteProject(ctx context.Context, id string) error

	// ReserveSlot atomically increments CurrentBeneficiaries only while it is below
	// TargetBeneficiaries. A failed condition is ErrProjectFull.
	ReserveSlot(ctx context.Context, id string, now time.Time) error
	// ReleaseSlot atomically decrements CurrentBeneficiaries, never below zero.
	ReleaseSlot(ctx context.Context, id string, now time.Time) error
	// SetBeneficiaryCount replaces the derived count with to, but only while it
	// still equals from. It reports false when the count moved in between.
	SetBeneficiaryCount(ctx context.Context, id string, from, to int, now time.Time) (bool, error)
}

// RegistrationStore persists registrations. Implementations enforce uniqueness of
// (ProjectID, Email) and return ErrDuplicateRegistration on collision.
type RegistrationStore interface {
	CreateRegistration(ctx context.Context, r *Registration) error
	GetRegistration(ctx context.Context, id string) (*Registration, error)
	// FindRegistration returns nil, nil when no registration matches.
	FindRegistration(ctx context.Context, projectID, email string) (*Registration, error)
	// ListRegistrations returns registrations newest first.
	ListRegistrations(ctx context.Context, f RegistrationFilter) ([]Registration, error)
	CountRegistrations(ctx context.Context, f RegistrationFilter) (int64, error)
	// CompareAndSetStatus moves a registration from one status to another. It reports false
	// without writing when the stored status is no longer from.
	CompareAndSetStatus(ctx context.Context, id string, from, to RegistrationStatus, now time.Time) (bool, error)
}

// Store is the entity store: both collections behind one handle.
type Store interface {
	ProjectStore
	RegistrationStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
