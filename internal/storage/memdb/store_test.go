package memdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	return s
}

func seedProject(t *testing.T, s *Store, target int, createdAt time.Time) *domain.Project {
	t.Helper()
	p := &domain.Project{
		Title:               "Clean Water Initiative",
		TargetBeneficiaries: target,
		Status:              domain.ProjectActive,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}
	require.NoError(t, s.CreateProject(context.Background(), p))
	require.NotEmpty(t, p.ID)
	return p
}

func TestStore_Projects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	older := seedProject(t, s, 10, base)
	newer := seedProject(t, s, 10, base.Add(time.Hour))

	t.Run("lists newest first", func(t *testing.T) {
		list, err := s.ListProjects(ctx, domain.ProjectFilter{})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID, list[0].ID)
		assert.Equal(t, older.ID, list[1].ID)
	})

	t.Run("filters by status", func(t *testing.T) {
		require.NoError(t, s.SetProjectStatus(ctx, older.ID, domain.ProjectClosed, base))

		closed, err := s.ListProjects(ctx, domain.ProjectFilter{Status: domain.ProjectClosed})
		require.NoError(t, err)
		require.Len(t, closed, 1)
		assert.Equal(t, older.ID, closed[0].ID)

		n, err := s.CountProjects(ctx, domain.ProjectFilter{Status: domain.ProjectActive})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("update keeps derived count and creation time", func(t *testing.T) {
		require.NoError(t, s.ReserveSlot(ctx, newer.ID, base))

		edit := newer.Clone()
		edit.Title = "Renamed"
		edit.CurrentBeneficiaries = 99
		edit.CreatedAt = base.Add(48 * time.Hour)
		require.NoError(t, s.UpdateProject(ctx, edit))

		got, err := s.GetProject(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, 1, got.CurrentBeneficiaries)
		assert.Equal(t, newer.CreatedAt, got.CreatedAt)
	})

	t.Run("unknown ids", func(t *testing.T) {
		_, err := s.GetProject(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
		assert.ErrorIs(t, s.DeleteProject(ctx, "missing"), domain.ErrProjectNotFound)
		assert.ErrorIs(t, s.SetProjectStatus(ctx, "missing", domain.ProjectPaused, base), domain.ErrProjectNotFound)
	})

	t.Run("delete refuses a project holding slots", func(t *testing.T) {
		assert.ErrorIs(t, s.DeleteProject(ctx, newer.ID), domain.ErrHasRegistrations)
		_, err := s.GetProject(ctx, newer.ID)
		require.NoError(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteProject(ctx, older.ID))
		_, err := s.GetProject(ctx, older.ID)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})
}

func TestStore_Slots(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()
	p := seedProject(t, s, 2, now)

	require.NoError(t, s.ReserveSlot(ctx, p.ID, now))
	require.NoError(t, s.ReserveSlot(ctx, p.ID, now))
	assert.ErrorIs(t, s.ReserveSlot(ctx, p.ID, now), domain.ErrProjectFull)

	require.NoError(t, s.ReleaseSlot(ctx, p.ID, now))
	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentBeneficiaries)

	ok, err := s.SetBeneficiaryCount(ctx, p.ID, 2, 0, now)
	require.NoError(t, err)
	assert.False(t, ok, "count is 1, not 2")
	ok, err = s.SetBeneficiaryCount(ctx, p.ID, 1, 0, now)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = s.SetBeneficiaryCount(ctx, "missing", 0, 1, now)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	require.NoError(t, s.ReleaseSlot(ctx, p.ID, now))
	got, err = s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentBeneficiaries, "release never goes below zero")
}

func TestStore_Registrations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	alice := &domain.Registration{ProjectID: "p1", Name: "Alice", Email: "alice@x.com", Status: domain.RegistrationPending, CreatedAt: now}
	bob := &domain.Registration{ProjectID: "p1", Name: "Bob", Email: "bob@x.com", Status: domain.RegistrationPending, CreatedAt: now.Add(time.Minute)}
	carol := &domain.Registration{ProjectID: "p2", Name: "Carol", Email: "alice@x.com", Status: domain.RegistrationPending, CreatedAt: now}

	require.NoError(t, s.CreateRegistration(ctx, alice))
	require.NoError(t, s.CreateRegistration(ctx, bob))
	require.NoError(t, s.CreateRegistration(ctx, carol), "same email on another project is fine")

	t.Run("duplicate pair is rejected", func(t *testing.T) {
		dup := &domain.Registration{ProjectID: "p1", Name: "Alice again", Email: "ALICE@x.com", Status: domain.RegistrationPending}
		assert.ErrorIs(t, s.CreateRegistration(ctx, dup), domain.ErrDuplicateRegistration)
	})

	t.Run("find by pair", func(t *testing.T) {
		got, err := s.FindRegistration(ctx, "p1", "alice@x.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, alice.ID, got.ID)

		none, err := s.FindRegistration(ctx, "p3", "alice@x.com")
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("list and count with filters", func(t *testing.T) {
		list, err := s.ListRegistrations(ctx, domain.RegistrationFilter{ProjectID: "p1"})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, bob.ID, list[0].ID)

		n, err := s.CountRegistrations(ctx, domain.RegistrationFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("compare and set status", func(t *testing.T) {
		ok, err := s.CompareAndSetStatus(ctx, alice.ID, domain.RegistrationPending, domain.RegistrationApproved, now)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.CompareAndSetStatus(ctx, alice.ID, domain.RegistrationPending, domain.RegistrationRejected, now)
		require.NoError(t, err)
		assert.False(t, ok)

		approved, err := s.CountRegistrations(ctx, domain.RegistrationFilter{Status: domain.RegistrationApproved})
		require.NoError(t, err)
		assert.Equal(t, int64(1), approved)

		_, err = s.CompareAndSetStatus(ctx, "missing", domain.RegistrationPending, domain.RegistrationApproved, now)
		assert.ErrorIs(t, err, domain.ErrRegistrationNotFound)
	})
}
