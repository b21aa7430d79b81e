package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y4d-ngo/beneficiary-portal/config"
	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
)

func setupStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func re(s string) string {
	return regexp.QuoteMeta(s)
}

var projectCols = []string{
	"id", "title", "short_description", "description", "location", "category", "start_date", "end_date",
	"target_beneficiaries", "current_beneficiaries", "status", "requirements", "image", "created_at", "updated_at",
}

var registrationCols = []string{
	"id", "project_id", "name", "email", "phone", "national_id", "address", "age", "gender", "occupation",
	"family_size", "monthly_income", "status", "created_at", "updated_at",
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "postgres://u@h/db", DSN(&config.DatabaseConfig{DSN: "postgres://u@h/db", Host: "ignored"}))
	assert.Equal(t,
		"host=db port=5433 user=ngo password=pw dbname=portal sslmode=disable",
		DSN(&config.DatabaseConfig{Host: "db", Port: 5433, User: "ngo", Password: "pw", Name: "portal"}),
	)
}

func TestStore_Migrate(t *testing.T) {
	s, mock := setupStore(t)
	mock.ExpectExec(re("CREATE TABLE IF NOT EXISTS projects")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetProject(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectQuery(re("SELECT id, title")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(projectCols).AddRow(
				"p1", "Skill Development", "Vocational training", "Long description", "Mumbai", "Education",
				"2025-02-01", "2025-08-31", 100, 12, "active", `{"Age 18-35","ID proof"}`, "/img.png", now, now,
			))

		p, err := s.GetProject(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Skill Development", p.Title)
		assert.Equal(t, 100, p.TargetBeneficiaries)
		assert.Equal(t, 12, p.CurrentBeneficiaries)
		assert.Equal(t, domain.ProjectActive, p.Status)
		assert.Equal(t, []string{"Age 18-35", "ID proof"}, p.Requirements)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectQuery(re("SELECT id, title")).WithArgs("nope").WillReturnRows(sqlmock.NewRows(projectCols))

		_, err := s.GetProject(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})
}

func TestStore_ListProjects(t *testing.T) {
	ctx := context.Background()
	s, mock := setupStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(re("FROM projects WHERE status = $1 ORDER BY created_at DESC")).
		WithArgs("closed").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p2", "B", "s", "d", "l", "c", "x", "y", 5, 5, "closed", "{}", "i", now, now).
			AddRow("p1", "A", "s", "d", "l", "c", "x", "y", 5, 1, "closed", "{}", "i", now.Add(-time.Hour), now))

	list, err := s.ListProjects(ctx, domain.ProjectFilter{Status: domain.ProjectClosed})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ID)
	assert.Equal(t, []string{}, list[1].Requirements)

	mock.ExpectQuery(re("SELECT COUNT(*) FROM projects")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	n, err := s.CountProjects(ctx, domain.ProjectFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateProject(t *testing.T) {
	s, mock := setupStore(t)
	now := time.Now()
	p := &domain.Project{Title: "Clean Water", TargetBeneficiaries: 40, Status: domain.ProjectActive, CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(re("INSERT INTO projects")).
		WithArgs(sqlmock.AnyArg(), "Clean Water", "", "", "", "", "", "", 40, 0, "active",
			sqlmock.AnyArg(), "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.CreateProject(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ReserveSlot(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	reserve := re("SET current_beneficiaries = current_beneficiaries + 1")

	t.Run("reserved", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(reserve).WithArgs("p1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, s.ReserveSlot(ctx, "p1", now))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("full", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(reserve).WithArgs("p1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(re("SELECT id, title")).WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("p1", "A", "s", "d", "l", "c", "x", "y", 1, 1, "active", "{}", "i", now, now))
		assert.ErrorIs(t, s.ReserveSlot(ctx, "p1", now), domain.ErrProjectFull)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing project", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(reserve).WithArgs("p9", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(re("SELECT id, title")).WithArgs("p9").WillReturnRows(sqlmock.NewRows(projectCols))
		assert.ErrorIs(t, s.ReserveSlot(ctx, "p9", now), domain.ErrProjectNotFound)
	})

	t.Run("release floors at zero", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(re("GREATEST(current_beneficiaries - 1, 0)")).
			WithArgs("p1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, s.ReleaseSlot(ctx, "p1", now))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_DeleteProject(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	del := re("DELETE FROM projects WHERE id = $1 AND current_beneficiaries = 0")

	t.Run("deleted", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(del).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, s.DeleteProject(ctx, "p1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("slots still held", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(del).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(re("SELECT id, title")).WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("p1", "A", "s", "d", "l", "c", "x", "y", 5, 1, "active", "{}", "i", now, now))
		assert.ErrorIs(t, s.DeleteProject(ctx, "p1"), domain.ErrHasRegistrations)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_SetBeneficiaryCount(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	set := re("UPDATE projects SET current_beneficiaries = $3, updated_at = $4 WHERE id = $1 AND current_beneficiaries = $2")

	t.Run("applied", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(set).WithArgs("p1", 3, 1, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
		ok, err := s.SetBeneficiaryCount(ctx, "p1", 3, 1, now)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count moved", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(set).WithArgs("p1", 3, 1, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(re("SELECT id, title")).WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("p1", "A", "s", "d", "l", "c", "x", "y", 5, 4, "active", "{}", "i", now, now))
		ok, err := s.SetBeneficiaryCount(ctx, "p1", 3, 1, now)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_ProjectWrites_NotFound(t *testing.T) {
	ctx := context.Background()
	s, mock := setupStore(t)
	now := time.Now()

	mock.ExpectExec(re("UPDATE projects SET status = $2")).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.SetProjectStatus(ctx, "x", domain.ProjectClosed, now), domain.ErrProjectNotFound)

	mock.ExpectExec(re("DELETE FROM projects")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(re("SELECT id, title")).WithArgs("x").WillReturnRows(sqlmock.NewRows(projectCols))
	assert.ErrorIs(t, s.DeleteProject(ctx, "x"), domain.ErrProjectNotFound)

	mock.ExpectExec(re("UPDATE projects SET current_beneficiaries = $3")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(re("SELECT id, title")).WithArgs("x").WillReturnRows(sqlmock.NewRows(projectCols))
	_, err := s.SetBeneficiaryCount(ctx, "x", 0, 3, now)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	mock.ExpectExec(re("UPDATE projects\n   SET title = $2")).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.UpdateProject(ctx, &domain.Project{ID: "x"}), domain.ErrProjectNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateRegistration(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("normalizes email", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(re("INSERT INTO registrations")).
			WithArgs(sqlmock.AnyArg(), "p1", "Asha", "asha@example.org", "", "", "", 0, "", "", 0, 0.0,
				"pending", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		r := &domain.Registration{ProjectID: "p1", Name: "Asha", Email: " Asha@Example.org", Status: domain.RegistrationPending, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, s.CreateRegistration(ctx, r))
		assert.NotEmpty(t, r.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is duplicate", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(re("INSERT INTO registrations")).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "registrations_project_email_key"})

		err := s.CreateRegistration(ctx, &domain.Registration{ProjectID: "p1", Email: "a@b.org"})
		assert.ErrorIs(t, err, domain.ErrDuplicateRegistration)
	})

	t.Run("other failures are wrapped", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(re("INSERT INTO registrations")).WillReturnError(errors.New("connection refused"))

		err := s.CreateRegistration(ctx, &domain.Registration{ProjectID: "p1", Email: "a@b.org"})
		require.Error(t, err)
		assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
	})
}

func TestStore_FindAndListRegistrations(t *testing.T) {
	ctx := context.Background()
	s, mock := setupStore(t)
	now := time.Now()

	mock.ExpectQuery(re("WHERE project_id = $1 AND email = $2")).
		WithArgs("p1", "ravi@example.org").
		WillReturnRows(sqlmock.NewRows(registrationCols))
	r, err := s.FindRegistration(ctx, "p1", "RAVI@example.org ")
	require.NoError(t, err)
	assert.Nil(t, r)

	mock.ExpectQuery(re("FROM registrations WHERE project_id = $1 AND status = $2 ORDER BY created_at DESC")).
		WithArgs("p1", "approved").
		WillReturnRows(sqlmock.NewRows(registrationCols).
			AddRow("r1", "p1", "Ravi", "ravi@example.org", "98", "N1", "Addr", 30, "male", "farmer", 4, 8000.5, "approved", now, now))
	list, err := s.ListRegistrations(ctx, domain.RegistrationFilter{ProjectID: "p1", Status: domain.RegistrationApproved})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 8000.5, list[0].MonthlyIncome)
	assert.Equal(t, domain.RegistrationApproved, list[0].Status)

	mock.ExpectQuery(re("SELECT COUNT(*) FROM registrations WHERE status = $1")).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	n, err := s.CountRegistrations(ctx, domain.RegistrationFilter{Status: domain.RegistrationPending})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	mock.ExpectQuery(re("FROM registrations WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = s.GetRegistration(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRegistrationNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CompareAndSetStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	cas := re("UPDATE registrations SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2")

	t.Run("applied", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(cas).WithArgs("r1", "pending", "approved", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		ok, err := s.CompareAndSetStatus(ctx, "r1", domain.RegistrationPending, domain.RegistrationApproved, now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("lost race", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(cas).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(re("FROM registrations WHERE id = $1")).WithArgs("r1").
			WillReturnRows(sqlmock.NewRows(registrationCols).
				AddRow("r1", "p1", "A", "a@b.org", "", "", "", 0, "", "", 0, 0.0, "approved", now, now))
		ok, err := s.CompareAndSetStatus(ctx, "r1", domain.RegistrationPending, domain.RegistrationApproved, now)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		s, mock := setupStore(t)
		mock.ExpectExec(cas).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(re("FROM registrations WHERE id = $1")).WithArgs("r9").
			WillReturnRows(sqlmock.NewRows(registrationCols))
		_, err := s.CompareAndSetStatus(ctx, "r9", domain.RegistrationPending, domain.RegistrationApproved, now)
		assert.ErrorIs(t, err, domain.ErrRegistrationNotFound)
	})
}
