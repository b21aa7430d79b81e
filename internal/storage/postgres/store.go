package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = "23505"

const projectColumns = `id, title, short_description, description, location, category, start_date, end_date,
       target_beneficiaries, current_beneficiaries, status, requirements, image, created_at, updated_at`

const registrationColumns = `id, project_id, name, email, phone, national_id, address, age, gender, occupation,
       family_size, monthly_income, status, created_at, updated_at`

// Store is the relational entity store.
type Store struct {
	db *sql.DB
}

var _ domain.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the tables and indexes when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p      domain.Project
		status string
		reqs   pq.StringArray
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.ShortDescription, &p.Description, &p.Location, &p.Category,
		&p.StartDate, &p.EndDate, &p.TargetBeneficiaries, &p.CurrentBeneficiaries,
		&status, &reqs, &p.Image, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.ProjectStatus(status)
	p.Requirements = []string(reqs)
	if p.Requirements == nil {
		p.Requirements = []string{}
	}
	return &p, nil
}

func scanRegistration(row rowScanner) (*domain.Registration, error) {
	var (
		r      domain.Registration
		status string
	)
	err := row.Scan(
		&r.ID, &r.ProjectID, &r.Name, &r.Email, &r.Phone, &r.NationalID, &r.Address,
		&r.Age, &r.Gender, &r.Occupation, &r.FamilySize, &r.MonthlyIncome,
		&status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Status = domain.RegistrationStatus(status)
	return &r, nil
}

// Projects

func (s *Store) CreateProject(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Requirements == nil {
		p.Requirements = []string{}
	}
	const q = `
INSERT INTO projects (` + projectColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := s.db.ExecContext(ctx, q,
		p.ID, p.Title, p.ShortDescription, p.Description, p.Location, p.Category,
		p.StartDate, p.EndDate, p.TargetBeneficiaries, p.CurrentBeneficiaries,
		string(p.Status), pq.Array(p.Requirements), p.Image, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context, f domain.ProjectFilter) ([]domain.Project, error) {
	where, args := projectWhere(f)
	q := `SELECT ` + projectColumns + ` FROM projects` + where + ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	out := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return out, nil
}

func (s *Store) CountProjects(ctx context.Context, f domain.ProjectFilter) (int64, error) {
	where, args := projectWhere(f)
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

func projectWhere(f domain.ProjectFilter) (string, []any) {
	if f.Status == "" {
		return "", nil
	}
	return ` WHERE status = $1`, []any{string(f.Status)}
}

func (s *Store) UpdateProject(ctx context.Context, p *domain.Project) error {
	const q = `
UPDATE projects
   SET title = $2, short_description = $3, description = $4, location = $5, category = $6,
       start_date = $7, end_date = $8, target_beneficiaries = $9, status = $10,
       requirements = $11, image = $12, updated_at = $13
 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q,
		p.ID, p.Title, p.ShortDescription, p.Description, p.Location, p.Category,
		p.StartDate, p.EndDate, p.TargetBeneficiaries, string(p.Status),
		pq.Array(p.Requirements), p.Image, p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return expectOneRow(res, domain.ErrProjectNotFound)
}

func (s *Store) SetProjectStatus(ctx context.Context, id string, status domain.ProjectStatus, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set project status: %w", err)
	}
	return expectOneRow(res, domain.ErrProjectNotFound)
}

// DeleteProject shares the row lock with ReserveSlot, so a reservation that commits first
// makes the delete miss and one that waits finds the row gone.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND current_beneficiaries = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}
	return domain.ErrHasRegistrations
}

// ReserveSlot relies on the row lock taken by UPDATE: the condition is re-evaluated against the
// committed count, so concurrent reservations serialize on the row.
func (s *Store) ReserveSlot(ctx context.Context, id string, now time.Time) error {
	const q = `
UPDATE projects
   SET current_beneficiaries = current_beneficiaries + 1, updated_at = $2
 WHERE id = $1 AND current_beneficiaries < target_beneficiaries`
	res, err := s.db.ExecContext(ctx, q, id, now.UTC())
	if err != nil {
		return fmt.Errorf("failed to reserve slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}
	return domain.ErrProjectFull
}

func (s *Store) ReleaseSlot(ctx context.Context, id string, now time.Time) error {
	const q = `
UPDATE projects
   SET current_beneficiaries = GREATEST(current_beneficiaries - 1, 0), updated_at = $2
 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id, now.UTC())
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	return expectOneRow(res, domain.ErrProjectNotFound)
}

func (s *Store) SetBeneficiaryCount(ctx context.Context, id string, from, to int, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET current_beneficiaries = $3, updated_at = $4 WHERE id = $1 AND current_beneficiaries = $2`,
		id, from, to, now.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to set beneficiary count: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 1 {
		return true, nil
	}
	if _, err := s.GetProject(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// Registrations

func (s *Store) CreateRegistration(ctx context.Context, r *domain.Registration) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	const q = `
INSERT INTO registrations (` + registrationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := s.db.ExecContext(ctx, q,
		r.ID, r.ProjectID, r.Name, domain.NormalizeEmail(r.Email), r.Phone, r.NationalID, r.Address,
		r.Age, r.Gender, r.Occupation, r.FamilySize, r.MonthlyIncome,
		string(r.Status), r.CreatedAt.UTC(), r.UpdatedAt.UTC(),
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrDuplicateRegistration
	}
	if err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
	}
	return nil
}

func (s *Store) GetRegistration(ctx context.Context, id string) (*domain.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	r, err := scanRegistration(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return r, nil
}

func (s *Store) FindRegistration(ctx context.Context, projectID, email string) (*domain.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE project_id = $1 AND email = $2`
	r, err := scanRegistration(s.db.QueryRowContext(ctx, q, projectID, domain.NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return r, nil
}

func (s *Store) ListRegistrations(ctx context.Context, f domain.RegistrationFilter) ([]domain.Registration, error) {
	where, args := registrationWhere(f)
	q := `SELECT ` + registrationColumns + ` FROM registrations` + where + ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	out := []domain.Registration{}
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registrations: %w", err)
	}
	return out, nil
}

func (s *Store) CountRegistrations(ctx context.Context, f domain.RegistrationFilter) (int64, error) {
	where, args := registrationWhere(f)
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return n, nil
}

func registrationWhere(f domain.RegistrationFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ProjectID != "" {
		args = append(args, f.ProjectID)
		conds = append(conds, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) CompareAndSetStatus(ctx context.Context, id string, from, to domain.RegistrationStatus, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE registrations SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, string(from), string(to), now.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to set registration status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 1 {
		return true, nil
	}
	if _, err := s.GetRegistration(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
