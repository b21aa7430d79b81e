// Package memdb is an in-process entity store backed by hashicorp/go-memdb.
// Write transactions are serialized by memdb, so every read-modify-write below is atomic.
package memdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
)

type Store struct {
	db *memdb.MemDB
}

var _ domain.Store = (*Store)(nil)

var errCountMoved = errors.New("beneficiary count moved")

func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("memdb schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error  { return ctx.Err() }
func (s *Store) Close(ctx context.Context) error { return nil }

// --- projects ---

func (s *Store) CreateProject(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(tableProjects, p.Clone()); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	txn.Commit()
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	p, err := getProject(txn, id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

func (s *Store) ListProjects(ctx context.Context, f domain.ProjectFilter) ([]domain.Project, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := projectIterator(txn, f)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, 16)
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, *obj.(*domain.Project).Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CountProjects(ctx context.Context, f domain.ProjectFilter) (int64, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := projectIterator(txn, f)
	if err != nil {
		return 0, err
	}
	var n int64
	for obj := it.Next(); obj != nil; obj = it.Next() {
		n++
	}
	return n, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *domain.Project) error {
	return s.mutateProject(p.ID, func(cur *domain.Project) error {
		next := p.Clone()
		next.CurrentBeneficiaries = cur.CurrentBeneficiaries
		next.CreatedAt = cur.CreatedAt
		*cur = *next
		return nil
	})
}

func (s *Store) SetProjectStatus(ctx context.Context, id string, status domain.ProjectStatus, now time.Time) error {
	return s.mutateProject(id, func(cur *domain.Project) error {
		cur.Status = status
		cur.UpdatedAt = now
		return nil
	})
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	p, err := getProject(txn, id)
	if err != nil {
		return err
	}
	if p.CurrentBeneficiaries > 0 {
		return domain.ErrHasRegistrations
	}
	if err := txn.Delete(tableProjects, p); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	txn.Commit()
	return nil
}

func (s *Store) ReserveSlot(ctx context.Context, id string, now time.Time) error {
	return s.mutateProject(id, func(cur *domain.Project) error {
		if cur.CurrentBeneficiaries >= cur.TargetBeneficiaries {
			return domain.ErrProjectFull
		}
		cur.CurrentBeneficiaries++
		cur.UpdatedAt = now
		return nil
	})
}

func (s *Store) ReleaseSlot(ctx context.Context, id string, now time.Time) error {
	return s.mutateProject(id, func(cur *domain.Project) error {
		if cur.CurrentBeneficiaries > 0 {
			cur.CurrentBeneficiaries--
		}
		cur.UpdatedAt = now
		return nil
	})
}

func (s *Store) SetBeneficiaryCount(ctx context.Context, id string, from, to int, now time.Time) (bool, error) {
	err := s.mutateProject(id, func(cur *domain.Project) error {
		if cur.CurrentBeneficiaries != from {
			return errCountMoved
		}
		cur.CurrentBeneficiaries = to
		cur.UpdatedAt = now
		return nil
	})
	if errors.Is(err, errCountMoved) {
		return false, nil
	}
	return err == nil, err
}

// mutateProject applies fn to a copy of the stored project and replaces it on success.
// Stored objects are never modified in place.
func (s *Store) mutateProject(id string, fn func(cur *domain.Project) error) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	stored, err := getProject(txn, id)
	if err != nil {
		return err
	}
	next := stored.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := txn.Insert(tableProjects, next); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	txn.Commit()
	return nil
}

func getProject(txn *memdb.Txn, id string) (*domain.Project, error) {
	if id == "" {
		return nil, domain.ErrProjectNotFound
	}
	obj, err := txn.First(tableProjects, indexID, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if obj == nil {
		return nil, domain.ErrProjectNotFound
	}
	return obj.(*domain.Project), nil
}

func projectIterator(txn *memdb.Txn, f domain.ProjectFilter) (memdb.ResultIterator, error) {
	var (
		it  memdb.ResultIterator
		err error
	)
	if f.Status != "" {
		it, err = txn.Get(tableProjects, indexStatus, string(f.Status))
	} else {
		it, err = txn.Get(tableProjects, indexID)
	}
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return it, nil
}

// --- registrations ---

func (s *Store) CreateRegistration(ctx context.Context, r *domain.Registration) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	// memdb does not reject duplicates on secondary unique indexes, so check inside the txn.
	existing, err := txn.First(tableRegistrations, indexProjectEmail, r.ProjectID, domain.NormalizeEmail(r.Email))
	if err != nil {
		return fmt.Errorf("lookup registration: %w", err)
	}
	if existing != nil {
		return domain.ErrDuplicateRegistration
	}
	if err := txn.Insert(tableRegistrations, r.Clone()); err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	txn.Commit()
	return nil
}

func (s *Store) GetRegistration(ctx context.Context, id string) (*domain.Registration, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	r, err := getRegistration(txn, id)
	if err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

func (s *Store) FindRegistration(ctx context.Context, projectID, email string) (*domain.Registration, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	obj, err := txn.First(tableRegistrations, indexProjectEmail, projectID, domain.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	if obj == nil {
		return nil, nil
	}
	return obj.(*domain.Registration).Clone(), nil
}

func (s *Store) ListRegistrations(ctx context.Context, f domain.RegistrationFilter) ([]domain.Registration, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := registrationIterator(txn, f)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Registration, 0, 16)
	for obj := it.Next(); obj != nil; obj = it.Next() {
		r := obj.(*domain.Registration)
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, *r.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CountRegistrations(ctx context.Context, f domain.RegistrationFilter) (int64, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := registrationIterator(txn, f)
	if err != nil {
		return 0, err
	}
	var n int64
	for obj := it.Next(); obj != nil; obj = it.Next() {
		if f.Status != "" && obj.(*domain.Registration).Status != f.Status {
			continue
		}
		n++
	}
	return n, nil
}

func (s *Store) CompareAndSetStatus(ctx context.Context, id string, from, to domain.RegistrationStatus, now time.Time) (bool, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	stored, err := getRegistration(txn, id)
	if err != nil {
		return false, err
	}
	if stored.Status != from {
		return false, nil
	}
	next := stored.Clone()
	next.Status = to
	next.UpdatedAt = now
	if err := txn.Insert(tableRegistrations, next); err != nil {
		return false, fmt.Errorf("update registration: %w", err)
	}
	txn.Commit()
	return true, nil
}

func getRegistration(txn *memdb.Txn, id string) (*domain.Registration, error) {
	if id == "" {
		return nil, domain.ErrRegistrationNotFound
	}
	obj, err := txn.First(tableRegistrations, indexID, id)
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if obj == nil {
		return nil, domain.ErrRegistrationNotFound
	}
	return obj.(*domain.Registration), nil
}

func registrationIterator(txn *memdb.Txn, f domain.RegistrationFilter) (memdb.ResultIterator, error) {
	var (
		it  memdb.ResultIterator
		err error
	)
	if f.ProjectID != "" {
		it, err = txn.Get(tableRegistrations, indexProjectID, f.ProjectID)
	} else {
		it, err = txn.Get(tableRegistrations, indexID)
	}
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return it, nil
}
