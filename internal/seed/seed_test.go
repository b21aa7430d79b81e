package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
	"github.com/y4d-ngo/beneficiary-portal/internal/storage/memdb"
)

func TestDefault(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	require.Len(t, f.Projects, 4)
	assert.Equal(t, "Digital Literacy Program", f.Projects[0].Title)
	assert.Len(t, f.Projects[0].Requirements, 3)
	assert.Equal(t, "completed", f.Projects[3].Status)
	assert.Equal(t, "approved", f.Projects[0].Registrations[0].Status)
	assert.Equal(t, "1234-5678-9012", f.Projects[0].Registrations[0].NationalID)
}

func TestParse_Strict(t *testing.T) {
	_, err := Parse([]byte("projects:\n  - titel: typo\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("projects:\n  - title: Only title\n"))
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestParse_InvalidStatus(t *testing.T) {
	data := []byte(`
projects:
  - title: T
    shortDescription: S
    description: D
    location: L
    category: C
    startDate: "2025-01-01"
    endDate: "2025-02-01"
    targetBeneficiaries: 3
    status: archived
`)
	_, err := Parse(data)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, defaultSeed, 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Projects, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	store, err := memdb.New()
	require.NoError(t, err)
	f, err := Default()
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sum, err := Apply(ctx, store, f, false, now)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Projects)
	assert.Equal(t, 5, sum.Registrations)

	completed, err := store.CountProjects(ctx, domain.ProjectFilter{Status: domain.ProjectCompleted})
	require.NoError(t, err)
	assert.EqualValues(t, 1, completed)

	approved, err := store.CountRegistrations(ctx, domain.RegistrationFilter{Status: domain.RegistrationApproved})
	require.NoError(t, err)
	assert.EqualValues(t, 3, approved)

	_, err = Apply(ctx, store, f, false, now)
	assert.ErrorIs(t, err, ErrStoreNotEmpty)
}
