package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProjectInput() ProjectInput {
	return ProjectInput{
		Title:               "Digital Literacy Program",
		ShortDescription:    "Basic computer skills",
		Description:         "Teaching basic computer skills to rural communities",
		Location:            "Rural Maharashtra",
		Category:            "Education",
		StartDate:           "2024-01-15",
		EndDate:             "2024-06-15",
		TargetBeneficiaries: 100,
		Requirements:        []string{"Must be 18 years or older", " ", "Commitment to attend"},
	}
}

func TestNewProject(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	p, err := NewProject(validProjectInput(), now)
	require.NoError(t, err)
	assert.Equal(t, ProjectActive, p.Status)
	assert.Equal(t, 0, p.CurrentBeneficiaries)
	assert.Equal(t, DefaultProjectImage, p.Image)
	assert.Equal(t, []string{"Must be 18 years or older", "Commitment to attend"}, p.Requirements)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, now, p.UpdatedAt)
}

func TestProjectInput_Validate(t *testing.T) {
	t.Run("reports first missing field", func(t *testing.T) {
		in := validProjectInput()
		in.Title = ""
		in.Category = ""

		err := in.Validate()
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "title", ve.Field)
		assert.Equal(t, CodeMissingField, ve.Code)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("zero target is missing", func(t *testing.T) {
		in := validProjectInput()
		in.TargetBeneficiaries = 0

		var ve *ValidationError
		require.True(t, errors.As(in.Validate(), &ve))
		assert.Equal(t, "targetBeneficiaries", ve.Field)
	})

	t.Run("negative target is invalid", func(t *testing.T) {
		in := validProjectInput()
		in.TargetBeneficiaries = -3

		var ve *ValidationError
		require.True(t, errors.As(in.Validate(), &ve))
		assert.Equal(t, CodeInvalidValue, ve.Code)
	})
}

func TestProject_ApplyUpdate(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p, err := NewProject(validProjectInput(), created)
	require.NoError(t, err)
	p.ID = "p1"
	p.CurrentBeneficiaries = 7

	in := validProjectInput()
	in.Title = "Renamed"
	in.Image = "https://cdn.example.org/p.png"
	in.Status = "paused"

	later := created.Add(time.Hour)
	require.NoError(t, p.ApplyUpdate(in, later))
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, 7, p.CurrentBeneficiaries)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, later, p.UpdatedAt)
	assert.Equal(t, "Renamed", p.Title)
	assert.Equal(t, ProjectPaused, p.Status)

	in.Status = "archived"
	assert.ErrorIs(t, p.ApplyUpdate(in, later), ErrInvalidStatus)
}

func TestProject_EffectiveStatus(t *testing.T) {
	p := &Project{}
	assert.Equal(t, ProjectActive, p.EffectiveStatus())
	p.Status = ProjectClosed
	assert.Equal(t, ProjectClosed, p.EffectiveStatus())
}

func TestRegistrationInput_Validate(t *testing.T) {
	ok := RegistrationInput{Name: "Alice", Email: " Alice@X.com "}
	require.NoError(t, ok.Validate())

	r := NewRegistration("p1", ok, time.Now())
	assert.Equal(t, "alice@x.com", r.Email)
	assert.Equal(t, RegistrationPending, r.Status)

	cases := map[string]RegistrationInput{
		"name":  {Email: "a@x.com"},
		"email": {Name: "A"},
	}
	for field, in := range cases {
		var ve *ValidationError
		require.True(t, errors.As(in.Validate(), &ve), field)
		assert.Equal(t, field, ve.Field)
	}

	bad := RegistrationInput{Name: "A", Email: "not-an-email"}
	var ve *ValidationError
	require.True(t, errors.As(bad.Validate(), &ve))
	assert.Equal(t, CodeInvalidValue, ve.Code)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrProjectNotFound))
	assert.Equal(t, KindConflict, KindOf(ErrProjectFull))
	assert.Equal(t, KindConflict, KindOf(ErrHasRegistrations))
	assert.Equal(t, KindConflict, KindOf(ErrDuplicateRegistration))
	assert.Equal(t, KindUpstream, KindOf(errors.New("connection reset")))

	wrapped := Upstream("insert registration", errors.New("socket closed"))
	var ue *UpstreamError
	require.True(t, errors.As(wrapped, &ue))
	assert.Equal(t, "insert registration", ue.Op)

	assert.Same(t, ErrProjectFull, Upstream("reserve slot", ErrProjectFull))
	assert.Nil(t, Upstream("noop", nil))
}
