package domain

import (
	"net/mail"
	"strings"
	"time"
)

// Registration is a beneficiary's application to a project. ProjectID is a weak reference:
// the registration never owns the project.
type Registration struct {
	ID            string             `json:"id"`
	ProjectID     string             `json:"projectId"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Phone         string             `json:"phone"`
	NationalID    string             `json:"nationalId"`
	Address       string             `json:"address"`
	Age           int                `json:"age"`
	Gender        string             `json:"gender"`
	Occupation    string             `json:"occupation"`
	FamilySize    int                `json:"familySize"`
	MonthlyIncome float64            `json:"monthlyIncome"`
	Status        RegistrationStatus `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// RegistrationInput is what an applicant submits.
type RegistrationInput struct {
	Name          string  `json:"name" yaml:"name"`
	Email         string  `json:"email" yaml:"email"`
	Phone         string  `json:"phone" yaml:"phone"`
	NationalID    string  `json:"nationalId" yaml:"nationalId"`
	Address       string  `json:"address" yaml:"address"`
	Age           int     `json:"age" yaml:"age"`
	Gender        string  `json:"gender" yaml:"gender"`
	Occupation    string  `json:"occupation" yaml:"occupation"`
	FamilySize    int     `json:"familySize" yaml:"familySize"`
	MonthlyIncome float64 `json:"monthlyIncome" yaml:"monthlyIncome"`
}

// NormalizeEmail is the form used for the (project, email) uniqueness rule.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the fields admission relies on.
func (in RegistrationInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewMissingField("name")
	}
	email := NormalizeEmail(in.Email)
	if email == "" {
		return NewMissingField("email")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return NewInvalidValue("email", "must be a valid email address")
	}
	if in.Age < 0 {
		return NewInvalidValue("age", "must not be negative")
	}
	if in.FamilySize < 0 {
		return NewInvalidValue("familySize", "must not be negative")
	}
	if in.MonthlyIncome < 0 {
		return NewInvalidValue("monthlyIncome", "must not be negative")
	}
	return nil
}

// NewRegistration builds a pending registration for projectID.
func NewRegistration(projectID string, in RegistrationInput, now time.Time) *Registration {
	return &Registration{
		ProjectID:     projectID,
		Name:          strings.TrimSpace(in.Name),
		Email:         NormalizeEmail(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		NationalID:    strings.TrimSpace(in.NationalID),
		Address:       strings.TrimSpace(in.Address),
		Age:           in.Age,
		Gender:        strings.TrimSpace(in.Gender),
		Occupation:    strings.TrimSpace(in.Occupation),
		FamilySize:    in.FamilySize,
		MonthlyIncome: in.MonthlyIncome,
		Status:        RegistrationPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Clone returns a copy safe to hand across store boundaries.
func (r *Registration) Clone() *Registration {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// RegistrationWithProject is a registration joined with its parent project summary.
// Project is nil when the referenced project no longer exists.
type RegistrationWithProject struct {
	Registration
	Project *ProjectSummary `json:"project"`
}
