package domain

import (
	"strings"
	"time"
)

// DefaultProjectImage is used when a project is created or updated without an image.
const DefaultProjectImage = "/placeholder.svg?height=400&width=600"

// Project is an NGO program with a beneficiary capacity and a lifecycle status.
// It is storage-agnostic and shared by the store, rules engine and HTTP layers.
type Project struct {
	ID                   string        `json:"id"`
	Title                string        `json:"title"`
	ShortDescription     string        `json:"shortDescription"`
	Description          string        `json:"description"`
	Location             string        `json:"location"`
	Category             string        `json:"category"`
	StartDate            string        `json:"startDate"`
	EndDate              string        `json:"endDate"`
	TargetBeneficiaries  int           `json:"targetBeneficiaries"`
	CurrentBeneficiaries int           `json:"currentBeneficiaries"`
	Status               ProjectStatus `json:"status"`
	Requirements         []string      `json:"requirements"`
	Image                string        `json:"image"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// ProjectInput carries the admin-editable fields of a project.
type ProjectInput struct {
	Title               string   `json:"title" yaml:"title"`
	ShortDescription    string   `json:"shortDescription" yaml:"shortDescription"`
	Description         string   `json:"description" yaml:"description"`
	Location            string   `json:"location" yaml:"location"`
	Category            string   `json:"category" yaml:"category"`
	StartDate           string   `json:"startDate" yaml:"startDate"`
	EndDate             string   `json:"endDate" yaml:"endDate"`
	TargetBeneficiaries int      `json:"targetBeneficiaries" yaml:"targetBeneficiaries"`
	Requirements        []string `json:"requirements" yaml:"requirements"`
	Image               string   `json:"image" yaml:"image"`
	Status              string   `json:"status,omitempty" yaml:"status,omitempty"`
}

// Validate reports the first missing required field, in the order the admin form lists them.
func (in ProjectInput) Validate() error {
	required := []struct {
		field string
		ok    bool
	}{
		{"title", strings.TrimSpace(in.Title) != ""},
		{"description", strings.TrimSpace(in.Description) != ""},
		{"shortDescription", strings.TrimSpace(in.ShortDescription) != ""},
		{"location", strings.TrimSpace(in.Location) != ""},
		{"targetBeneficiaries", in.TargetBeneficiaries != 0},
		{"startDate", strings.TrimSpace(in.StartDate) != ""},
		{"endDate", strings.TrimSpace(in.EndDate) != ""},
		{"category", strings.TrimSpace(in.Category) != ""},
	}
	for _, r := range required {
		if !r.ok {
			return NewMissingField(r.field)
		}
	}
	if in.TargetBeneficiaries < 0 {
		return NewInvalidValue("targetBeneficiaries", "must be a positive integer")
	}
	return nil
}

// NewProject builds a fresh project from validated input: zero beneficiaries, status active.
func NewProject(in ProjectInput, now time.Time) (*Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := &Project{
		CurrentBeneficiaries: 0,
		Status:               ProjectActive,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	p.apply(in)
	return p, nil
}

// ApplyUpdate overwrites the editable fields. ID, CreatedAt and CurrentBeneficiaries are kept.
func (p *Project) ApplyUpdate(in ProjectInput, now time.Time) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if in.Status != "" {
		status, err := ValidateProjectStatus(in.Status)
		if err != nil {
			return err
		}
		p.Status = status
	}
	p.apply(in)
	p.UpdatedAt = now
	return nil
}

func (p *Project) apply(in ProjectInput) {
	p.Title = strings.TrimSpace(in.Title)
	p.ShortDescription = strings.TrimSpace(in.ShortDescription)
	p.Description = strings.TrimSpace(in.Description)
	p.Location = strings.TrimSpace(in.Location)
	p.Category = strings.TrimSpace(in.Category)
	p.StartDate = strings.TrimSpace(in.StartDate)
	p.EndDate = strings.TrimSpace(in.EndDate)
	p.TargetBeneficiaries = in.TargetBeneficiaries

	p.Requirements = make([]string, 0, len(in.Requirements))
	for _, r := range in.Requirements {
		if r = strings.TrimSpace(r); r != "" {
			p.Requirements = append(p.Requirements, r)
		}
	}

	p.Image = strings.TrimSpace(in.Image)
	if p.Image == "" {
		p.Image = DefaultProjectImage
	}
}

// EffectiveStatus treats a missing status as active, matching documents written before the
// status field existed.
func (p *Project) EffectiveStatus() ProjectStatus {
	if p.Status == "" {
		return ProjectActive
	}
	return p.Status
}

// IsFull reports whether every slot is taken.
func (p *Project) IsFull() bool {
	return p.CurrentBeneficiaries >= p.TargetBeneficiaries
}

// Summary is the projection joined onto registration listings.
func (p *Project) Summary() *ProjectSummary {
	return &ProjectSummary{
		ID:       p.ID,
		Title:    p.Title,
		Category: p.Category,
		Location: p.Location,
	}
}

// ProjectSummary is the parent-project view embedded in registration responses.
type ProjectSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Location string `json:"location"`
}

// Clone returns a deep copy so stores can hand out values without sharing slices.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Requirements != nil {
		cp.Requirements = append([]string(nil), p.Requirements...)
	}
	return &cp
}
