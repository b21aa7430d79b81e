package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
)

const (
	projectsCollection      = "projects"
	registrationsCollection = "registrations"
)

// projectDoc is the stored shape of a project. Field names follow the existing collections.
type projectDoc struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	Title                string             `bson:"title"`
	ShortDescription     string             `bson:"shortDescription"`
	Description          string             `bson:"description"`
	Location             string             `bson:"location"`
	Category             string             `bson:"category"`
	StartDate            string             `bson:"startDate"`
	EndDate              string             `bson:"endDate"`
	TargetBeneficiaries  int                `bson:"targetBeneficiaries"`
	CurrentBeneficiaries int                `bson:"currentBeneficiaries"`
	Status               string             `bson:"status,omitempty"`
	Requirements         []string           `bson:"requirements"`
	Image                string             `bson:"image"`
	CreatedAt            time.Time          `bson:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt"`
}

// registrationDoc keeps projectId as the hex string of the project id.
type registrationDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ProjectID     string             `bson:"projectId"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	Phone         string             `bson:"phone"`
	NationalID    string             `bson:"nationalId"`
	Address       string             `bson:"address"`
	Age           int                `bson:"age"`
	Gender        string             `bson:"gender"`
	Occupation    string             `bson:"occupation"`
	FamilySize    int                `bson:"familySize"`
	MonthlyIncome float64            `bson:"monthlyIncome"`
	Status        string             `bson:"status"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func toProjectDoc(p *domain.Project) projectDoc {
	reqs := p.Requirements
	if reqs == nil {
		reqs = []string{}
	}
	return projectDoc{
		Title:                p.Title,
		ShortDescription:     p.ShortDescription,
		Description:          p.Description,
		Location:             p.Location,
		Category:             p.Category,
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		TargetBeneficiaries:  p.TargetBeneficiaries,
		CurrentBeneficiaries: p.CurrentBeneficiaries,
		Status:               string(p.Status),
		Requirements:         reqs,
		Image:                p.Image,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func (d projectDoc) toDomain() domain.Project {
	p := domain.Project{
		ID:                   d.ID.Hex(),
		Title:                d.Title,
		ShortDescription:     d.ShortDescription,
		Description:          d.Description,
		Location:             d.Location,
		Category:             d.Category,
		StartDate:            d.StartDate,
		EndDate:              d.EndDate,
		TargetBeneficiaries:  d.TargetBeneficiaries,
		CurrentBeneficiaries: d.CurrentBeneficiaries,
		Status:               domain.ProjectStatus(d.Status),
		Requirements:         d.Requirements,
		Image:                d.Image,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
	// Older documents have no status field.
	p.Status = p.EffectiveStatus()
	if p.Requirements == nil {
		p.Requirements = []string{}
	}
	return p
}

func toRegistrationDoc(r *domain.Registration) registrationDoc {
	return registrationDoc{
		ProjectID:     r.ProjectID,
		Name:          r.Name,
		Email:         domain.NormalizeEmail(r.Email),
		Phone:         r.Phone,
		NationalID:    r.NationalID,
		Address:       r.Address,
		Age:           r.Age,
		Gender:        r.Gender,
		Occupation:    r.Occupation,
		FamilySize:    r.FamilySize,
		MonthlyIncome: r.MonthlyIncome,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (d registrationDoc) toDomain() domain.Registration {
	return domain.Registration{
		ID:            d.ID.Hex(),
		ProjectID:     d.ProjectID,
		Name:          d.Name,
		Email:         d.Email,
		Phone:         d.Phone,
		NationalID:    d.NationalID,
		Address:       d.Address,
		Age:           d.Age,
		Gender:        d.Gender,
		Occupation:    d.Occupation,
		FamilySize:    d.FamilySize,
		MonthlyIncome: d.MonthlyIncome,
		Status:        domain.RegistrationStatus(d.Status),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
