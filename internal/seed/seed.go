// Package seed loads demo projects and registrations from YAML.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
)

//go:embed seed.yaml
var defaultSeed []byte

// ErrStoreNotEmpty is returned by Apply when projects already exist and force is off.
var ErrStoreNotEmpty = errors.New("store already has projects")

type File struct {
	Projects []Project `yaml:"projects"`
}

type Project struct {
	domain.ProjectInput `yaml:",inline"`
	Registrations       []Registration `yaml:"registrations"`
}

type Registration struct {
	domain.RegistrationInput `yaml:",inline"`
	Status                   string `yaml:"status"`
}

// Default returns the embedded demo data set.
func Default() (*File, error) {
	return Parse(defaultSeed)
}

// Load reads a seed file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes data strictly and validates every entry.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return &f, nil
}

func (f *File) validate() error {
	for i, p := range f.Projects {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("projects[%d]: %w", i, err)
		}
		if p.Status != "" {
			if _, err := domain.ValidateProjectStatus(p.Status); err != nil {
				return fmt.Errorf("projects[%d]: %w", i, err)
			}
		}
		seen := make(map[string]bool, len(p.Registrations))
		for j, r := range p.Registrations {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("projects[%d].registrations[%d]: %w", i, j, err)
			}
			if r.Status != "" {
				if _, err := domain.ValidateRegistrationStatus(r.Status); err != nil {
					return fmt.Errorf("projects[%d].registrations[%d]: %w", i, j, err)
				}
			}
			email := domain.NormalizeEmail(r.Email)
			if seen[email] {
				return fmt.Errorf("projects[%d].registrations[%d]: %w", i, j, domain.ErrDuplicateRegistration)
			}
			seen[email] = true
		}
	}
	return nil
}

// Summary counts what Apply wrote.
type Summary struct {
	Projects      int
	Registrations int
	ProjectIDs    []string
}

// Apply writes the seed into store. Registrations are stored with their listed status and
// the beneficiary counts are left for the caller to reconcile.
func Apply(ctx context.Context, store domain.Store, f *File, force bool, now time.Time) (Summary, error) {
	var sum Summary
	if !force {
		n, err := store.CountProjects(ctx, domain.ProjectFilter{})
		if err != nil {
			return sum, domain.Upstream("count projects", err)
		}
		if n > 0 {
			return sum, ErrStoreNotEmpty
		}
	}

	for i, sp := range f.Projects {
		// Stagger creation times so listings keep file order, newest last.
		created := now.Add(time.Duration(i) * time.Second)
		p, err := domain.NewProject(sp.ProjectInput, created)
		if err != nil {
			return sum, err
		}
		if sp.Status != "" {
			p.Status = domain.ProjectStatus(sp.Status)
		}
		if err := store.CreateProject(ctx, p); err != nil {
			return sum, domain.Upstream("create project", err)
		}
		sum.Projects++
		sum.ProjectIDs = append(sum.ProjectIDs, p.ID)

		for j, sr := range sp.Registrations {
			r := domain.NewRegistration(p.ID, sr.RegistrationInput, created.Add(time.Duration(j+1)*time.Millisecond))
			if sr.Status != "" {
				r.Status = domain.RegistrationStatus(sr.Status)
			}
			if err := store.CreateRegistration(ctx, r); err != nil {
				return sum, domain.Upstream("create registration", err)
			}
			sum.Registrations++
		}
	}
	return sum, nil
}
