package domain

// ProjectStatus is the lifecycle status of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectClosed    ProjectStatus = "closed"
	ProjectPaused    ProjectStatus = "paused"
	ProjectCompleted ProjectStatus = "completed"
)

// RegistrationStatus is the admin decision state of a registration.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// ProjectStatuses lists the legal project statuses.
var ProjectStatuses = []ProjectStatus{ProjectActive, ProjectClosed, ProjectPaused, ProjectCompleted}

// RegistrationStatuses lists the legal registration statuses.
var RegistrationStatuses = []RegistrationStatus{RegistrationPending, RegistrationApproved, RegistrationRejected}

// ValidateProjectStatus is a membership check only. Any legal status may follow any other.
func ValidateProjectStatus(candidate string) (ProjectStatus, error) {
	for _, s := range ProjectStatuses {
		if string(s) == candidate {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}

// ValidateRegistrationStatus is a membership check only.
func ValidateRegistrationStatus(candidate string) (RegistrationStatus, error) {
	for _, s := range RegistrationStatuses {
		if string(s) == candidate {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}
