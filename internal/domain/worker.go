package domain

import "errors"

// WorkerRole categorizes a worker within the pool.
type WorkerRole string

// Possible worker roles
const (
	WorkerRoleOrchestrator WorkerRole = "orchestrator"
	WorkerRoleSpecialist   WorkerRole = "specialist"
	WorkerRoleUtility      WorkerRole = "utility"
)

// Common validation errors for Worker
var (
	ErrEmptyWorkerID     = errors.New("worker ID cannot be empty")
	ErrInvalidWorkerRole = errors.New("invalid worker role")
	ErrMissingRoleTag    = errors.New("worker role tag cannot be empty")
	ErrUnexpectedRoleTag = errors.New("worker role does not take this tag")
)

// Worker describes a unit of processing capability. The role determines
// which tag applies: specialists carry a domain, utilities carry a
// specialty, and the orchestrator carries neither. Workers are created
// during pool initialization and destroyed at shutdown; there is no
// dynamic registration.
type Worker struct {
	ID        string     `json:"id"`
	Role      WorkerRole `json:"role"`
	Domain    string     `json:"domain,omitempty"`
	Specialty string     `json:"specialty,omitempty"`
	Active    bool       `json:"active"`
}

// Validate checks the worker's structural invariants, including the
// role/tag pairing rules.
func (w *Worker) Validate() error {
	if w.ID == "" {
		return ErrEmptyWorkerID
	}

	switch w.Role {
	case WorkerRoleOrchestrator:
		if w.Domain != "" || w.Specialty != "" {
			return ErrUnexpectedRoleTag
		}
	case WorkerRoleSpecialist:
		if w.Domain == "" {
			return ErrMissingRoleTag
		}
		if w.Specialty != "" {
			return ErrUnexpectedRoleTag
		}
	case WorkerRoleUtility:
		if w.Specialty == "" {
			return ErrMissingRoleTag
		}
		if w.Domain != "" {
			return ErrUnexpectedRoleTag
		}
	default:
		return ErrInvalidWorkerRole
	}

	return nil
}
