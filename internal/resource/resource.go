// Package resource defines the descriptor and record types shared by
// provisioning and cleanup.
package resource

import "time"

// Type identifies a managed resource family.
type Type string

const (
	TypeMemory        Type = "memory"
	TypeOAuthProvider Type = "oauth_provider"
	TypeToolLambda    Type = "tool_lambda"
	TypeGateway       Type = "gateway"
	TypeRuntime       Type = "runtime"
	TypeECRRepository Type = "ecr_repository"
	TypeIAMRole       Type = "iam_role"
)

// Status is the reconciled view of a remote resource's lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAvailable Status = "AVAILABLE"
	StatusFailed    Status = "FAILED"
	StatusUnknown   Status = "UNKNOWN"

	// StatusOrphaned marks a record whose remote deletion could not be
	// confirmed during cleanup.
	StatusOrphaned Status = "ORPHANED"
)

// Descriptor is a named, typed request for a remote resource. It is
// immutable once submitted for creation.
type Descriptor struct {
	Type       Type
	Name       string
	Region     string
	Attributes map[string]string
}

// Record is the observed state of a live resource. The provisioning
// poller updates Status and LastObservedAt on every poll.
type Record struct {
	ID             string            `yaml:"id" json:"id"`
	Type           Type              `yaml:"type" json:"type"`
	Name           string            `yaml:"name" json:"name"`
	Status         Status            `yaml:"status" json:"status"`
	Attributes     map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	LastObservedAt time.Time         `yaml:"last_observed_at,omitempty" json:"last_observed_at,omitempty"`
}

// Ready reports whether the record's status is one of the given ready
// values. Different resource families use different vocabularies
// (AVAILABLE, ACTIVE, READY), so the set is always caller-supplied.
func (r Record) Ready(readySet []string) bool {
	for _, s := range readySet {
		if string(r.Status) == s {
			return true
		}
	}
	return false
}
