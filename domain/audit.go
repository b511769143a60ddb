package domain

import (
	"time"

	"github.com/google/uuid"
)

// Severity grades an audit entry
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Actor is the identity an audit entry is attributed to
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// UnknownActor is used when no identity can be resolved
var UnknownActor = Actor{ID: "unknown", Name: "Unknown User", Role: "user"}

// AuditEntry represents an audit log entry for a write on a domain record
type AuditEntry struct {
	ID         string    `json:"id"`
	Actor      Actor     `json:"actor"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	Details    any       `json:"details"`
	Success    bool      `json:"success"`
	Severity   Severity  `json:"severity"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewAuditEntry creates a successful info-level entry
func NewAuditEntry(actor Actor, action, resource, resourceID string, details any, now time.Time) *AuditEntry {
	return &AuditEntry{
		ID:         uuid.NewString(),
		Actor:      actor,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		Success:    true,
		Severity:   SeverityInfo,
		Timestamp:  now.UTC(),
	}
}

// AuditFilter narrows audit trail queries
type AuditFilter struct {
	Resource   string
	ResourceID string
	ActorID    string
	Action     string
	Limit      int
	Offset     int
}
