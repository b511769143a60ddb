package outbound

import (
	"context"

	"github.com/fabricflow/fabricflow/domain"
)

// AuditWriter persists a single audit entry
type AuditWriter interface {
	WriteAuditEntry(ctx context.Context, entry *domain.AuditEntry) error
}

// AuditRepository defines the interface for audit log persistence
type AuditRepository interface {
	AuditWriter

	// List retrieves audit entries newest first
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error)

	// FindByID retrieves an audit entry by its ID
	FindByID(ctx context.Context, id string) (*domain.AuditEntry, error)
}
