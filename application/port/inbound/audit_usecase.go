package inbound

import (
	"context"

	"github.com/fabricflow/fabricflow/domain"
	"github.com/fabricflow/fabricflow/domain/changeset"
)

// RequestContext carries the identity hints of an inbound write request
type RequestContext struct {
	Authorization string
	Cookie        string
	Values        map[string]string
}

// LogRequest describes one audited write
type LogRequest struct {
	Action     string
	Resource   string
	ResourceID string
	ChangeSet  *changeset.ChangeSet
	Details    any
	Request    RequestContext
	Failure    error
	Severity   domain.Severity
}

// ActorResolver determines who performed an action
type ActorResolver interface {
	Resolve(ctx context.Context, req RequestContext) domain.Actor
}

// AuditLogger records audit entries without ever failing the caller
type AuditLogger interface {
	Log(ctx context.Context, req LogRequest)
	LogChange(ctx context.Context, req LogRequest, old, patch changeset.Record)
	LogAsync(ctx context.Context, req LogRequest)
}

// AuditQueryUseCase reads the audit trail
type AuditQueryUseCase interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
	Get(ctx context.Context, id string) (*domain.AuditEntry, error)
	Preview(old, patch changeset.Record) changeset.ChangeSet
}
