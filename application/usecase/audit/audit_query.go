package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/fabricflow/fabricflow/application/port/outbound"
	"github.com/fabricflow/fabricflow/domain"
	"github.com/fabricflow/fabricflow/domain/changeset"
	domainerr "github.com/fabricflow/fabricflow/domain/error"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type AuditQueryUseCase struct {
	repo outbound.AuditRepository
}

func NewAuditQueryUseCase(repo outbound.AuditRepository) *AuditQueryUseCase {
	return &AuditQueryUseCase{repo: repo}
}

// List returns audit entries newest first
func (uc *AuditQueryUseCase) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, domainerr.ErrInvalidFilter("limit and offset must not be negative")
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}

	entries, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

// Get returns one audit entry
func (uc *AuditQueryUseCase) Get(ctx context.Context, id string) (*domain.AuditEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domainerr.ErrInvalidRequest("audit entry id is required")
	}

	entry, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit entry: %w", err)
	}
	return entry, nil
}

// Preview diffs a record against a patch without writing anything
func (uc *AuditQueryUseCase) Preview(old, patch changeset.Record) changeset.ChangeSet {
	return changeset.Build(old, patch)
}
