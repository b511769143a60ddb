package audit

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fabricflow/fabricflow/application/port/outbound"
	"github.com/fabricflow/fabricflow/domain"
)

type MockSessionLookup struct {
	mock.Mock
}

func (m *MockSessionLookup) LookupSession(ctx context.Context, credential string) (*outbound.Session, error) {
	args := m.Called(ctx, credential)
	session, _ := args.Get(0).(*outbound.Session)
	return session, args.Error(1)
}

type MockClaimsDecoder struct {
	mock.Mock
}

func (m *MockClaimsDecoder) DecodeClaims(token string) (*outbound.TokenClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*outbound.TokenClaims)
	return claims, args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) WriteAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	args := m.Called(ctx, filter)
	entries, _ := args.Get(0).([]*domain.AuditEntry)
	return entries, args.Error(1)
}

func (m *MockAuditRepository) FindByID(ctx context.Context, id string) (*domain.AuditEntry, error) {
	args := m.Called(ctx, id)
	entry, _ := args.Get(0).(*domain.AuditEntry)
	return entry, args.Error(1)
}

// panickingWriter simulates a persistence port that blows up
type panickingWriter struct{}

func (panickingWriter) WriteAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	panic("connection pool exhausted")
}
