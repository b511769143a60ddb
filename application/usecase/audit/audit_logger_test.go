package audit

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fabricflow/fabricflow/application/port/inbound"
	"github.com/fabricflow/fabricflow/domain"
	"github.com/fabricflow/fabricflow/domain/changeset"
	"github.com/fabricflow/fabricflow/infrastructure/service/logger"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type staticResolver domain.Actor

func (s staticResolver) Resolve(ctx context.Context, req inbound.RequestContext) domain.Actor {
	return domain.Actor(s)
}

type panickingResolver struct{}

func (panickingResolver) Resolve(ctx context.Context, req inbound.RequestContext) domain.Actor {
	panic("resolver exploded")
}

func captureEntry(repo *MockAuditRepository) *domain.AuditEntry {
	var captured domain.AuditEntry
	repo.On("WriteAuditEntry", mock.Anything, mock.AnythingOfType("*domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			captured = *args.Get(1).(*domain.AuditEntry)
		}).Return(nil)
	return &captured
}

func TestAuditLogger_LogUpdate(t *testing.T) {
	repo := new(MockAuditRepository)
	entry := captureEntry(repo)
	actor := domain.Actor{ID: "u1", Name: "Meera", Role: "admin"}
	auditLogger := NewAuditLogger(staticResolver(actor), repo, quietLogger(), WithClock(func() time.Time { return fixedNow }))

	cs := changeset.Build(changeset.Record{"status": "pending"}, changeset.Record{"status": "delivered"})
	auditLogger.Log(context.Background(), inbound.LogRequest{
		Action:     "update",
		Resource:   "order",
		ResourceID: "po-17",
		ChangeSet:  &cs,
	})

	repo.AssertExpectations(t)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, actor, entry.Actor)
	assert.Equal(t, "update", entry.Action)
	assert.Equal(t, "order", entry.Resource)
	assert.Equal(t, "po-17", entry.ResourceID)
	assert.True(t, entry.Success)
	assert.Equal(t, domain.SeverityInfo, entry.Severity)
	assert.Equal(t, fixedNow, entry.Timestamp)

	details, ok := entry.Details.(changeset.ChangeSet)
	require.True(t, ok)
	assert.Equal(t, []string{"Status: Pending → Delivered"}, details.Summary)
}

func TestAuditLogger_Severity(t *testing.T) {
	tests := []struct {
		name     string
		req      inbound.LogRequest
		severity domain.Severity
		success  bool
	}{
		{"create", inbound.LogRequest{Action: "create"}, domain.SeverityInfo, true},
		{"delete", inbound.LogRequest{Action: "delete"}, domain.SeverityWarning, true},
		{"remove item", inbound.LogRequest{Action: "REMOVE_ITEM"}, domain.SeverityWarning, true},
		{"reported failure", inbound.LogRequest{Action: "update", Failure: errors.New("validation failed")}, domain.SeverityError, false},
		{"explicit override", inbound.LogRequest{Action: "delete", Severity: domain.SeverityCritical}, domain.SeverityCritical, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAuditRepository)
			entry := captureEntry(repo)

			NewAuditLogger(nil, repo, quietLogger()).Log(context.Background(), tt.req)

			assert.Equal(t, tt.severity, entry.Severity)
			assert.Equal(t, tt.success, entry.Success)
			assert.Equal(t, domain.UnknownActor, entry.Actor)
		})
	}
}

func TestAuditLogger_FailureDetails(t *testing.T) {
	repo := new(MockAuditRepository)
	entry := captureEntry(repo)

	NewAuditLogger(nil, repo, quietLogger()).Log(context.Background(), inbound.LogRequest{
		Action:  "update",
		Details: map[string]any{"reason": "stock"},
		Failure: errors.New("insufficient stock"),
	})

	details, ok := entry.Details.(FailureDetails)
	require.True(t, ok)
	assert.Equal(t, "insufficient stock", details.Error)
	assert.Equal(t, map[string]any{"reason": "stock"}, details.Details)
}

func TestAuditLogger_DegradedEntryHasEmptySummary(t *testing.T) {
	repo := new(MockAuditRepository)
	entry := captureEntry(repo)

	NewAuditLogger(panickingResolver{}, repo, quietLogger()).Log(context.Background(), inbound.LogRequest{
		Action:   "update",
		Resource: "fabric",
	})

	repo.AssertNumberOfCalls(t, "WriteAuditEntry", 1)
	assert.Equal(t, domain.UnknownActor, entry.Actor)
	details, ok := entry.Details.(changeset.ChangeSet)
	require.True(t, ok)
	assert.NotNil(t, details.Summary)
	assert.Empty(t, details.Summary)
}

func TestAuditLogger_PersistenceFailureIsIsolated(t *testing.T) {
	var buf bytes.Buffer
	diag := logger.NewStructuredLogger(logger.LoggerConfig{Level: "info", Format: "json", Output: &buf})

	repo := new(MockAuditRepository)
	repo.On("WriteAuditEntry", mock.Anything, mock.Anything).Return(errors.New("db down"))

	assert.NotPanics(t, func() {
		NewAuditLogger(nil, repo, diag).Log(context.Background(), inbound.LogRequest{Action: "update", Resource: "order"})
	})
	assert.Contains(t, buf.String(), "Audit step failed: persist")
	assert.Contains(t, buf.String(), "db down")

	assert.NotPanics(t, func() {
		NewAuditLogger(nil, panickingWriter{}, diag).Log(context.Background(), inbound.LogRequest{Action: "update"})
	})
	assert.NotPanics(t, func() {
		NewAuditLogger(nil, nil, nil).Log(context.Background(), inbound.LogRequest{Action: "update"})
	})
}

func TestAuditLogger_LogChange(t *testing.T) {
	repo := new(MockAuditRepository)
	entry := captureEntry(repo)

	NewAuditLogger(nil, repo, quietLogger()).LogChange(context.Background(),
		inbound.LogRequest{Action: "update", Resource: "order", ResourceID: "po-1"},
		changeset.Record{"rate": 10, "status": "pending"},
		changeset.Record{"rate": "12"},
	)

	details, ok := entry.Details.(changeset.ChangeSet)
	require.True(t, ok)
	assert.Equal(t, []string{"Rate: 10 → 12"}, details.Summary)
	assert.Contains(t, details.Changed, "rate")
}

func TestAuditLogger_LogAsync(t *testing.T) {
	repo := new(MockAuditRepository)
	repo.On("WriteAuditEntry", mock.Anything, mock.Anything).Return(nil)
	auditLogger := NewAuditLogger(nil, repo, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 5; i++ {
		auditLogger.LogAsync(ctx, inbound.LogRequest{Action: "update", Resource: "order"})
	}
	cancel()
	auditLogger.Wait()

	repo.AssertNumberOfCalls(t, "WriteAuditEntry", 5)
}

func TestFanOutWriter(t *testing.T) {
	ok := new(MockAuditRepository)
	ok.On("WriteAuditEntry", mock.Anything, mock.Anything).Return(nil)
	failing := new(MockAuditRepository)
	failing.On("WriteAuditEntry", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	err := FanOutWriter{failing, nil, ok}.WriteAuditEntry(context.Background(), &domain.AuditEntry{ID: "a1"})

	assert.EqualError(t, err, "nats down")
	ok.AssertNumberOfCalls(t, "WriteAuditEntry", 1)
	assert.NoError(t, FanOutWriter{}.WriteAuditEntry(context.Background(), &domain.AuditEntry{}))
}
