package audit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fabricflow/fabricflow/application/port/inbound"
	"github.com/fabricflow/fabricflow/application/port/outbound"
	"github.com/fabricflow/fabricflow/domain"
	"github.com/fabricflow/fabricflow/domain/changeset"
	"github.com/fabricflow/fabricflow/infrastructure/service/logger"
)

var ErrNoAuditWriter = errors.New("no audit writer configured")

// FailureDetails wraps the details of an entry recording a failed write
type FailureDetails struct {
	Error   string `json:"error"`
	Details any    `json:"details"`
}

// AuditLogger writes audit entries on a best-effort basis. None of its
// methods return errors or panic.
type AuditLogger struct {
	resolver inbound.ActorResolver
	writer   outbound.AuditWriter
	logger   logger.Logger
	now      func() time.Time
	pending  sync.WaitGroup
}

// Option configures an AuditLogger
type Option func(*AuditLogger)

// WithClock overrides the entry timestamp source
func WithClock(now func() time.Time) Option {
	return func(l *AuditLogger) {
		l.now = now
	}
}

func NewAuditLogger(resolver inbound.ActorResolver, writer outbound.AuditWriter, log logger.Logger, opts ...Option) *AuditLogger {
	l := &AuditLogger{
		resolver: resolver,
		writer:   writer,
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log resolves the actor, assembles the entry and persists it
func (l *AuditLogger) Log(ctx context.Context, req inbound.LogRequest) {
	info := stepInfo{action: req.Action, resource: req.Resource, id: req.ResourceID}

	isolate(ctx, l.logger, "log", info, func() error {
		actor := domain.UnknownActor
		isolate(ctx, l.logger, "resolve_actor", info, func() error {
			if l.resolver != nil {
				actor = l.resolver.Resolve(ctx, req.Request)
			}
			return nil
		})

		var details any = changeset.Empty()
		isolate(ctx, l.logger, "change_set", info, func() error {
			details = detailsFor(req)
			return nil
		})

		entry := domain.NewAuditEntry(actor, req.Action, req.Resource, req.ResourceID, details, l.now())
		applyOutcome(entry, req)

		isolate(ctx, l.logger, "persist", info, func() error {
			if l.writer == nil {
				return ErrNoAuditWriter
			}
			return l.writer.WriteAuditEntry(ctx, entry)
		})
		return nil
	})
}

// LogChange builds the change set from old and patch before logging.
// A failed diff is logged with an empty change set.
func (l *AuditLogger) LogChange(ctx context.Context, req inbound.LogRequest, old, patch changeset.Record) {
	cs := changeset.Empty()
	isolate(ctx, l.logger, "build_change_set", stepInfo{action: req.Action, resource: req.Resource, id: req.ResourceID}, func() error {
		cs = changeset.Build(old, patch)
		return nil
	})
	req.ChangeSet = &cs
	l.Log(ctx, req)
}

// LogAsync logs on a separate goroutine so the write path never waits on
// the audit trail. Cancellation of ctx does not abort the write.
func (l *AuditLogger) LogAsync(ctx context.Context, req inbound.LogRequest) {
	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		l.Log(context.WithoutCancel(ctx), req)
	}()
}

// Wait blocks until every LogAsync call has finished
func (l *AuditLogger) Wait() {
	l.pending.Wait()
}

func detailsFor(req inbound.LogRequest) any {
	var details any = changeset.Empty()
	switch {
	case req.ChangeSet != nil:
		details = *req.ChangeSet
	case req.Details != nil:
		details = req.Details
	}
	if req.Failure != nil {
		return FailureDetails{Error: req.Failure.Error(), Details: details}
	}
	return details
}

func applyOutcome(entry *domain.AuditEntry, req inbound.LogRequest) {
	switch {
	case req.Failure != nil:
		entry.Success = false
		entry.Severity = domain.SeverityError
	case isDeletion(req.Action):
		entry.Severity = domain.SeverityWarning
	}
	if req.Severity != "" {
		entry.Severity = req.Severity
	}
}

func isDeletion(action string) bool {
	action = strings.ToLower(action)
	return strings.Contains(action, "delete") || strings.Contains(action, "remove")
}
