package natspub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/fabricflow/fabricflow/domain"
	domainerr "github.com/fabricflow/fabricflow/domain/error"
)

// Config configures the audit publisher
type Config struct {
	URL           string
	SubjectPrefix string
	Name          string
}

// Conn is the subset of *nats.Conn the publisher needs
type Conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Drain() error
}

// AuditPublisher broadcasts audit entries on <prefix>.<resource>.<action>
type AuditPublisher struct {
	conn   Conn
	prefix string
	logger *logrus.Logger
}

// Connect dials NATS and returns a publisher owning the connection
func Connect(cfg Config, logger *logrus.Logger) (*AuditPublisher, error) {
	name := cfg.Name
	if name == "" {
		name = "fabricflow-audit"
	}
	conn, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.WithField("url", c.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"url":            cfg.URL,
		"subject_prefix": cfg.SubjectPrefix,
	}).Info("Audit publisher connected")

	return NewAuditPublisher(conn, cfg.SubjectPrefix, logger), nil
}

func NewAuditPublisher(conn Conn, prefix string, logger *logrus.Logger) *AuditPublisher {
	if prefix == "" {
		prefix = "audit"
	}
	return &AuditPublisher{conn: conn, prefix: strings.TrimSuffix(prefix, "."), logger: logger}
}

// WriteAuditEntry implements outbound.AuditWriter
func (p *AuditPublisher) WriteAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	if entry == nil {
		return domainerr.ErrInvalidRequest("audit entry is nil")
	}
	subject := p.Subject(entry.Resource, entry.Action)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return domainerr.ErrPublisherFailed(subject, err)
	}

	p.logger.WithContext(ctx).WithFields(logrus.Fields{
		"subject":  subject,
		"audit_id": entry.ID,
	}).Debug("Audit entry published")
	return nil
}

// Subject returns the subject an entry for resource and action is sent on
func (p *AuditPublisher) Subject(resource, action string) string {
	return p.prefix + "." + subjectToken(resource) + "." + subjectToken(action)
}

// Close flushes pending messages and drains the connection
func (p *AuditPublisher) Close() error {
	if err := p.conn.FlushTimeout(2 * time.Second); err != nil {
		p.logger.WithError(err).Warn("Failed to flush audit publisher")
	}
	return p.conn.Drain()
}

// subjectToken keeps wildcard and separator characters out of a subject token
func subjectToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}
