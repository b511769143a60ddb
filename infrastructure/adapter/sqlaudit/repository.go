package sqlaudit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fabricflow/fabricflow/application/port/outbound"
	"github.com/fabricflow/fabricflow/domain"
	domainerr "github.com/fabricflow/fabricflow/domain/error"
)

// TimestampLayout sorts lexicographically for UTC times
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Dialect captures the differences between the supported SQL backends
type Dialect struct {
	Name        string
	Placeholder func(n int) string
	Timestamp   func(t time.Time) any
}

var (
	Postgres = Dialect{
		Name:        "postgres",
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		Timestamp:   func(t time.Time) any { return t.UTC() },
	}
	SQLite = Dialect{
		Name:        "sqlite",
		Placeholder: func(int) string { return "?" },
		Timestamp:   func(t time.Time) any { return t.UTC().Format(TimestampLayout) },
	}
)

const columns = `id, actor_id, actor_name, actor_role, action, resource, resource_id, details, success, severity, created_at`

// Repository implements outbound.AuditRepository over database/sql
type Repository struct {
	db      *sql.DB
	dialect Dialect
}

var _ outbound.AuditRepository = (*Repository)(nil)

func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{db: db, dialect: dialect}
}

func (r *Repository) WriteAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	if entry == nil {
		return domainerr.ErrInvalidRequest("audit entry is nil")
	}
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	placeholders := make([]string, 11)
	for i := range placeholders {
		placeholders[i] = r.dialect.Placeholder(i + 1)
	}
	query := `INSERT INTO audit_logs (` + columns + `) VALUES (` + strings.Join(placeholders, ", ") + `)`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Actor.ID,
		entry.Actor.Name,
		entry.Actor.Role,
		entry.Action,
		entry.Resource,
		entry.ResourceID,
		string(details),
		entry.Success,
		string(entry.Severity),
		r.dialect.Timestamp(entry.Timestamp),
	)
	if err != nil {
		return domainerr.ErrDatabaseError("insert audit entry", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.AuditEntry, error) {
	query := `SELECT ` + columns + ` FROM audit_logs WHERE id = ` + r.dialect.Placeholder(1)

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainerr.ErrAuditEntryNotFound(id)
		}
		return nil, domainerr.ErrDatabaseError("find audit entry", err)
	}
	return entry, nil
}

// List returns entries newest first
func (r *Repository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	query, args := ListQuery(r.dialect, filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domainerr.ErrDatabaseError("list audit entries", err)
	}
	defer rows.Close()

	entries := make([]*domain.AuditEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, domainerr.ErrDatabaseError("scan audit entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerr.ErrDatabaseError("list audit entries", err)
	}
	return entries, nil
}

// ListQuery builds the filtered select for List
func ListQuery(dialect Dialect, filter domain.AuditFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, column+" = "+dialect.Placeholder(len(args)))
	}
	add("resource", filter.Resource)
	add("resource_id", filter.ResourceID)
	add("actor_id", filter.ActorID)
	add("action", filter.Action)

	var b strings.Builder
	b.WriteString(`SELECT ` + columns + ` FROM audit_logs`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		b.WriteString(" LIMIT " + dialect.Placeholder(len(args)))
		if filter.Offset > 0 {
			args = append(args, filter.Offset)
			b.WriteString(" OFFSET " + dialect.Placeholder(len(args)))
		}
	}
	return b.String(), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.AuditEntry, error) {
	var (
		entry     domain.AuditEntry
		details   []byte
		severity  string
		createdAt any
	)
	err := row.Scan(
		&entry.ID,
		&entry.Actor.ID,
		&entry.Actor.Name,
		&entry.Actor.Role,
		&entry.Action,
		&entry.Resource,
		&entry.ResourceID,
		&details,
		&entry.Success,
		&severity,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Severity = domain.Severity(severity)
	if len(details) > 0 {
		entry.Details = json.RawMessage(details)
	}
	entry.Timestamp, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func parseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimestampText(t)
	case []byte:
		return parseTimestampText(string(t))
	case nil:
		return time.Time{}, nil
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
}

func parseTimestampText(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
