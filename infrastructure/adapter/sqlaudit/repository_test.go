package sqlaudit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fabricflow/fabricflow/domain"
)

func TestListQuery(t *testing.T) {
	tests := []struct {
		name      string
		dialect   Dialect
		filter    domain.AuditFilter
		wantWhere string
		wantTail  string
		wantArgs  []any
	}{
		{
			name:     "no filter",
			dialect:  Postgres,
			filter:   domain.AuditFilter{},
			wantTail: " ORDER BY created_at DESC, id DESC",
		},
		{
			name:      "postgres numbered placeholders",
			dialect:   Postgres,
			filter:    domain.AuditFilter{Resource: "order", ActorID: "u1", Limit: 20, Offset: 40},
			wantWhere: " WHERE resource = $1 AND actor_id = $2",
			wantTail:  " ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4",
			wantArgs:  []any{"order", "u1", 20, 40},
		},
		{
			name:      "sqlite positional placeholders",
			dialect:   SQLite,
			filter:    domain.AuditFilter{ResourceID: "po-1", Action: "update", Limit: 5},
			wantWhere: " WHERE resource_id = ? AND action = ?",
			wantTail:  " ORDER BY created_at DESC, id DESC LIMIT ?",
			wantArgs:  []any{"po-1", "update", 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := ListQuery(tt.dialect, tt.filter)

			assert.Equal(t, "SELECT "+columns+" FROM audit_logs"+tt.wantWhere+tt.wantTail, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC)

	for _, v := range []any{want, want.Format(TimestampLayout), []byte(want.Format(TimestampLayout))} {
		got, err := parseTimestamp(v)
		assert.NoError(t, err)
		assert.True(t, want.Equal(got))
	}

	_, err := parseTimestamp(42)
	assert.Error(t, err)
	_, err = parseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestSQLiteTimestampsSortLexically(t *testing.T) {
	earlier := SQLite.Timestamp(time.Date(2024, 1, 1, 0, 0, 0, 500000000, time.UTC)).(string)
	later := SQLite.Timestamp(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)).(string)

	assert.Less(t, earlier, later)
}
