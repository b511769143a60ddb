package error

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetHTTPStatusCode(ErrAuditEntryNotFound("a1")))
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatusCode(ErrInvalidFilter("limit")))
	assert.Equal(t, http.StatusServiceUnavailable, GetHTTPStatusCode(fmt.Errorf("wrapped: %w", ErrDatabaseError("insert", errors.New("boom")))))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatusCode(errors.New("plain")))
}

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrDatabaseError("insert audit entry", cause)

	assert.Equal(t, "DB_5001: Database operation failed (Operation: insert audit entry)", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", ErrAuditEntryNotFound("x"))))
	assert.False(t, IsNotFound(cause))
}
