package audit

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fabricflow/fabricflow/application/port/inbound"
	"github.com/fabricflow/fabricflow/application/port/outbound"
	"github.com/fabricflow/fabricflow/domain"
	"github.com/fabricflow/fabricflow/infrastructure/service/logger"
)

func quietLogger() logger.Logger {
	return logger.NewStructuredLogger(logger.LoggerConfig{Level: "error", Format: "json", Output: io.Discard})
}

func TestActorResolver_SessionFirst(t *testing.T) {
	sessions := new(MockSessionLookup)
	claims := new(MockClaimsDecoder)
	sessions.On("LookupSession", mock.Anything, "tok-1").
		Return(&outbound.Session{ID: "u1", Name: "Meera", Role: "admin"}, nil)

	resolver := NewActorResolver(sessions, claims, quietLogger())
	actor := resolver.Resolve(context.Background(), inbound.RequestContext{Authorization: "Bearer tok-1"})

	assert.Equal(t, domain.Actor{ID: "u1", Name: "Meera", Role: "admin"}, actor)
	claims.AssertNotCalled(t, "DecodeClaims", mock.Anything)
	sessions.AssertExpectations(t)
}

func TestActorResolver_FallsBackToClaims(t *testing.T) {
	tests := []struct {
		name       string
		session    *outbound.Session
		sessionErr error
	}{
		{name: "unknown session", session: nil},
		{name: "lookup error", sessionErr: errors.New("redis down")},
		{name: "empty session", session: &outbound.Session{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(MockSessionLookup)
			claims := new(MockClaimsDecoder)
			sessions.On("LookupSession", mock.Anything, "tok-2").Return(tt.session, tt.sessionErr)
			claims.On("DecodeClaims", "tok-2").Return(&outbound.TokenClaims{UserID: "u2", Username: "arjun"}, nil)

			resolver := NewActorResolver(sessions, claims, quietLogger())
			actor := resolver.Resolve(context.Background(), inbound.RequestContext{Authorization: "bearer tok-2"})

			assert.Equal(t, domain.Actor{ID: "u2", Name: "arjun", Role: "user"}, actor)
		})
	}
}

func TestActorResolver_SessionPanicIsContained(t *testing.T) {
	sessions := new(MockSessionLookup)
	sessions.On("LookupSession", mock.Anything, "tok").Run(func(args mock.Arguments) {
		panic("nil client")
	}).Return(nil, nil)
	claims := new(MockClaimsDecoder)
	claims.On("DecodeClaims", "tok").Return(&outbound.TokenClaims{Email: "ops@example.com", Role: "ops"}, nil)

	resolver := NewActorResolver(sessions, claims, quietLogger())
	actor := resolver.Resolve(context.Background(), inbound.RequestContext{Authorization: "tok"})

	assert.Equal(t, domain.Actor{ID: "ops@example.com", Name: "ops@example.com", Role: "ops"}, actor)
}

func TestActorResolver_UsernameHint(t *testing.T) {
	claims := new(MockClaimsDecoder)
	claims.On("DecodeClaims", "garbage").Return(nil, outbound.ErrInvalidToken)

	resolver := NewActorResolver(nil, claims, quietLogger())

	actor := resolver.Resolve(context.Background(), inbound.RequestContext{
		Authorization: "Bearer garbage",
		Cookie:        "theme=dark; username=kavya",
	})
	assert.Equal(t, domain.Actor{ID: "kavya", Name: "kavya", Role: "user"}, actor)

	actor = resolver.Resolve(context.Background(), inbound.RequestContext{
		Values: map[string]string{"user": "dev"},
		Cookie: "username=kavya",
	})
	assert.Equal(t, "dev", actor.Name, "request values win over cookies")
}

func TestActorResolver_CookieCredential(t *testing.T) {
	sessions := new(MockSessionLookup)
	sessions.On("LookupSession", mock.Anything, "abc").Return(&outbound.Session{ID: "u9", Name: "Nila"}, nil)

	resolver := NewActorResolver(sessions, nil, quietLogger())
	actor := resolver.Resolve(context.Background(), inbound.RequestContext{Cookie: `theme=dark; token="abc"`})

	assert.Equal(t, domain.Actor{ID: "u9", Name: "Nila", Role: "user"}, actor)
}

func TestActorResolver_Unknown(t *testing.T) {
	resolver := NewActorResolver(nil, nil, nil)

	assert.Equal(t, domain.UnknownActor, resolver.Resolve(context.Background(), inbound.RequestContext{}))
	assert.Equal(t, domain.UnknownActor, resolver.Resolve(context.Background(), inbound.RequestContext{Cookie: ";;=x; broken"}))
}
