package outbound

import "context"

// Session is the identity bound to an authorization credential
type Session struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// SessionLookup resolves a credential to a session. A nil session with a
// nil error means the credential is unknown.
type SessionLookup interface {
	LookupSession(ctx context.Context, credential string) (*Session, error)
}
