package audit

import (
	"context"
	"strings"

	"github.com/fabricflow/fabricflow/application/port/inbound"
	"github.com/fabricflow/fabricflow/application/port/outbound"
	"github.com/fabricflow/fabricflow/domain"
	"github.com/fabricflow/fabricflow/infrastructure/service/logger"
)

var (
	credentialCookies = []string{"token", "auth_token", "session"}
	usernameKeys      = []string{"username", "user", "userName"}
)

// ActorResolver determines who performed an action. Each source is tried
// only when the previous one yields nothing; the last resort is
// domain.UnknownActor.
type ActorResolver struct {
	sessions outbound.SessionLookup
	claims   outbound.ClaimsDecoder
	logger   logger.Logger
}

func NewActorResolver(sessions outbound.SessionLookup, claims outbound.ClaimsDecoder, log logger.Logger) *ActorResolver {
	return &ActorResolver{
		sessions: sessions,
		claims:   claims,
		logger:   log,
	}
}

// Resolve implements inbound.ActorResolver. It never panics.
func (r *ActorResolver) Resolve(ctx context.Context, req inbound.RequestContext) (actor domain.Actor) {
	actor = domain.UnknownActor
	cookies := parseCookies(req.Cookie)
	credential := credentialFrom(req.Authorization, cookies)
	info := stepInfo{action: "resolve_actor"}

	if credential != "" && r.sessions != nil {
		var found *domain.Actor
		isolate(ctx, r.logger, "session_lookup", info, func() error {
			session, err := r.sessions.LookupSession(ctx, credential)
			if err != nil {
				return err
			}
			if session != nil && (session.ID != "" || session.Name != "") {
				found = &domain.Actor{
					ID:   first(session.ID, session.Name),
					Name: first(session.Name, session.ID),
					Role: first(session.Role, domain.UnknownActor.Role),
				}
			}
			return nil
		})
		if found != nil {
			return *found
		}
	}

	if credential != "" && r.claims != nil {
		var found *domain.Actor
		isolate(ctx, nil, "decode_claims", info, func() error {
			claims, err := r.claims.DecodeClaims(credential)
			if err != nil {
				return err
			}
			if claims == nil {
				return outbound.ErrNoIdentity
			}
			found = &domain.Actor{
				ID:   first(claims.UserID, claims.Username, claims.Email),
				Name: first(claims.Username, claims.Email, claims.UserID),
				Role: first(claims.Role, domain.UnknownActor.Role),
			}
			return nil
		})
		if found != nil {
			return *found
		}
	}

	if name := usernameHint(req.Values, cookies); name != "" {
		return domain.Actor{ID: name, Name: name, Role: domain.UnknownActor.Role}
	}

	return actor
}

// credentialFrom prefers the Authorization header and falls back to a
// credential cookie
func credentialFrom(authorization string, cookies map[string]string) string {
	authorization = strings.TrimSpace(authorization)
	if authorization != "" {
		parts := strings.Fields(authorization)
		switch {
		case len(parts) == 2 && strings.EqualFold(parts[0], "Bearer"):
			return parts[1]
		case len(parts) == 1:
			return parts[0]
		}
	}
	for _, name := range credentialCookies {
		if v := cookies[name]; v != "" {
			return v
		}
	}
	return ""
}

func usernameHint(values, cookies map[string]string) string {
	for _, source := range []map[string]string{values, cookies} {
		for _, key := range usernameKeys {
			if v := strings.TrimSpace(source[key]); v != "" {
				return v
			}
		}
	}
	return ""
}

// parseCookies reads a "k=v; k2=v2" string, skipping malformed pairs
func parseCookies(raw string) map[string]string {
	cookies := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" {
			continue
		}
		cookies[strings.TrimSpace(name)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return cookies
}

func first(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
