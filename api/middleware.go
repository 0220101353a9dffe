package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/raushankrgupta/virtual-tryon/utils"
)

type contextKey string

const identityKey contextKey = "identity"

var errNoIdentity = errors.New("no authenticated user in context")

// Identity is the signed-in user as asserted by the identity provider
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Authenticator validates the identity provider's session token, read from
// the session cookie or an Authorization: Bearer header.
type Authenticator struct {
	Secret     string
	CookieName string
}

func NewAuthenticator(secret, cookieName string) *Authenticator {
	return &Authenticator{Secret: secret, CookieName: cookieName}
}

// Authenticate rejects requests without a valid session with 401
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.sessionToken(r)
		if token == "" {
			utils.RespondError(w, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := utils.ValidateToken(a.Secret, token)
		if err != nil {
			utils.RespondError(w, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, &Identity{
			Subject: claims.Subject,
			Email:   claims.Email,
			Name:    claims.UserMetadata.FullName,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) sessionToken(r *http.Request) string {
	if c, err := r.Cookie(a.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// GetIdentityFromContext returns the user set by Authenticate
func GetIdentityFromContext(ctx context.Context) (*Identity, error) {
	id, ok := ctx.Value(identityKey).(*Identity)
	if !ok || id == nil {
		return nil, errNoIdentity
	}
	return id, nil
}
