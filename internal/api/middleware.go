package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/commonsfund/ledger/internal/auth"
	"github.com/commonsfund/ledger/internal/repository"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	callerKey contextKey = "caller"
	pageKey   contextKey = "page"
)

// Page is the pagination window parsed from query parameters.
type Page struct {
	Number int
	Limit  int
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// CallerFrom extracts the authenticated caller from the context. Returns nil
// for unauthenticated requests.
func CallerFrom(ctx context.Context) *auth.Caller {
	caller, _ := ctx.Value(callerKey).(*auth.Caller)
	return caller
}

// PageFrom extracts the pagination window from the context, with defaults
// when the Paginate middleware did not run.
func PageFrom(ctx context.Context) Page {
	if p, ok := ctx.Value(pageKey).(Page); ok {
		return p
	}
	return Page{Number: 1, Limit: defaultPageLimit}
}

// AuthMiddleware resolves bearer tokens into caller identities. Roles are
// loaded from the members table once per request.
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	members    *repository.MemberRepo
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, members *repository.MemberRepo) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, members: members}
}

func (m *AuthMiddleware) resolveCaller(r *http.Request) (*auth.Caller, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, auth.ErrMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}

	claims, err := m.jwtManager.Validate(parts[1])
	if err != nil {
		return nil, err
	}

	roles, err := m.members.RolesForMember(claims.CollectiveID)
	if err != nil {
		return nil, err
	}

	return auth.NewCaller(claims.CollectiveID, claims.Email, roles), nil
}

// RequireAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := m.resolveCaller(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the caller when a valid token is present but lets
// unauthenticated requests through.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if caller, err := m.resolveCaller(r); err == nil {
			ctx := context.WithValue(r.Context(), callerKey, caller)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// Paginate parses page/limit query parameters into the request context,
// clamping the limit to keep result sets bounded.
func Paginate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		p := Page{
			Number: parseIntDefault(q.Get("page"), 1),
			Limit:  parseIntDefault(q.Get("limit"), defaultPageLimit),
		}
		if p.Limit > maxPageLimit {
			p.Limit = maxPageLimit
		}
		ctx := context.WithValue(r.Context(), pageKey, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sortParams validates the sortBy query parameter against a whitelist and
// parses the direction. Unknown fields fall back to the first allowed field.
func sortParams(r *http.Request, allowed ...string) (field string, desc bool) {
	q := r.URL.Query()
	field = q.Get("sortBy")

	ok := false
	for _, a := range allowed {
		if field == a {
			ok = true
			break
		}
	}
	if !ok {
		field = allowed[0]
	}

	return field, strings.EqualFold(q.Get("direction"), "desc")
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}
