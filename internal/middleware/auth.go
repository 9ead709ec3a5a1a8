package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/myfestival/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// MemberIDKey is the context key for storing the authenticated member ID.
	MemberIDKey contextKey = "member_id"
	// RoleKey is the context key for storing the authenticated member's role.
	RoleKey contextKey = "role"
)

// GetMemberID extracts the member ID from the context.
// Returns empty string if not found.
func GetMemberID(ctx context.Context) string {
	memberID, _ := ctx.Value(MemberIDKey).(string)
	return memberID
}

// GetRole extracts the role from the context.
// Returns empty string if not found.
func GetRole(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}

// WithMember returns a copy of ctx carrying the member identity.
func WithMember(ctx context.Context, memberID, role string) context.Context {
	ctx = context.WithValue(ctx, MemberIDKey, memberID)
	return context.WithValue(ctx, RoleKey, role)
}

// Policy lists which procedures skip authentication and which need the
// organizer role. Every other procedure requires a valid token.
type Policy struct {
	Public    map[string]bool
	Organizer map[string]bool
}

// RequireAuth returns a middleware that validates JWT tokens.
// Public procedures accept requests without a token but still pick up the
// identity when a valid one is sent. Organizer procedures reject tokens
// carrying any other role.
func RequireAuth(jwtManager *auth.JWTManager, policy Policy) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure

			claims, err := bearerClaims(jwtManager, req.Header().Get("Authorization"))
			if err != nil {
				if policy.Public[procedure] {
					return next(ctx, req)
				}
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			if policy.Organizer[procedure] && claims.Role != auth.RoleOrganizer {
				return nil, connect.NewError(connect.CodePermissionDenied, auth.ErrForbidden)
			}

			return next(WithMember(ctx, claims.MemberID, claims.Role), req)
		}
	}
}

// bearerClaims parses the Authorization header value.
func bearerClaims(jwtManager *auth.JWTManager, authHeader string) (*auth.Claims, error) {
	if authHeader == "" {
		return nil, auth.ErrMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}

	return jwtManager.Validate(parts[1])
}
