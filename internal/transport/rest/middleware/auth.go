package middleware

import (
	"context"
	"net/http"
	"strings"

	"kenolive/internal/model"
)

type contextKey string

const (
	PlayerIDKey contextKey = "playerId"
	NicknameKey contextKey = "nickname"
)

// TokenValidator resolves a bearer token to its claims
type TokenValidator interface {
	ValidateToken(token string) (*model.PlayerClaims, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc TokenValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequirePlayer validates player JWT from Authorization header
func (m *AuthMiddleware) RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, PlayerIDKey, claims.PlayerID)
		ctx = context.WithValue(ctx, NicknameKey, claims.Nickname)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPlayerID extracts player ID from context
func GetPlayerID(ctx context.Context) string {
	if v, ok := ctx.Value(PlayerIDKey).(string); ok {
		return v
	}
	return ""
}

// GetNickname extracts the player's nickname from context
func GetNickname(ctx context.Context) string {
	if v, ok := ctx.Value(NicknameKey).(string); ok {
		return v
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
