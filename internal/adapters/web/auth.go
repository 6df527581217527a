package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"business-dashboard/internal/auth"
	"business-dashboard/internal/logger"

	"go.uber.org/zap"
)

type authClaimsKey struct{}

// authFromContext returns the token claims stored in ctx, or nil.
func authFromContext(ctx context.Context) *auth.Claims {
	v, _ := ctx.Value(authClaimsKey{}).(*auth.Claims)
	return v
}

// RequireAuth is chi middleware that validates a bearer token (or the
// auth_token cookie) and injects its claims into the request context. It
// returns 401 if the token is absent or invalid. When no secret is configured
// every request passes through unauthenticated.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.tokens.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		raw := bearerToken(r)
		if raw == "" {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		claims, err := h.tokens.Validate(raw)
		if err != nil {
			logger.FromContext(r.Context()).Debug("rejected token", zap.Error(err))
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		log := logger.FromContext(r.Context()).With(zap.String("subject", claims.Subject))
		ctx := context.WithValue(r.Context(), authClaimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx, log)))
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// me handles GET /api/auth/me and reports who the token belongs to.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	type meResponse struct {
		AuthEnabled bool       `json:"auth_enabled"`
		Subject     string     `json:"subject,omitempty"`
		Role        string     `json:"role,omitempty"`
		ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	}

	claims := authFromContext(r.Context())
	if claims == nil {
		writeJSON(w, meResponse{AuthEnabled: h.tokens.Enabled()})
		return
	}
	resp := meResponse{AuthEnabled: true, Subject: claims.Subject, Role: claims.Role}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		resp.ExpiresAt = &t
	}
	writeJSON(w, resp)
}
