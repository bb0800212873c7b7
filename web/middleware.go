package web

import (
	"net/http"
	"strings"

	"github.com/starfeed/starfeed/app"
	"github.com/starfeed/starfeed/domain/key"
)

// extractAPIKey reads the secret from the X-API-Key header, falling
// back to a Bearer token for clients that only speak Authorization.
func extractAPIKey(r *http.Request) string {
	if v := r.Header.Get("X-API-Key"); v != "" {
		return v
	}
	if v := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "); v != r.Header.Get("Authorization") {
		return v
	}
	return ""
}

// withAPIKey gates a metered route: the quota check runs and, on
// success, the hit is recorded.
func (h *Handler) withAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The ledger tracks concrete paths; its own endpoint cap bounds
		// cardinality.
		endpoint := r.Method + " " + r.URL.Path
		d := h.gate.Authorize(r.Context(), extractAPIKey(r), endpoint)
		if !d.Allowed {
			h.writeGateError(w, d.Reason, d)
			return
		}
		next.ServeHTTP(w, r.WithContext(withDecision(r.Context(), d)))
	})
}

// withAPIKeyNoMeter authenticates a route by API key without counting
// the call against the quota.
func (h *Handler) withAPIKeyNoMeter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		k, reason := h.gate.Identify(r.Context(), extractAPIKey(r))
		if reason != "" {
			h.writeGateError(w, reason, app.Decision{})
			return
		}
		next.ServeHTTP(w, r.WithContext(withDecision(r.Context(), app.Decision{Allowed: true, Key: k})))
	})
}

func (h *Handler) writeGateError(w http.ResponseWriter, reason string, d app.Decision) {
	switch reason {
	case key.ReasonMissing:
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Error:   CodeMissingKey,
			Message: "provide an API key in the X-API-Key header",
			Docs:    docsAuthURL,
		})
	case key.ReasonQuota:
		writeQuotaError(w, CodeQuotaExceeded, "monthly quota exhausted",
			newQuotaBody(d.Quota.Used, d.Quota.Total, d.Quota.ResetsOn))
	default:
		writeError(w, http.StatusUnauthorized, CodeInvalidKey, "API key is invalid")
	}
}

// withAdminToken guards the admin surface: a valid bearer JWT with an
// admin or superadmin role.
func (h *Handler) withAdminToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "bearer token required")
			return
		}

		claims, err := h.tokens.ValidateToken(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "token is invalid or expired")
			return
		}
		if claims.Role != "admin" && claims.Role != "superadmin" {
			writeError(w, http.StatusForbidden, CodeForbidden, "admin role required")
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// requireSuperadmin narrows a handler to the superadmin role.
func requireSuperadmin(w http.ResponseWriter, r *http.Request) bool {
	c := claimsFrom(r.Context())
	if c == nil || c.Role != "superadmin" {
		writeError(w, http.StatusForbidden, CodeForbidden, "superadmin role required")
		return false
	}
	return true
}
