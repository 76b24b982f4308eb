package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/model"
)

// MembershipResolver looks up the household a parent currently belongs to.
type MembershipResolver interface {
	MembershipForUser(ctx context.Context, userID string) (*model.Membership, error)
}

// Authenticate validates the bearer token and populates AuthContext. Parents
// get their household from the membership row on every request so a join
// takes effect without reissuing the token. Children carry it in the token.
// The token may also arrive as ?token= for WebSocket upgrades.
func Authenticate(tokens *auth.Tokens, members MembershipResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ac := auth.AuthContext{Kind: claims.Type}
			switch claims.Type {
			case auth.KindChild:
				ac.ChildID = claims.Subject
				ac.HouseholdID = claims.HouseholdID
			case auth.KindParent:
				ac.UserID = claims.Subject
				m, err := members.MembershipForUser(r.Context(), claims.Subject)
				if err != nil {
					logger.Error("resolve membership", "user_id", claims.Subject, "error", err)
					writeError(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				if m != nil {
					ac.HouseholdID = m.HouseholdID
					ac.Role = m.Role
				}
			}

			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// RequireParent rejects any caller that is not a parent account.
func RequireParent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsParent(r.Context()) {
			writeError(w, http.StatusForbidden, "Parent access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireChild rejects any caller that is not a child.
func RequireChild(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsChild(r.Context()) {
			writeError(w, http.StatusForbidden, "Child access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireHousehold rejects callers without a resolved household.
func RequireHousehold(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.HouseholdID(r.Context()) == "" {
			writeError(w, http.StatusForbidden, "You must belong to a household")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin checks that the authenticated parent administers the household.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok || ac.Kind != auth.KindParent || ac.Role != model.RoleAdmin {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
