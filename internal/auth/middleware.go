package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nyumba-app/nyumba/internal/user"
)

type contextKey struct{}

// UserFrom returns the authenticated user stored in the request context,
// or nil if the request was not authenticated.
func UserFrom(ctx context.Context) *user.User {
	u, _ := ctx.Value(contextKey{}).(*user.User)
	return u
}

// BearerToken extracts the token from an Authorization header value.
// Returns "" when the header is missing or not a bearer scheme.
func BearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// RequireAuth is middleware for /api/ routes: it verifies the bearer token,
// loads the user, and stores it in the request context. Paths listed in
// public are passed through untouched (login, register, the M-Pesa callback).
func RequireAuth(issuer *TokenIssuer, users *user.Store, public []string, next http.Handler) http.Handler {
	publicSet := make(map[string]bool, len(public))
	for _, p := range public {
		publicSet[p] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") || publicSet[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		token := BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			unauthorized(w, "authorization required")
			return
		}

		userID, err := issuer.Verify(token)
		if err != nil {
			unauthorized(w, "invalid or expired token")
			return
		}

		u, err := users.GetByID(userID)
		if err != nil {
			unauthorized(w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, u)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

// loginLimiter tracks failed login attempts per IP.
type loginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

// LoginLimiter is the package-level limiter shared by login handlers.
var LoginLimiter = &loginLimiter{
	attempts: make(map[string][]time.Time),
}

const (
	rateLimitWindow  = 1 * time.Minute
	rateLimitMaxFail = 10
)

// RecordFailure records a failed attempt and returns true if rate limited.
func (rl *loginLimiter) RecordFailure(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rateLimitWindow)

	// Prune old entries
	valid := rl.attempts[ip][:0]
	for _, t := range rl.attempts[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	valid = append(valid, now)
	rl.attempts[ip] = valid

	return len(valid) > rateLimitMaxFail
}

// Reset clears recorded failures for an IP after a successful login.
func (rl *loginLimiter) Reset(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, ip)
}
