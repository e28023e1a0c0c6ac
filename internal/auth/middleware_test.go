package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/nyumba-app/nyumba/internal/db"
	"github.com/nyumba-app/nyumba/internal/user"
)

func testUserStore(t *testing.T) *user.Store {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "nyumba.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
	return user.NewStore(d)
}

func testMiddleware(t *testing.T) (http.Handler, *TokenIssuer, *user.User) {
	t.Helper()

	users := testUserStore(t)
	u, err := users.Create(user.CreateInput{
		Email:       "tenant@example.com",
		Password:    "hunter2",
		FirstName:   "Test",
		LastName:    "Tenant",
		HouseNumber: "A1",
		Role:        user.RoleTenant,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	issuer := NewTokenIssuer("test-secret")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cu := UserFrom(r.Context()); cu != nil {
			fmt.Fprintf(w, "user:%d", cu.ID)
			return
		}
		fmt.Fprint(w, "anonymous")
	})

	public := []string{"/api/auth/login", "/api/payments/callback"}
	return RequireAuth(issuer, users, public, inner), issuer, u
}

func TestRequireAuthValidToken(t *testing.T) {
	handler, issuer, u := testMiddleware(t)

	token, err := issuer.Issue(u.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := httptest.NewRequest("GET", "/api/properties", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if want := fmt.Sprintf("user:%d", u.ID); w.Body.String() != want {
		t.Errorf("body = %q, want %q", w.Body.String(), want)
	}
}

func TestRequireAuthMissingToken(t *testing.T) {
	handler, _, _ := testMiddleware(t)

	r := httptest.NewRequest("GET", "/api/properties", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	handler, _, _ := testMiddleware(t)

	r := httptest.NewRequest("GET", "/api/properties", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthUnknownUser(t *testing.T) {
	handler, issuer, _ := testMiddleware(t)

	// Token signed correctly but for a user that doesn't exist.
	token, err := issuer.Issue(9999)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := httptest.NewRequest("GET", "/api/properties", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthPublicPaths(t *testing.T) {
	handler, _, _ := testMiddleware(t)

	for _, path := range []string{"/api/auth/login", "/api/payments/callback", "/login", "/health"} {
		r := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, w.Code)
		}
		if w.Body.String() != "anonymous" {
			t.Errorf("%s: body = %q, want anonymous", path, w.Body.String())
		}
	}
}

func TestLoginLimiter(t *testing.T) {
	rl := &loginLimiter{attempts: make(map[string][]time.Time)}

	ip := "192.0.2.1:1234"
	for i := 0; i < rateLimitMaxFail; i++ {
		if rl.RecordFailure(ip) {
			t.Fatalf("limited after %d failures, want %d allowed", i+1, rateLimitMaxFail)
		}
	}
	if !rl.RecordFailure(ip) {
		t.Error("expected rate limit after exceeding max failures")
	}

	rl.Reset(ip)
	if rl.RecordFailure(ip) {
		t.Error("expected limiter cleared after reset")
	}
}
