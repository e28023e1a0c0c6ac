package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nyumba-app/nyumba/internal/config"
	"github.com/nyumba-app/nyumba/internal/db"
	"github.com/nyumba-app/nyumba/internal/user"
)

// testServer creates a server over a fresh temp database.
func testServer(t *testing.T) (*Server, *sql.DB) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "nyumba.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	cfg := config.Config{
		Port:      "0",
		JWTSecret: "test-secret",
		BaseURL:   "http://localhost:8080",
		DevMode:   true,
		UploadDir: filepath.Join(t.TempDir(), "uploads"),
	}
	srv, err := NewServer(d, cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	return srv, d
}

// apiRequest performs a JSON request against the full middleware chain.
func apiRequest(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	r := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

// registerLandlord registers the landlord account through the API and
// returns its bearer token and user.
func registerLandlord(t *testing.T, srv *Server) (string, *user.User) {
	t.Helper()
	return register(t, srv, map[string]string{
		"email":      "owner@example.com",
		"password":   "landlord-pass-1",
		"first_name": "Land",
		"last_name":  "Lord",
		"role":       "landlord",
	})
}

var tenantSeq int

// registerTenant registers a tenant with a unique email and house number.
func registerTenant(t *testing.T, srv *Server) (string, *user.User) {
	t.Helper()
	tenantSeq++
	return register(t, srv, map[string]string{
		"email":        fmt.Sprintf("tenant%d@example.com", tenantSeq),
		"password":     "tenant-pass-1",
		"first_name":   "Test",
		"last_name":    fmt.Sprintf("Tenant%d", tenantSeq),
		"house_number": fmt.Sprintf("T%d", tenantSeq),
		"role":         "tenant",
	})
}

func register(t *testing.T, srv *Server, body map[string]string) (string, *user.User) {
	t.Helper()
	w := apiRequest(t, srv, "POST", "/api/auth/register", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp sessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Token, resp.User
}

// createProperty inserts a property through the API as the landlord.
func createProperty(t *testing.T, srv *Server, token string, name string, rent float64) int64 {
	t.Helper()
	w := apiRequest(t, srv, "POST", "/api/properties", token, map[string]interface{}{
		"name":        name,
		"address":     "1 Moi Ave, Nairobi",
		"rent_amount": rent,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create property: status = %d, body: %s", w.Code, w.Body.String())
	}

	var p struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode property: %v", err)
	}
	return p.ID
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestIndexRedirectsToDashboard(t *testing.T) {
	srv, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/", "", nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("location = %q, want /dashboard", loc)
	}
}

func TestUIPagesRender(t *testing.T) {
	srv, _ := testServer(t)

	for _, path := range []string{"/login", "/register", "/dashboard", "/chat/1"} {
		w := apiRequest(t, srv, "GET", path, "", nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", path, w.Code, http.StatusOK)
		}
		if ct := w.Header().Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s: content type = %q", path, ct)
		}
	}
}

func TestStaticAssetsServed(t *testing.T) {
	srv, _ := testServer(t)

	for _, path := range []string{"/static/style.css", "/static/app.js"} {
		w := apiRequest(t, srv, "GET", path, "", nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", path, w.Code, http.StatusOK)
		}
	}
}

func TestDevModeMailWired(t *testing.T) {
	srv, _ := testServer(t)

	// SMTP is not configured in tests; dev mode prints the mail instead.
	if srv.sendMail == nil {
		t.Fatal("expected dev-mode mail function")
	}
	if err := srv.sendMail([]string{"owner@example.com"}, "Rent payment received", "body"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMailNotWiredWithoutDevModeOrSMTP(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "nyumba.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	srv, err := NewServer(d, config.Config{
		Port:      "0",
		JWTSecret: "test-secret",
		DevMode:   false,
		UploadDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if srv.sendMail != nil {
		t.Error("expected no mail function without SMTP or dev mode")
	}
}
