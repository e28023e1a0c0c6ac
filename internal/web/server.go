// Package web provides the HTTP server, JSON API and UI for nyumba.
package web

import (
	"database/sql"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/nyumba-app/nyumba/internal/auth"
	"github.com/nyumba-app/nyumba/internal/chat"
	"github.com/nyumba-app/nyumba/internal/config"
	"github.com/nyumba-app/nyumba/internal/dashboard"
	"github.com/nyumba-app/nyumba/internal/email"
	"github.com/nyumba-app/nyumba/internal/logging"
	"github.com/nyumba-app/nyumba/internal/mpesa"
	"github.com/nyumba-app/nyumba/internal/payment"
	"github.com/nyumba-app/nyumba/internal/property"
	"github.com/nyumba-app/nyumba/internal/user"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// stkPusher is the part of the M-Pesa client the payment handlers need.
type stkPusher interface {
	STKPush(phoneNumber string, amount int64, accountReference string) (*mpesa.STKResponse, error)
}

// Server is the nyumba HTTP server.
type Server struct {
	cfg        config.Config
	users      *user.Store
	properties *property.Repository
	payments   *payment.Repository
	chats      *chat.Repository
	dashboards *dashboard.Service
	issuer     *auth.TokenIssuer
	templates  *template.Template
	mux        *http.ServeMux
	handler    http.Handler

	// Overridable in tests. stk is nil when M-Pesa is not configured;
	// sendMail is nil when SMTP is not configured.
	stk      stkPusher
	sendMail func(to []string, subject, body string) error
}

// NewServer creates a server with the given database and configuration.
func NewServer(db *sql.DB, cfg config.Config) (*Server, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	users := user.NewStore(db)
	properties := property.NewRepository(db)
	payments := payment.NewRepository(db)

	s := &Server{
		cfg:        cfg,
		users:      users,
		properties: properties,
		payments:   payments,
		chats:      chat.NewRepository(db),
		dashboards: dashboard.NewService(users, properties, payments),
		issuer:     auth.NewTokenIssuer(cfg.JWTSecret),
		templates:  tmpl,
		mux:        http.NewServeMux(),
	}

	if cfg.Mpesa.IsConfigured() {
		client, err := mpesa.NewClient(cfg.Mpesa)
		if err != nil {
			return nil, fmt.Errorf("creating M-Pesa client: %w", err)
		}
		s.stk = client
	}
	if cfg.SMTP.IsConfigured() {
		smtp := cfg.SMTP
		s.sendMail = func(to []string, subject, body string) error {
			return email.Send(smtp, to, subject, body)
		}
	} else if cfg.DevMode {
		s.sendMail = func(to []string, subject, body string) error {
			fmt.Printf("[DEV] Mail to %s: %s\n%s\n", strings.Join(to, ", "), subject, body)
			return nil
		}
	}

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("creating static sub-fs: %w", err)
	}

	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))
	s.mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	s.mux.HandleFunc("/health", s.handleHealth)

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/login", s.handleLoginPage)
	s.mux.HandleFunc("/register", s.handleRegisterPage)
	s.mux.HandleFunc("/dashboard", s.handleDashboardPage)
	s.mux.HandleFunc("/chat/", s.handleChatPage)

	s.mux.HandleFunc("/api/auth/", s.handleAPIAuth)
	s.mux.HandleFunc("/api/properties", s.handleAPIProperties)
	s.mux.HandleFunc("/api/properties/", s.handleAPIProperties)
	s.mux.HandleFunc("/api/payments", s.handleAPIPayments)
	s.mux.HandleFunc("/api/payments/", s.handleAPIPayments)
	s.mux.HandleFunc("/api/users", s.handleAPIUsers)
	s.mux.HandleFunc("/api/users/count", s.handleAPIUserCount)
	s.mux.HandleFunc("/api/conversations", s.handleAPIConversations)
	s.mux.HandleFunc("/api/conversations/", s.handleAPIConversations)
	s.mux.HandleFunc("/api/dashboard/", s.handleAPIDashboard)

	s.handler = logging.RequestLogger(auth.RequireAuth(s.issuer, s.users, publicAPIPaths, s.mux))

	return s, nil
}

// publicAPIPaths are served without a bearer token.
var publicAPIPaths = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/payments/callback",
}

// ServeHTTP implements http.Handler with the full middleware chain.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := ":" + s.cfg.Port
	fmt.Printf("Starting nyumba on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
