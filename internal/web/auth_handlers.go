package web

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/nyumba-app/nyumba/internal/auth"
	"github.com/nyumba-app/nyumba/internal/user"
)

// sessionResponse is the login/register response body: the bearer token
// plus the account it belongs to.
type sessionResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// handleAPIAuth routes /api/auth/* requests.
func (s *Server) handleAPIAuth(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/register":
		s.apiRegister(w, r)
	case "/api/auth/login":
		s.apiLogin(w, r)
	case "/api/auth/profile":
		s.apiProfile(w, r)
	default:
		apiError(w, "not found", http.StatusNotFound)
	}
}

// apiRegister creates an account and returns a fresh session.
func (s *Server) apiRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		PhoneNumber string `json:"phone_number"`
		HouseNumber string `json:"house_number"`
		Role        string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	u, err := s.users.Create(user.CreateInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		HouseNumber: req.HouseNumber,
		Role:        user.Role(req.Role),
	})
	if err != nil {
		apiError(w, err.Error(), registerStatus(err))
		return
	}

	token, err := s.issuer.Issue(u.ID)
	if err != nil {
		apiError(w, "creating token", http.StatusInternalServerError)
		return
	}

	apiJSON(w, sessionResponse{Token: token, User: u}, http.StatusCreated)
}

// registerStatus maps user-store sentinels to HTTP status codes.
func registerStatus(err error) int {
	switch {
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, user.ErrHouseNumberTaken):
		return http.StatusConflict
	case errors.Is(err, user.ErrLandlordExists),
		errors.Is(err, user.ErrTenantLimit):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// apiLogin authenticates credentials and returns a session. The response
// to bad credentials is deliberately flat: same status, same message,
// whatever the cause.
func (s *Server) apiLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	ip := clientIP(r)

	u, err := s.users.Authenticate(req.Email, req.Password)
	if err != nil {
		if auth.LoginLimiter.RecordFailure(ip) {
			apiError(w, "too many failed attempts, try again later", http.StatusTooManyRequests)
			return
		}
		apiError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	auth.LoginLimiter.Reset(ip)

	token, err := s.issuer.Issue(u.ID)
	if err != nil {
		apiError(w, "creating token", http.StatusInternalServerError)
		return
	}

	apiJSON(w, sessionResponse{Token: token, User: u}, http.StatusOK)
}

// apiProfile returns the authenticated account.
func (s *Server) apiProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	apiJSON(w, auth.UserFrom(r.Context()), http.StatusOK)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
