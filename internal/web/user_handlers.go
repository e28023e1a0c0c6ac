package web

import (
	"fmt"
	"net/http"

	"github.com/nyumba-app/nyumba/internal/user"
)

// handleAPIUsers returns the tenant list (landlord only).
func (s *Server) handleAPIUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if requireLandlord(w, r) == nil {
		return
	}

	tenants, err := s.users.ListTenants()
	if err != nil {
		apiError(w, fmt.Sprintf("listing tenants: %v", err), http.StatusInternalServerError)
		return
	}

	if tenants == nil {
		tenants = make([]*user.User, 0)
	}
	apiJSON(w, tenants, http.StatusOK)
}

// handleAPIUserCount returns the tenant count against the cap (landlord only).
func (s *Server) handleAPIUserCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if requireLandlord(w, r) == nil {
		return
	}

	count, err := s.users.CountTenants()
	if err != nil {
		apiError(w, fmt.Sprintf("counting tenants: %v", err), http.StatusInternalServerError)
		return
	}

	apiJSON(w, map[string]int{"count": count, "max": user.MaxTenants}, http.StatusOK)
}
