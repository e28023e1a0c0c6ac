package web

import (
	"fmt"
	"net/http"

	"github.com/nyumba-app/nyumba/internal/auth"
)

// handleAPIDashboard routes /api/dashboard/* requests.
func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/api/dashboard/landlord":
		s.apiLandlordDashboard(w, r)
	case "/api/dashboard/tenant":
		s.apiTenantDashboard(w, r)
	default:
		apiError(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) apiLandlordDashboard(w http.ResponseWriter, r *http.Request) {
	u := requireLandlord(w, r)
	if u == nil {
		return
	}

	summary, err := s.dashboards.Landlord(u.ID)
	if err != nil {
		apiError(w, fmt.Sprintf("building dashboard: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, summary, http.StatusOK)
}

func (s *Server) apiTenantDashboard(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	if u.IsLandlord() {
		apiError(w, "tenant access required", http.StatusForbidden)
		return
	}

	summary, err := s.dashboards.Tenant(u.ID)
	if err != nil {
		apiError(w, fmt.Sprintf("building dashboard: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, summary, http.StatusOK)
}
