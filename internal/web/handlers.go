package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// The UI pages are thin shells: the browser keeps the session (token +
// user) in localStorage and drives everything through the JSON API, so
// these handlers render templates without any server-side session.

type chatPageData struct {
	PropertyID int64
}

// handleIndex sends the browser to the dashboard; its script bounces to
// /login when there is no stored session.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", nil)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "register.html", nil)
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "dashboard.html", nil)
}

// handleChatPage renders the thread page for /chat/{propertyID}.
func (s *Server) handleChatPage(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/chat/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.render(w, "chat.html", chatPageData{PropertyID: id})
}

// render executes a page template.
func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, fmt.Sprintf("Error rendering template: %v", err), http.StatusInternalServerError)
	}
}
