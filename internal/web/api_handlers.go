package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nyumba-app/nyumba/internal/auth"
	"github.com/nyumba-app/nyumba/internal/property"
	"github.com/nyumba-app/nyumba/internal/user"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// requireLandlord returns the authenticated landlord, or writes a 403
// and returns nil.
func requireLandlord(w http.ResponseWriter, r *http.Request) *user.User {
	u := auth.UserFrom(r.Context())
	if u == nil || !u.IsLandlord() {
		apiError(w, "landlord access required", http.StatusForbidden)
		return nil
	}
	return u
}

// handleAPIProperties routes /api/properties requests.
func (s *Server) handleAPIProperties(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/properties")
	path = strings.TrimPrefix(path, "/")

	// /api/properties — list or create
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListProperties(w, r)
		case http.MethodPost:
			s.apiCreateProperty(w, r)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/properties/{id}/images
	if strings.HasSuffix(path, "/images") {
		idStr := strings.TrimSuffix(path, "/images")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			apiError(w, "invalid property ID", http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodPost {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiUploadImage(w, r, id)
		return
	}

	// /api/properties/{id} — show, update or remove
	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		apiError(w, "invalid property ID", http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.apiGetProperty(w, id)
	case http.MethodPut:
		s.apiUpdateProperty(w, r, id)
	case http.MethodDelete:
		s.apiDeleteProperty(w, r, id)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// apiListProperties returns properties as JSON. The landlord sees their
// own; tenants see the full listing.
func (s *Server) apiListProperties(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())

	var (
		props []*property.Property
		err   error
	)
	if u.IsLandlord() {
		props, err = s.properties.ListByLandlord(u.ID)
	} else {
		props, err = s.properties.List()
	}
	if err != nil {
		apiError(w, fmt.Sprintf("listing properties: %v", err), http.StatusInternalServerError)
		return
	}

	if props == nil {
		props = make([]*property.Property, 0)
	}
	apiJSON(w, props, http.StatusOK)
}

// apiCreateProperty adds a property (landlord only).
func (s *Server) apiCreateProperty(w http.ResponseWriter, r *http.Request) {
	u := requireLandlord(w, r)
	if u == nil {
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Address     string  `json:"address"`
		RentAmount  float64 `json:"rent_amount"`
		Description string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	p, err := s.properties.Insert(&property.Property{
		LandlordID:  u.ID,
		Name:        strings.TrimSpace(req.Name),
		Address:     strings.TrimSpace(req.Address),
		RentAmount:  req.RentAmount,
		Description: req.Description,
	})
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	apiJSON(w, p, http.StatusCreated)
}

// apiGetProperty returns a single property.
func (s *Server) apiGetProperty(w http.ResponseWriter, id int64) {
	p, err := s.properties.GetByID(id)
	if errors.Is(err, property.ErrNotFound) {
		apiError(w, "property not found", http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, fmt.Sprintf("loading property: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, p, http.StatusOK)
}

// apiUpdateProperty updates a property (landlord only, own property).
func (s *Server) apiUpdateProperty(w http.ResponseWriter, r *http.Request, id int64) {
	u := requireLandlord(w, r)
	if u == nil {
		return
	}
	if !s.ownsProperty(w, u, id) {
		return
	}

	var req property.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	p, err := s.properties.Update(id, req)
	if errors.Is(err, property.ErrNotFound) {
		apiError(w, "property not found", http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, fmt.Sprintf("updating property: %v", err), http.StatusInternalServerError)
		return
	}

	apiJSON(w, p, http.StatusOK)
}

// apiDeleteProperty removes a property (landlord only, own property).
func (s *Server) apiDeleteProperty(w http.ResponseWriter, r *http.Request, id int64) {
	u := requireLandlord(w, r)
	if u == nil {
		return
	}
	if !s.ownsProperty(w, u, id) {
		return
	}

	if err := s.properties.Delete(id); err != nil {
		apiError(w, fmt.Sprintf("deleting property: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, map[string]interface{}{"id": id, "removed": true}, http.StatusOK)
}

// maxImageUpload caps property image uploads at 10 MB.
const maxImageUpload = 10 << 20

// apiUploadImage stores a property image on disk and records its URL.
func (s *Server) apiUploadImage(w http.ResponseWriter, r *http.Request, id int64) {
	u := requireLandlord(w, r)
	if u == nil {
		return
	}
	if !s.ownsProperty(w, u, id) {
		return
	}

	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		apiError(w, "invalid multipart body", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		apiError(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			fmt.Printf("warning: closing upload: %v\n", cerr)
		}
	}()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		apiError(w, "unsupported image type", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		apiError(w, "preparing upload directory", http.StatusInternalServerError)
		return
	}

	name := fmt.Sprintf("property-%d-%d%s", id, time.Now().UnixNano(), ext)
	dst, err := os.Create(filepath.Join(s.cfg.UploadDir, name))
	if err != nil {
		apiError(w, "storing image", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		apiError(w, "storing image", http.StatusInternalServerError)
		return
	}
	if err := dst.Close(); err != nil {
		apiError(w, "storing image", http.StatusInternalServerError)
		return
	}

	imageURL := "/uploads/" + name
	if err := s.properties.SetImageURL(id, imageURL); err != nil {
		apiError(w, fmt.Sprintf("recording image: %v", err), http.StatusInternalServerError)
		return
	}

	p, err := s.properties.GetByID(id)
	if err != nil {
		apiError(w, fmt.Sprintf("loading property: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, p, http.StatusOK)
}

// ownsProperty checks the property exists and belongs to the landlord,
// writing the error response itself when not.
func (s *Server) ownsProperty(w http.ResponseWriter, u *user.User, id int64) bool {
	p, err := s.properties.GetByID(id)
	if errors.Is(err, property.ErrNotFound) {
		apiError(w, "property not found", http.StatusNotFound)
		return false
	}
	if err != nil {
		apiError(w, fmt.Sprintf("loading property: %v", err), http.StatusInternalServerError)
		return false
	}
	if p.LandlordID != u.ID {
		apiError(w, "not your property", http.StatusForbidden)
		return false
	}
	return true
}
