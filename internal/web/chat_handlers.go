package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/nyumba-app/nyumba/internal/auth"
	"github.com/nyumba-app/nyumba/internal/chat"
	"github.com/nyumba-app/nyumba/internal/property"
	"github.com/nyumba-app/nyumba/internal/user"
)

// handleAPIConversations routes /api/conversations requests.
func (s *Server) handleAPIConversations(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/conversations")
	path = strings.TrimPrefix(path, "/")

	// /api/conversations — thread list
	if path == "" {
		if r.Method != http.MethodGet {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiListConversations(w, r)
		return
	}

	// /api/conversations/{propertyID}/messages
	if strings.HasSuffix(path, "/messages") {
		idStr := strings.TrimSuffix(path, "/messages")
		propertyID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			apiError(w, "invalid property ID", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodGet:
			s.apiListMessages(w, r, propertyID)
		case http.MethodPost:
			s.apiSendMessage(w, r, propertyID)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	apiError(w, "not found", http.StatusNotFound)
}

// apiListConversations returns the caller's threads with unread counts.
func (s *Server) apiListConversations(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())

	convos, err := s.chats.Conversations(u.ID)
	if err != nil {
		apiError(w, fmt.Sprintf("listing conversations: %v", err), http.StatusInternalServerError)
		return
	}

	if convos == nil {
		convos = make([]*chat.Conversation, 0)
	}
	apiJSON(w, convos, http.StatusOK)
}

// apiListMessages returns a property thread and marks it read. Polled by
// the chat page.
func (s *Server) apiListMessages(w http.ResponseWriter, r *http.Request, propertyID int64) {
	u := auth.UserFrom(r.Context())

	messages, err := s.chats.ListForProperty(propertyID, u.ID)
	if err != nil {
		apiError(w, fmt.Sprintf("listing messages: %v", err), http.StatusInternalServerError)
		return
	}

	if err := s.chats.MarkRead(propertyID, u.ID); err != nil {
		apiError(w, fmt.Sprintf("marking read: %v", err), http.StatusInternalServerError)
		return
	}

	if messages == nil {
		messages = make([]*chat.Message, 0)
	}
	apiJSON(w, messages, http.StatusOK)
}

// apiSendMessage posts a message to a property thread. A tenant's
// message goes to the landlord; the landlord must name the tenant.
func (s *Server) apiSendMessage(w http.ResponseWriter, r *http.Request, propertyID int64) {
	u := auth.UserFrom(r.Context())

	var req struct {
		Content    string `json:"content"`
		ReceiverID int64  `json:"receiver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		apiError(w, "message content is required", http.StatusBadRequest)
		return
	}

	if _, err := s.properties.GetByID(propertyID); errors.Is(err, property.ErrNotFound) {
		apiError(w, "property not found", http.StatusNotFound)
		return
	} else if err != nil {
		apiError(w, fmt.Sprintf("loading property: %v", err), http.StatusInternalServerError)
		return
	}

	receiverID := req.ReceiverID
	if !u.IsLandlord() {
		landlord, err := s.users.GetLandlord()
		if errors.Is(err, user.ErrNotFound) {
			apiError(w, "no landlord account", http.StatusConflict)
			return
		}
		if err != nil {
			apiError(w, fmt.Sprintf("loading landlord: %v", err), http.StatusInternalServerError)
			return
		}
		receiverID = landlord.ID
	} else if receiverID == 0 {
		apiError(w, "receiver_id is required", http.StatusBadRequest)
		return
	}

	m, err := s.chats.Send(u.ID, receiverID, propertyID, strings.TrimSpace(req.Content))
	if err != nil {
		apiError(w, fmt.Sprintf("sending message: %v", err), http.StatusInternalServerError)
		return
	}

	apiJSON(w, m, http.StatusCreated)
}
