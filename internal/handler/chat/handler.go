package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/lakshb/ai-chat-relay/internal/model/chat"
	"github.com/lakshb/ai-chat-relay/internal/service/conversation"
	"github.com/lakshb/ai-chat-relay/internal/store"
	"github.com/lakshb/ai-chat-relay/pkg/utils"
)

// Handler serves the conversation endpoints. conv may be nil when the
// completion capability is not configured; /chat then answers 503 while the
// history endpoint keeps working.
type Handler struct {
	conv  *conversation.Service
	store store.Store
}

// New creates the chat handler.
func New(conv *conversation.Service, st store.Store) *Handler {
	return &Handler{conv: conv, store: st}
}

// RegisterRoutes mounts the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/get-messages", h.handleGetMessages)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.conv == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "chat unavailable")
		return
	}

	var payload struct {
		UserID  string `json:"userId"`
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.conv.Converse(r.Context(), payload.UserID, payload.Message)
	if err != nil {
		switch {
		case errors.Is(err, conversation.ErrMissingFields):
			utils.RespondError(w, http.StatusBadRequest, "user id and message are required")
		case errors.Is(err, conversation.ErrUserNotFound):
			utils.RespondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, conversation.ErrUserNotRegistered):
			utils.RespondError(w, http.StatusNotFound, "user not registered, please register first")
		default:
			log.Printf("[chat] %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (h *Handler) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := strings.TrimSpace(payload.UserID)
	if userID == "" {
		utils.RespondError(w, http.StatusBadRequest, "user id is required")
		return
	}

	messages, err := h.store.ListExchanges(r.Context(), userID)
	if err != nil {
		log.Printf("[get-messages] %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if messages == nil {
		messages = []chatModel.Exchange{}
	}

	utils.RespondJSON(w, http.StatusOK, map[string][]chatModel.Exchange{"messages": messages})
}
