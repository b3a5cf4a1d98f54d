package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lakshb/ai-chat-relay/internal/service/registration"
	"github.com/lakshb/ai-chat-relay/pkg/utils"
)

// Handler serves user registration.
type Handler struct {
	reg *registration.Service
}

// New creates the registration handler.
func New(reg *registration.Service) *Handler {
	return &Handler{reg: reg}
}

// RegisterRoutes mounts registration routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register-user", h.handleRegister)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	registered, err := h.reg.Register(r.Context(), payload.Name, payload.Email)
	if err != nil {
		if errors.Is(err, registration.ErrMissingFields) {
			utils.RespondError(w, http.StatusBadRequest, "name and email are required")
			return
		}
		log.Printf("[register] %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, registered)
}
