package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/lakshb/ai-chat-relay/internal/handler/chat"
	userHandler "github.com/lakshb/ai-chat-relay/internal/handler/user"
	middlewarePkg "github.com/lakshb/ai-chat-relay/internal/middleware"
	"github.com/lakshb/ai-chat-relay/internal/realtime/local"
	"github.com/lakshb/ai-chat-relay/internal/service/conversation"
	"github.com/lakshb/ai-chat-relay/internal/service/registration"
	"github.com/lakshb/ai-chat-relay/internal/store"
	"github.com/lakshb/ai-chat-relay/pkg/utils"
)

// NewRouter wires HTTP routes to core services. conv may be nil when the
// completion capability is disabled; hub is non-nil only when the in-process
// realtime provider is active.
func NewRouter(reg *registration.Service, conv *conversation.Service, st store.Store, hub *local.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Server is running!"))
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "Server is awake.",
		})
	})

	userHandler.New(reg).RegisterRoutes(r)
	chatHandler.New(conv, st).RegisterRoutes(r)

	// Websocket delivery only exists for the in-process provider; the hosted
	// provider delivers through its own edge.
	if hub != nil {
		r.Get("/ws/{channel}", hub.HandleWS)
	}

	return r
}
