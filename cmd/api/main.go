package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lakshb/ai-chat-relay/internal/config"
	"github.com/lakshb/ai-chat-relay/internal/handler"
	"github.com/lakshb/ai-chat-relay/internal/realtime"
	"github.com/lakshb/ai-chat-relay/internal/realtime/local"
	"github.com/lakshb/ai-chat-relay/internal/realtime/streamchat"
	"github.com/lakshb/ai-chat-relay/internal/service/ai"
	"github.com/lakshb/ai-chat-relay/internal/service/conversation"
	"github.com/lakshb/ai-chat-relay/internal/service/registration"
	"github.com/lakshb/ai-chat-relay/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	// Pick the realtime provider: hosted when credentials exist, otherwise
	// the in-process hub.
	var provider realtime.Provider
	var hub *local.Hub
	if cfg.Stream.Enabled() {
		client, err := streamchat.New(cfg.Stream.APIKey, cfg.Stream.APISecret, cfg.Stream.BaseURL)
		if err != nil {
			log.Fatalf("failed to initialize stream chat client: %v", err)
		}
		provider = client
		log.Println("Stream Chat provider initialized")
	} else {
		hub = local.NewHub()
		provider = hub
		log.Println("Stream credentials not configured, using in-process realtime hub")
	}

	regSvc := registration.NewService(provider, st)

	// The chat endpoint needs the completion model; without credentials the
	// rest of the API still works.
	var convSvc *conversation.Service
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing without chat functionality")
		} else {
			aiSvc, err := ai.NewService(ctx, chatModel)
			if err != nil {
				log.Printf("warning: failed to initialize AI service: %v", err)
				log.Println("continuing without chat functionality")
			} else {
				convSvc = conversation.NewService(provider, st, aiSvc)
				log.Println("AI service initialized successfully")
			}
		}
	} else {
		log.Println("OPENAI_API_KEY not set, chat endpoint disabled")
	}

	router := handler.NewRouter(regSvc, convSvc, st, hub)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("chat relay listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
