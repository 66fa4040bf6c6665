package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cartstack/identity/config"
	"github.com/cartstack/identity/internal/db"
	"github.com/cartstack/identity/internal/events"
	"github.com/cartstack/identity/internal/handlers"
	"github.com/cartstack/identity/internal/services"
	"github.com/cartstack/identity/internal/store"
	"github.com/cartstack/identity/internal/uow"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher, err := newPublisher(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	accountRepo := store.NewAccountRepository()
	accountService := services.NewAccountService(accountRepo, eventPublisher(publisher))

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		r.Use(uow.Middleware(dbConn))
		handlers.AuthRouter(r, accountService)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
	}, nil
}

// newPublisher builds the configured event publisher, or nil when account
// event publishing is disabled.
func newPublisher(ctx context.Context, cfg config.EventsConfig) (*events.Publisher, error) {
	switch cfg.Broker {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := events.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		return events.NewPublisher(backend, cfg.Channel), nil
	case "pubsub":
		backend, err := events.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("connect pubsub: %w", err)
		}
		return events.NewPublisher(backend, cfg.Channel), nil
	default:
		return nil, fmt.Errorf("unknown events broker %q", cfg.Broker)
	}
}

// eventPublisher converts the optional publisher to the service interface
// without wrapping a typed nil in a non-nil interface value.
func eventPublisher(publisher *events.Publisher) services.EventPublisher {
	if publisher == nil {
		return nil
	}
	return publisher
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, then releases the event publisher
// and the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	if s.publisher != nil {
		if closeErr := s.publisher.Close(); closeErr != nil {
			log.Printf("server: closing event publisher: %v", closeErr)
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
