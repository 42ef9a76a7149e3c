package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"libdb.so/hserve"
)

type uSession interface {
	StartSession(ctx context.Context, mode entity.Mode) (*entity.Snapshot, error)
	GetSession(ctx context.Context, id string) (*entity.Snapshot, error)
	PlayMove(ctx context.Context, id string, index int) (*entity.Snapshot, error)
	JumpTo(ctx context.Context, id string, position int) (*entity.Snapshot, error)
	Restart(ctx context.Context, id string) (*entity.Snapshot, error)
	BackToMenu(ctx context.Context, id string) error
}

type Server struct {
	logger   *slog.Logger
	uSession uSession

	metrics        http.Handler
	allowedOrigins []string
}

func New(logger *slog.Logger, uSession uSession, metrics http.Handler, allowedOrigins []string) *Server {
	return &Server{
		logger:   logger.With("component", "rest"),
		uSession: uSession,

		metrics:        metrics,
		allowedOrigins: allowedOrigins,
	}
}

// Handler builds the router.
func (that *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(that.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: that.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/ping", that.ping)
	if that.metrics != nil {
		r.Method(http.MethodGet, "/metrics", that.metrics)
	}

	r.Post("/sessions", that.createSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", that.getSession)
		r.Delete("/", that.backToMenu)
		r.Post("/moves", that.playMove)
		r.Post("/jump", that.jumpTo)
		r.Post("/restart", that.restart)
	})

	return r
}

// Start - serves the API until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	if err := hserve.ListenAndServe(ctx, ":"+port, that.Handler()); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		that.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
