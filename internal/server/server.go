package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parking-ledger/internal/ledger"
	"parking-ledger/internal/logging"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(port string, session *ledger.Session, serviceName, currencySymbol string) *Server {
	handler := NewHandler(session, serviceName, currencySymbol)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{httpServer: httpServer}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	useMiddleware(r)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/ledger", func(r chi.Router) {
		r.Post("/", handler.CreateLedger)
		r.Get("/fees", handler.GetFees)
		r.Post("/check-in", handler.CheckIn)
		r.Post("/check-out", handler.CheckOut)
		r.Get("/vehicles", handler.ListVehicles)
	})

	return r
}

// useMiddleware installs the middleware chain. Recovery sits inside tracing
// and logging so a recovered panic is recorded on the request span and logged
// as a 500.
func useMiddleware(r chi.Router) {
	r.Use(RequestIDMiddleware)
	r.Use(TracingMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(CORSMiddleware)
}

func (s *Server) Start() error {
	logging.Logger().Info().Str("addr", s.GetAddress()).Msg("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger().Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
