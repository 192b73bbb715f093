package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mirecekd/diktatOR/pkg/observe"
	"github.com/mirecekd/diktatOR/server/ui"
)

type Server struct {
	addr    string
	handler http.Handler
}

func New(addr string, handler *ui.Handler) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Method(http.MethodGet, "/metrics", observe.Handler())

	handler.Attach(r)

	return &Server{
		addr:    addr,
		handler: r,
	}
}

// Handler exposes the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) ListenAndServe() error {
	slog.Info("diktátOR frontend listening", "addr", s.addr)

	server := &http.Server{
		Addr:    s.addr,
		Handler: s.handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
