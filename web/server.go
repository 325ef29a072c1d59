// Package web binds the lottery core to its HTTP boundary: session cookies,
// the admin panel API and the participant-facing draw endpoints.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"lottery/config"
	"lottery/metrics"
	"lottery/service"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Server serves the lottery HTTP API
type Server struct {
	cfg     *config.Config
	lottery service.LotteryService
	admin   service.AdminService
	router  *mux.Router
}

// NewServer creates the HTTP server and registers all routes
func NewServer(cfg *config.Config, lottery service.LotteryService, admin service.AdminService) *Server {
	s := &Server{
		cfg:     cfg,
		lottery: lottery,
		admin:   admin,
	}
	s.routes()
	return s
}

// Router exposes the configured router, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(metricsMiddleware, loggingMiddleware)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	lot := api.PathPrefix("/lottery").Subrouter()
	lot.HandleFunc("/join", s.handleJoin).Methods(http.MethodPost)
	lot.HandleFunc("/draw", s.handleDraw).Methods(http.MethodPost)
	lot.HandleFunc("/deal", s.handleDeal).Methods(http.MethodPost)
	lot.HandleFunc("/pick", s.handlePick).Methods(http.MethodPost)
	lot.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	lot.HandleFunc("/config", s.handleLotteryConfig).Methods(http.MethodGet)

	lotAdmin := lot.PathPrefix("/admin").Subrouter()
	lotAdmin.Use(s.requireAdmin)
	lotAdmin.HandleFunc("/get-prob", s.handleGetProb).Methods(http.MethodGet)
	lotAdmin.HandleFunc("/set-prob", s.handleSetProb).Methods(http.MethodPost)

	adm := api.PathPrefix("/admin").Subrouter()
	adm.HandleFunc("/login", s.handleAdminLogin).Methods(http.MethodPost)
	adm.HandleFunc("/logout", s.handleAdminLogout).Methods(http.MethodPost)
	adm.HandleFunc("/me", s.handleAdminMe).Methods(http.MethodGet)

	guarded := adm.NewRoute().Subrouter()
	guarded.Use(s.requireAdmin)
	guarded.HandleFunc("/participants", s.handleAdminParticipants).Methods(http.MethodGet)
	guarded.HandleFunc("/export", s.handleAdminExport).Methods(http.MethodGet)
	guarded.HandleFunc("/set-state", s.handleAdminSetState).Methods(http.MethodPost)
	guarded.HandleFunc("/set-window", s.handleAdminSetWindow).Methods(http.MethodPost)
	guarded.HandleFunc("/reset-user", s.handleAdminResetUser).Methods(http.MethodPost)
	guarded.HandleFunc("/reset-all", s.handleAdminResetAll).Methods(http.MethodPost)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":  true,
		"ts":  time.Now().UnixMilli(),
		"env": s.cfg.Environment,
	})
}

// Start runs the HTTP server until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.cfg.ListenAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}
