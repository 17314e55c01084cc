// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

// Package web exposes the account and schedule operations as a JSON HTTP API.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/schedule"
)

// Config wires the API handler.
type Config struct {
	Auth     *auth.Service
	Admin    *auth.AdminService
	Sessions *auth.SessionIssuer
	Schedule *schedule.Service
	Signups  *schedule.SignupService

	// Observer receives one observation per request. Optional.
	Observer RequestObserver
	// CORSOrigins are glob patterns of browser origins allowed to call the
	// API. Empty disables cross-origin access.
	CORSOrigins []string
	Logger      *slog.Logger
}

type api struct {
	auth     *auth.Service
	admin    *auth.AdminService
	schedule *schedule.Service
	signups  *schedule.SignupService
	logger   *slog.Logger
}

// NewHandler builds the API router.
func NewHandler(cfg Config) (http.Handler, error) {
	switch {
	case cfg.Auth == nil:
		return nil, oops.Errorf("auth service is required")
	case cfg.Admin == nil:
		return nil, oops.Errorf("admin service is required")
	case cfg.Sessions == nil:
		return nil, oops.Errorf("session issuer is required")
	case cfg.Schedule == nil:
		return nil, oops.Errorf("schedule service is required")
	case cfg.Signups == nil:
		return nil, oops.Errorf("signup service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	corsMW, err := corsHandler(cfg.CORSOrigins)
	if err != nil {
		return nil, err
	}

	a := &api{
		auth:     cfg.Auth,
		admin:    cfg.Admin,
		schedule: cfg.Schedule,
		signups:  cfg.Signups,
		logger:   logger,
	}
	session := requireSession(cfg.Sessions, logger)
	admin := requireAdmin(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(instrument(cfg.Observer, logger))
	r.Use(recoverer(logger))
	r.Use(corsMW)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found", Code: "ROUTE_NOT_FOUND"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed", Code: "METHOD_NOT_ALLOWED"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", a.register)
		r.Get("/verify-email", a.verifyEmail)
		r.Post("/resend-verification", a.resendVerification)
		r.Post("/login", a.login)
		r.Post("/forgot-password", a.forgotPassword)
		r.Post("/reset-password", a.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(session)
			r.Get("/me", a.me)
			r.Post("/change-password", a.changePassword)
			r.Patch("/profile", a.updateProfile)
			r.Delete("/account", a.deleteAccount)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/users", a.listUsers)
				r.Patch("/users/{id}", a.editUser)
				r.Delete("/users/{id}", a.deleteUser)
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(session)
		r.Get("/venues", a.listVenues)
		r.Get("/games", a.listGames)
		r.Get("/my-signup", a.mySignup)
		r.Post("/games/{id}/signup", a.signup)
		r.Delete("/games/{id}/signup", a.removeSignup)
		r.Get("/games/{id}/signups", a.listSignups)
		r.Get("/standings", a.standings)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/venues", a.createVenue)
			r.Patch("/venues/{id}", a.updateVenue)
			r.Delete("/venues/{id}", a.deleteVenue)
			r.Post("/games", a.createGame)
			r.Patch("/games/{id}", a.updateGame)
			r.Delete("/games/{id}", a.deleteGame)
		})
	})

	return r, nil
}

// Server serves the API on a TCP listener.
type Server struct {
	addr       string
	handler    http.Handler
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
	logger     *slog.Logger
}

// NewServer creates a server for handler on addr ("host:port").
func NewServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{addr: addr, handler: handler, logger: logger}
}

// Start begins serving. The returned channel receives a serve error, if
// any, and is closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("API_LISTEN_FAILED").With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}
	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
