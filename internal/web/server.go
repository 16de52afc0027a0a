package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/camuig/gold-ledger/internal/ai"
	"github.com/camuig/gold-ledger/internal/auth"
	"github.com/camuig/gold-ledger/internal/config"
	"github.com/camuig/gold-ledger/internal/feeds"
	"github.com/camuig/gold-ledger/internal/logger"
	"github.com/camuig/gold-ledger/internal/position"
	"github.com/camuig/gold-ledger/internal/price"
	"github.com/camuig/gold-ledger/internal/records"
)

type PriceResolver interface {
	Resolve(ctx context.Context) price.PricePoint
}

type NewsSource interface {
	GoldNews(ctx context.Context) feeds.NewsResult
}

type BriefWriter interface {
	Enabled() bool
	Brief(ctx context.Context, req *ai.BriefRequest) (*ai.Brief, error)
}

// Deps are the services the HTTP API fronts.
type Deps struct {
	Resolver  PriceResolver
	Records   *records.Service
	Positions *position.Service
	Auth      *auth.Service
	Directory records.Directory
	News      NewsSource
	Brief     BriefWriter
}

type Server struct {
	httpServer *http.Server
	deps       Deps
	config     *config.Config
	logger     *logger.Logger
}

func NewServer(deps Deps, cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		deps:   deps,
		config: cfg,
		logger: log,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2*cfg.DeepSeekTimeout() + 10*time.Second,
	}

	return s
}

// Handler builds the route table. Literal segments such as /summary take
// precedence over the {id} wildcard.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/gold-records/price", s.handlePrice)
	mux.Handle("POST /api/gold-records", s.authed(s.handleCreateRecord))
	mux.Handle("GET /api/gold-records", s.authed(s.handleListRecords))
	mux.Handle("GET /api/gold-records/summary", s.authed(s.handleSummary))
	mux.Handle("GET /api/gold-records/{id}", s.authed(s.handleGetRecord))
	mux.Handle("PUT /api/gold-records/{id}", s.authed(s.handleUpdateRecord))
	mux.Handle("DELETE /api/gold-records/{id}", s.authed(s.handleDeleteRecord))

	mux.HandleFunc("POST /api/users/register", s.handleRegister)
	mux.HandleFunc("POST /api/users/login", s.handleLogin)
	mux.Handle("GET /api/users/profile", s.authed(s.handleProfile))

	mux.Handle("GET /api/admin/users", s.admin(s.handleAdminUsers))
	mux.Handle("GET /api/admin/users/{id}/records", s.admin(s.handleAdminUserRecords))

	mux.HandleFunc("GET /api/market/news", s.handleNews)
	mux.HandleFunc("GET /api/market/brief", s.handleBrief)

	return s.recoverer(mux)
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.config.Web.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
