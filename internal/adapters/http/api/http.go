// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	service "github.com/okian/daonpick/internal/app"
	"github.com/okian/daonpick/internal/domain/game"
	"github.com/okian/daonpick/internal/domain/ranking"
	"github.com/okian/daonpick/pkg/logger"
)

const (
	defaultTopN        = ranking.DefaultTopN
	defaultMaxTopLimit = 100
)

// SessionProvider resolves visitor sessions.
type SessionProvider interface {
	Session(ctx context.Context, id string) (*service.Session, bool)
}

// CatalogReader exposes the published catalog.
type CatalogReader interface {
	Catalog() *service.Snapshot
	Top(n int) []ranking.Ranked
	Badges(k int) []string
	Lookup(code string) service.LookupResult
	Refresh(ctx context.Context) (*service.Snapshot, error)
}

// Interactions covers per-session clicks, wishlist and game.
type Interactions interface {
	Browse(sess *service.Session, category string, visible int) service.Page
	More(sess *service.Session) service.Page
	RecordClick(ctx context.Context, sess *service.Session, code, clickID string) (string, bool, error)
	ToggleWishlist(ctx context.Context, sess *service.Session, code string) (bool, error)
	GameState(sess *service.Session) game.State
	GamePick(sess *service.Session, i int) (game.State, error)
	GameReveal(sess *service.Session) (game.State, error)
	GameReset(sess *service.Session) game.State
}

// Dependencies required by HTTP handlers. The catalog service satisfies it.
type Dependencies interface {
	SessionProvider
	CatalogReader
	Interactions
	StatsProvider
}

// Option configures the Server.
type Option func(*Server)

// WithTopLimits sets the default and the maximum of the top list size.
func WithTopLimits(def, maxLimit int) Option {
	return func(s *Server) {
		if def > 0 {
			s.topN = def
		}
		if maxLimit > 0 {
			s.maxTop = maxLimit
		}
	}
}

// WithAdminToken guards the admin routes with a bearer token.
func WithAdminToken(token string) Option {
	return func(s *Server) { s.adminToken = token }
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) { s.secure = secure }
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the catalog API.
type Server struct {
	deps   Dependencies
	topN   int
	maxTop int
	secure bool
	logger logger.Logger

	adminToken string

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		topN:          defaultTopN,
		maxTop:        defaultMaxTopLimit,
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(middleware.RequestID, middleware.Recoverer, MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.With(AdminAuth(s.adminToken)).Post("/admin/refresh", s.handleRefresh)

	r.Route("/catalog", func(r chi.Router) {
		r.Use(SessionMiddleware(s.deps, s.secure))
		r.Get("/", s.handleCatalog)
		r.Post("/more", s.handleMore)
		r.Get("/top", s.handleTop)
		r.Get("/categories", s.handleCategories)
		r.Get("/nav", s.handleNav)
		r.Get("/badges", s.handleBadges)
	})
	r.Get("/lookup/{code}", s.handleLookup)

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(s.deps, s.secure))
		r.Get("/go/{code}", s.handleGo)
		r.Post("/click/{code}", s.handleClick)

		r.Route("/me", func(r chi.Router) {
			r.Get("/wishlist", s.handleWishlist)
			r.Post("/wishlist/{code}", s.handleToggleWishlist)
			r.Delete("/wishlist", s.handleClearWishlist)
			r.Get("/recent", s.handleRecent)
			r.Delete("/recent", s.handleClearRecent)
		})

		r.Route("/game", func(r chi.Router) {
			r.Get("/", s.handleGame)
			r.Post("/pick/{index}", s.handleGamePick)
			r.Post("/reveal", s.handleGameReveal)
			r.Post("/reset", s.handleGameReset)
		})
	})
}

// Handler returns a router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// intParam parses an optional non-negative integer query parameter.
// A missing value returns def.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ErrBadRequest
	}
	return n, nil
}

func session(w http.ResponseWriter, r *http.Request, op string) (*service.Session, bool) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrInternal))
	}
	return sess, ok
}
