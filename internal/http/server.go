// Package http exposes the procedure API over JSON. Each remote
// procedure is one route under /api/; queries are GET with URL
// parameters, mutations are POST with a JSON body.
package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

// Options carries the server's collaborators.
type Options struct {
	Addr               string
	Store              *storage.Store
	Ledger             *services.LedgerService
	Stats              *services.StatsService
	Sessions           *session.Manager
	Logger             *log.Logger
	RateLimitPerMinute int
}

// Server routes procedure calls to the storage and service layers.
type Server struct {
	store    *storage.Store
	ledger   *services.LedgerService
	stats    *services.StatsService
	sessions *session.Manager
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	httpSrv  *http.Server
}

// NewServer wires the routes and middleware chain.
func NewServer(opts Options) *Server {
	s := &Server{
		store:    opts.Store,
		ledger:   opts.Ledger,
		stats:    opts.Stats,
		sessions: opts.Sessions,
		logger:   opts.Logger.WithComponent(log.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}

	s.httpSrv = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler builds the full middleware chain around the procedure mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/auth.me", s.handleAuthMe)
	mux.HandleFunc("POST /api/auth.logout", s.handleAuthLogout)

	mux.HandleFunc("GET /api/categories.list", s.protected(s.handleCategoriesList))
	mux.HandleFunc("POST /api/categories.create", s.protected(s.handleCategoriesCreate))
	mux.HandleFunc("POST /api/categories.update", s.protected(s.handleCategoriesUpdate))
	mux.HandleFunc("POST /api/categories.delete", s.protected(s.handleCategoriesDelete))

	mux.HandleFunc("GET /api/transactions.list", s.protected(s.handleTransactionsList))
	mux.HandleFunc("GET /api/transactions.getById", s.protected(s.handleTransactionsGetByID))
	mux.HandleFunc("POST /api/transactions.create", s.protected(s.handleTransactionsCreate))
	mux.HandleFunc("POST /api/transactions.update", s.protected(s.handleTransactionsUpdate))
	mux.HandleFunc("POST /api/transactions.delete", s.protected(s.handleTransactionsDelete))

	mux.HandleFunc("GET /api/stats.summary", s.protected(s.handleStatsSummary))
	mux.HandleFunc("GET /api/stats.byCategory", s.protected(s.handleStatsByCategory))

	mux.HandleFunc("GET /api/preferences.get", s.protected(s.handlePreferencesGet))
	mux.HandleFunc("POST /api/preferences.update", s.protected(s.handlePreferencesUpdate))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	traceMW := trace.NewMiddleware(extractClientIP)

	var handler http.Handler = mux
	handler = s.sessions.Middleware(handler)
	handler = traceMW.Handler(handler)
	handler = log.Middleware(s.logger)(handler)
	handler = s.limiter.Middleware(extractClientIP)(handler)
	handler = headers.Handler(handler)
	return handler
}

// protected rejects requests without a resolved user before the
// handler runs. The session middleware has already done the lookup.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := session.RequireUser(r.Context()); err != nil {
			writeError(w, r, s.logger, err)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports 503 while storage is unavailable. The process
// still serves traffic in that state; readiness only steers balancers.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.store.Available() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("storage unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops background loops.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.httpSrv.Shutdown(ctx)
}

func extractClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
