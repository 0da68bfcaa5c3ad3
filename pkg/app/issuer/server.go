// Package issuer implements app.Runner for the issuance service process.
package issuer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/chainsafe/crosschain-issuer/pkg/app"
	apperrors "github.com/chainsafe/crosschain-issuer/pkg/app/errors"
	apphttp "github.com/chainsafe/crosschain-issuer/pkg/app/http"
	"github.com/chainsafe/crosschain-issuer/pkg/auth"
	"github.com/chainsafe/crosschain-issuer/pkg/config"
	"github.com/chainsafe/crosschain-issuer/pkg/issuance"
	issuanceservice "github.com/chainsafe/crosschain-issuer/pkg/issuance/service"
	"github.com/chainsafe/crosschain-issuer/pkg/issuancestore"
	"github.com/chainsafe/crosschain-issuer/pkg/pgutil"
	tokenservice "github.com/chainsafe/crosschain-issuer/pkg/token/service"
)

const (
	defaultRequestTimeout = 60 * time.Second
	readyTimeout          = 5 * time.Second
)

// Server holds cfg to init the issuance service.
type Server struct {
	cfg *config.Config
}

var _ app.Runner = (*Server)(nil)

// NewServer initializes a new issuance service.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Run serves the API until SIGINT or SIGTERM.
func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("issuer config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting issuance service",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("main_chain", cfg.MainChain.Name),
		zap.String("side_chain", cfg.SideChain.Name),
	)

	comps, err := NewComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	store, db, err := s.openStore(logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	recorder := issuanceservice.NewEventRecorder(store, logger)
	orchestrator, err := comps.Orchestrator(issuance.Observers{issuance.NewLogObserver(logger), recorder})
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}

	manager := issuanceservice.NewManager(orchestrator, store,
		issuanceservice.WithLogger(logger),
		issuanceservice.WithMaxConcurrent(cfg.Issuance.MaxConcurrentRuns),
	)
	if _, err := manager.RecoverInterrupted(ctx); err != nil {
		return fmt.Errorf("recover interrupted runs: %w", err)
	}

	protect, err := s.authMiddleware(logger)
	if err != nil {
		return err
	}

	router := s.setupRouter(comps, issuanceservice.NewLog(manager, logger), protect, logger)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// In-flight runs record their cancellation before the store closes.
	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if cerr := manager.Close(closeCtx); cerr != nil {
		logger.Warn("issuances still running at shutdown", zap.Error(cerr))
	}

	return err
}

func (s *Server) openStore(logger *zap.Logger) (issuancestore.Store, *bun.DB, error) {
	if !s.cfg.Database.Enabled() {
		logger.Warn("No database configured, run history is kept in memory")
		return issuancestore.NewMemoryStore(), nil, nil
	}
	db, err := pgutil.ConnectDB(&s.cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("host", s.cfg.Database.Host),
		zap.String("database", s.cfg.Database.Database),
	)
	return issuancestore.NewStore(db), db, nil
}

func (s *Server) authMiddleware(logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	if !s.cfg.Auth.Enabled() {
		logger.Warn("auth.jwt_secret not set, write endpoints are unprotected")
		return nil, nil
	}
	v, err := auth.NewJWTValidator(s.cfg.Auth.JWTSecret, s.cfg.Auth.Issuer, s.cfg.Auth.Leeway)
	if err != nil {
		return nil, fmt.Errorf("create jwt validator: %w", err)
	}
	return auth.Middleware(v), nil
}

type readiness interface {
	Ready(ctx context.Context) error
}

func (s *Server) setupRouter(
	comps *Components,
	issuances issuanceservice.Service,
	protect func(http.Handler) http.Handler,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/ready", readyHandler(comps, logger))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		issuanceservice.RegisterRoutes(r, issuances, protect, logger)
		tokenservice.RegisterRoutes(r, comps.Tokens, protect, logger)
	})

	return r
}

func readyHandler(check readiness, logger *zap.Logger) http.HandlerFunc {
	return apphttp.HandleErrorWithLogger(func(w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := check.Ready(ctx); err != nil {
			logger.Warn("readiness check failed", zap.Error(err))
			return apperrors.UnavailableError(err, "ledger nodes unreachable")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
		return nil
	}, logger)
}
