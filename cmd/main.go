package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	eredis "github.com/ecodeclub/ecache/redis"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/okian/trainer/internal/adapters/encyclopedia"
	"github.com/okian/trainer/internal/adapters/geocoder"
	"github.com/okian/trainer/internal/adapters/http/api"
	"github.com/okian/trainer/internal/adapters/http/site"
	"github.com/okian/trainer/internal/adapters/http/swagger"
	"github.com/okian/trainer/internal/adapters/lexicon"
	"github.com/okian/trainer/internal/adapters/lookup"
	"github.com/okian/trainer/internal/adapters/repository"
	"github.com/okian/trainer/internal/adapters/session"
	"github.com/okian/trainer/internal/adapters/thesaurus"
	service "github.com/okian/trainer/internal/app"
	"github.com/okian/trainer/internal/config"
	"github.com/okian/trainer/internal/domain/distractor"
	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/internal/domain/question"
	"github.com/okian/trainer/pkg/logger"
	"github.com/okian/trainer/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	redisPingTimeout  = 2 * time.Second
	secretBytes       = 32
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		// the logger may not be initialized yet
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load(ctx, args)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitWith(out, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	ledger, err := repository.New(ctx, repository.Driver(cfg.DBDriver), cfg.DBDSN,
		repository.WithLogger(log.Named("repository")))
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}

	registry, err := newRegistry(ctx, cfg, log)
	if err != nil {
		_ = ledger.Close()
		return err
	}

	svc := service.New(
		service.WithLogger(log.Named("service")),
		service.WithQuestionSource(registry),
		service.WithSynthesizer(distractor.New()),
		service.WithLedger(ledger),
		service.WithGenerationAttempts(cfg.GenerationAttempts),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithRecentLimit(cfg.RecentResultsLimit),
	)
	if err := svc.Start(ctx); err != nil {
		_ = ledger.Close()
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go metrics.CollectSystem(ctx)

	handler, err := newRouter(ctx, cfg, svc, registry.Domains(), newSessionManager(ctx, cfg, log), log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newRegistry wires every question strategy to its data source.
func newRegistry(ctx context.Context, cfg *config.Config, log logger.Logger) (*question.Registry, error) {
	english, err := lexicon.LoadEnglish(cfg.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	german, err := lexicon.LoadGerman(cfg.GermanWordsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load german words: %w", err)
	}

	opts := []lookup.Option{
		lookup.WithTimeout(cfg.LookupTimeout()),
		lookup.WithUserAgent(cfg.UserAgent),
		lookup.WithLogger(log.Named("lookup")),
	}
	if cache := newLookupCache(ctx, cfg, log); cache != nil {
		opts = append(opts, lookup.WithCache(cache, cfg.LookupCacheTTL()))
	}
	fetcher := lookup.New(opts...)

	return question.NewDefaultRegistry(question.Sources{
		Lexicon:      english,
		GermanWords:  german,
		Thesaurus:    thesaurus.New(fetcher, cfg.ThesaurusURL),
		Encyclopedia: encyclopedia.New(fetcher, cfg.EncyclopediaURL),
		Geocoder:     geocoder.New(fetcher, cfg.GeocoderURL),
	}, question.WithLogger(log.Named("question"))), nil
}

// newLookupCache returns a Redis-backed cache, or nil when Redis is not
// configured or unreachable.
func newLookupCache(ctx context.Context, cfg *config.Config, log logger.Logger) lookup.Cache {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn(ctx, "redis unreachable; lookups are not cached",
			logger.String("redis_addr", cfg.RedisAddr),
			logger.Error(err),
		)
		_ = client.Close()
		return nil
	}
	log.Info(ctx, "lookup cache enabled", logger.String("redis_addr", cfg.RedisAddr))
	return lookup.NewECache(eredis.NewCache(client))
}

func newSessionManager(ctx context.Context, cfg *config.Config, log logger.Logger) *session.Manager {
	secret := cfg.SessionSecret
	if secret == "" {
		buf := make([]byte, secretBytes)
		_, _ = rand.Read(buf)
		secret = hex.EncodeToString(buf)
		log.Warn(ctx, "session_secret not set; sessions will not survive a restart")
	}
	return session.NewManager(secret,
		session.WithTTL(cfg.SessionTTL()),
		session.WithSecureCookie(cfg.SessionCookieSecure),
		session.WithLogger(log.Named("session")),
	)
}

// trainer is everything the HTTP adapters need from the service.
type trainer interface {
	api.Dependencies
	site.Dependencies
}

func newRouter(ctx context.Context, cfg *config.Config, svc trainer, domains []model.Domain, sessions *session.Manager, log logger.Logger) (http.Handler, error) {
	pages, err := site.New(svc,
		site.WithDomains(domains),
		site.WithLocales(cfg.LocaleList()),
		site.WithLogger(log.Named("site")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build pages: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	swagger.Register(ctx, r)

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		pages.Register(ctx, r)
		api.NewServer(svc,
			api.WithCORSOrigins(cfg.CORSOriginList()),
			api.WithLogger(log.Named("api")),
		).Register(ctx, r)
	})
	return r, nil
}
