package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnshRaj112/socialapp-backend/internal/config"
	"github.com/AnshRaj112/socialapp-backend/internal/database"
	"github.com/AnshRaj112/socialapp-backend/internal/handlers"
	"github.com/AnshRaj112/socialapp-backend/internal/middleware"
	"github.com/AnshRaj112/socialapp-backend/internal/routes"
	"github.com/AnshRaj112/socialapp-backend/internal/services"
	"github.com/AnshRaj112/socialapp-backend/internal/storage"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"github.com/AnshRaj112/socialapp-backend/internal/store/memstore"
	"github.com/AnshRaj112/socialapp-backend/internal/store/mongostore"
	"github.com/AnshRaj112/socialapp-backend/internal/store/pgstore"
)

const otpPurgeInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// backends holds the drivers picked by configuration.
type backends struct {
	store    store.Store
	otps     services.OTPStore
	sessions services.SessionStore
	assets   storage.AssetStore
	mailer   services.Mailer
	// expiring is set when OTPs live in PostgreSQL and need purging.
	expiring *pgstore.OTPStore
	closers  []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func connect(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backends, error) {
	b := &backends{}
	ok := false
	defer func() {
		if !ok {
			b.close()
		}
	}()

	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory stores; data is lost on restart")
		b.store = memstore.New()
		b.otps = memstore.NewOTPs()
		b.sessions = memstore.NewSessions()
	} else {
		mdb, err := database.ConnectMongo(ctx, cfg.MongoURI, log)
		if err != nil {
			return nil, err
		}
		ms := mongostore.New(mdb, cfg.MongoTransactions)
		b.closers = append(b.closers, func() { _ = ms.Close(context.Background()) })
		if err := ms.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		b.store = ms

		db, err := database.ConnectPostgres(ctx, cfg.PostgresURI, log)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = db.Close() })
		if err := pgstore.ApplyMigrations(db); err != nil {
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		otps := pgstore.NewOTPStore(db)
		b.otps = otps
		b.expiring = otps

		rdb, err := database.ConnectRedis(ctx, cfg.RedisURI, log)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = rdb.Close() })
		b.sessions = services.NewRedisSessions(rdb)
	}

	switch cfg.AssetDriver {
	case "cloudinary":
		c, err := storage.NewCloudinary(cfg.Cloudinary)
		if err != nil {
			return nil, fmt.Errorf("cloudinary: %w", err)
		}
		b.assets = c
	case "minio":
		m, err := storage.NewMinio(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		if err := m.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("minio bucket: %w", err)
		}
		b.assets = m
	default:
		log.Warn("using in-memory asset store")
		b.assets = storage.NewMemory()
	}
	log.Info("asset store ready", zap.String("driver", cfg.AssetDriver))

	if cfg.SMTP.Enabled() {
		b.mailer = services.NewSMTPMailer(cfg.SMTP)
	} else {
		log.Warn("SMTP not configured; verification mails are only logged")
		b.mailer = services.NewLogMailer(log)
	}

	ok = true
	return b, nil
}

// purgeOTPs deletes expired verification codes until ctx is done.
func purgeOTPs(ctx context.Context, otps *pgstore.OTPStore, log *zap.Logger) {
	ticker := time.NewTicker(otpPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := otps.PurgeExpired(ctx, now)
			if err != nil {
				log.Warn("failed to purge expired otps", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("purged expired otps", zap.Int64("count", n))
			}
		}
	}
}

func newRouter(cfg *config.Config, b *backends, log *zap.Logger) http.Handler {
	engine := services.NewEngine(b.store, b.assets, log, services.EngineOptions{OwnershipStrict: cfg.OwnershipStrict})
	otp := services.NewOTPService(b.otps, b.mailer, cfg.OTPTTL, log)
	gate := services.NewGate(cfg.JWTSecret, cfg.TokenTTL, b.sessions, b.store.Users())
	auth := services.NewAuthService(b.store, b.assets, otp, gate, engine, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
	} else {
		r.Use(middleware.SecurityHeaders)
	}

	routes.SetupRoutes(r, routes.Deps{
		Auth: handlers.NewAuthHandler(auth, engine, handlers.CookieConfig{
			Secure: cfg.IsProduction(),
			Domain: cfg.CookieDomain,
			TTL:    cfg.TokenTTL,
		}, log),
		Posts: handlers.NewPostsHandler(engine, log),
		Gate:  gate,
		Ping:  b.store.Ping,
	})
	return r
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	b, err := connect(connectCtx, cfg, log)
	cancel()
	if err != nil {
		log.Error("failed to connect backends", zap.Error(err))
		return err
	}
	defer b.close()
	if b.expiring != nil {
		go purgeOTPs(ctx, b.expiring, log)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, b, log),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Environment),
			zap.String("store", cfg.StoreDriver),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
