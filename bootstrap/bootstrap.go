// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/starfeed/starfeed/adapters/auth"
	"github.com/starfeed/starfeed/adapters/clock"
	"github.com/starfeed/starfeed/adapters/hasher"
	"github.com/starfeed/starfeed/adapters/idgen"
	"github.com/starfeed/starfeed/adapters/metrics"
	"github.com/starfeed/starfeed/adapters/payment"
	"github.com/starfeed/starfeed/adapters/sqlite"
	"github.com/starfeed/starfeed/app"
	"github.com/starfeed/starfeed/config"
	"github.com/starfeed/starfeed/web"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Holder
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	// Services
	Gate     *app.GateService
	Checkout *app.CheckoutService
	Content  *app.ContentService
	Keys     *app.KeyService
	Users    *app.UserService

	recorder *app.Recorder
}

// New creates and initializes the application from a config file path.
// An empty path falls back to environment-only configuration.
func New(configPath string) (*App, error) {
	var (
		cfg *config.Config
		err error
	)

	logger := setupLogger("info", "json")

	var confHolder *config.Holder
	if configPath != "" {
		confHolder, err = config.NewHolder(configPath, logger)
		if err != nil {
			return nil, err
		}
		cfg = confHolder.Get()
	} else {
		cfg, err = config.LoadFromEnv()
		if err != nil {
			return nil, err
		}
	}

	logger = setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info().Msg("initializing starfeed")

	a := &App{Logger: logger, Config: confHolder}
	if err := a.init(cfg); err != nil {
		a.closePartial()
		return nil, err
	}
	return a, nil
}

func (a *App) init(cfg *config.Config) error {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	a.DB = db
	a.Logger.Info().Str("path", cfg.Database.Path).Msg("database initialized")

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		a.Logger.Info().Msg("prometheus metrics enabled")
	}

	keyStore := sqlite.NewKeyStore(db)
	userStore := sqlite.NewUserStore(db)
	orderStore := sqlite.NewOrderStore(db)
	contentStore := sqlite.NewContentStore(db)

	clk := clock.System{}
	ids := idgen.UUID{}
	bcryptHasher := hasher.NewBcrypt(0)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	gateway, err := payment.New(payment.Config{
		Provider: cfg.Payment.Provider,
		Razorpay: payment.RazorpayConfig{
			KeyID:     cfg.Payment.KeyID,
			KeySecret: cfg.Payment.KeySecret,
		},
		DummySecret: cfg.Payment.DummySecret,
	})
	if err != nil {
		return fmt.Errorf("payment gateway: %w", err)
	}
	a.Logger.Info().Str("provider", gateway.Name()).Msg("payment gateway configured")

	a.recorder = app.NewRecorder(keyStore, a.Logger, a.Metrics, app.RecorderConfig{
		QueueSize:     cfg.Ledger.QueueSize,
		BatchSize:     cfg.Ledger.BatchSize,
		FlushInterval: cfg.Ledger.FlushInterval,
	})

	a.Gate = app.NewGateService(app.GateDeps{
		Keys:     keyStore,
		Recorder: a.recorder,
		Clock:    clk,
		Metrics:  a.Metrics,
		Logger:   a.Logger,
	}, cfg.Auth.KeyPrefix)

	a.Checkout = app.NewCheckoutService(app.CheckoutDeps{
		Orders:  orderStore,
		Keys:    keyStore,
		Gateway: gateway,
		Clock:   clk,
		IDGen:   ids,
		Metrics: a.Metrics,
		Logger:  a.Logger,
	})

	a.Content = app.NewContentService(contentStore, clk, ids)
	a.Keys = app.NewKeyService(keyStore, userStore, clk, a.Logger, cfg.Auth.KeyPrefix)
	a.Users = app.NewUserService(userStore, bcryptHasher, tokens, clk, ids, a.Logger)

	if err := a.seedAdmin(cfg); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	handler := web.NewHandler(web.Deps{
		Gate:     a.Gate,
		Checkout: a.Checkout,
		Content:  a.Content,
		Keys:     a.Keys,
		Users:    a.Users,
		Tokens:   tokens,
		Orders:   orderStore,
		Gateway:  gateway,
		Logger:   a.Logger,
		Metrics:  a.Metrics,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	a.Logger.Info().Str("addr", addr).Msg("http server configured")

	return nil
}

// seedAdmin creates the first-run superadmin account when configured
// and no account with that email exists yet.
func (a *App) seedAdmin(cfg *config.Config) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return nil
	}
	ctx := context.Background()

	userStore := sqlite.NewUserStore(a.DB)
	if _, err := userStore.GetByEmail(ctx, cfg.Admin.Email); err == nil {
		return nil
	}

	u, err := a.Users.Register(ctx, cfg.Admin.Email, "Administrator", cfg.Admin.Password, "superadmin")
	if err != nil {
		return err
	}
	a.Logger.Info().Str("user_id", u.ID).Str("email", u.Email).Msg("superadmin account created")
	return nil
}

// Run starts the server and blocks until interrupt or server error.
func (a *App) Run() error {
	if a.Config != nil {
		if err := a.Config.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config file watch disabled")
		}
		a.Config.WatchSignals()
		a.Config.OnChange(func(_ *config.Config) {
			if a.Metrics != nil {
				a.Metrics.ConfigReloads.Inc()
			}
		})
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.Config != nil {
		a.Config.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	// Flush pending ledger hits before the database closes.
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("ledger recorder close error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func (a *App) closePartial() {
	if a.recorder != nil {
		a.recorder.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func setupLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(lvl).With().Timestamp().Logger()
}
