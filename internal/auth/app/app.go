package app

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/authcore/internal/auth/oidc"
	"github.com/aussiebroadwan/authcore/internal/auth/service"
	"github.com/aussiebroadwan/authcore/internal/auth/store"
	"github.com/aussiebroadwan/authcore/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/authcore/pkg/jwtx"
	"github.com/aussiebroadwan/authcore/pkg/slogx"
	"github.com/aussiebroadwan/authcore/pkg/totpx"
)

// Application wires the authentication core together: store, token codec,
// the orchestrator services, and the housekeeping worker. The transport layer
// sits outside this module and talks to the exported services.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *jwtx.Codec

	Auth         *service.AuthService
	OTP          *service.OTPService
	OIDC         *service.OIDCService
	Register     *service.RegisterService
	Tokens       *service.TokenService
	Housekeeping *service.HousekeepingService
}

// New builds an Application from config: opens the database, applies
// migrations, and wires the services. Federation is wired only when the OIDC
// settings are complete.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authcore",
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.codec = jwtx.NewCodec(cfg.Issuer,
		[]byte(cfg.AccessSecret),
		[]byte(cfg.RefreshSecret))

	app.initServices()
	return app, nil
}

// Run starts the housekeeping worker and blocks until an interrupt or
// termination signal arrives, then shuts down.
func (app *Application) Run() error {
	app.Housekeeping.Start()
	app.logger.Info("authcore started", "oidc_enabled", app.cfg.OIDC.Enabled())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	app.logger.Info("shutdown signal received", "signal", sig)

	return app.Shutdown()
}

// Shutdown stops the housekeeping worker and closes the database.
func (app *Application) Shutdown() error {
	app.Housekeeping.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("authcore stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied")
	return nil
}

func (app *Application) initServices() {
	app.Tokens = &service.TokenService{
		Codec: app.codec,
		Store: app.db,
	}

	app.Auth = &service.AuthService{
		Store:  app.db,
		Codec:  app.codec,
		Tokens: app.Tokens,
	}

	app.OTP = &service.OTPService{
		Store:  app.db,
		TOTP:   totpx.Engine{Issuer: app.cfg.Issuer},
		Tokens: app.Tokens,
	}

	app.Register = &service.RegisterService{Store: app.db}

	app.OIDC = &service.OIDCService{
		Store:  app.db,
		Tokens: app.Tokens,
	}
	if app.cfg.OIDC.Enabled() {
		app.OIDC.Client = oidc.NewClient(oidc.Config{
			ClientID:         app.cfg.OIDC.ClientID,
			ClientSecret:     app.cfg.OIDC.ClientSecret,
			Issuer:           app.cfg.OIDC.Issuer,
			IntrospectionURL: app.cfg.OIDC.IntrospectionURL,
			UserInfoURL:      app.cfg.OIDC.UserInfoURL,
			KeyID:            app.cfg.OIDC.KeyID,
		}, nil)
	} else {
		app.logger.Warn("oidc provider not configured, federation disabled")
	}

	app.Housekeeping = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		jwtx.DefaultRefreshTokenTTL,
	)
}
