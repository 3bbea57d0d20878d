package app

import (
	"fmt"
	"log/slog"

	"github.com/crowdspire/orgcore/internal/orgcore/notify"
	"github.com/crowdspire/orgcore/internal/orgcore/service"
	"github.com/crowdspire/orgcore/internal/orgcore/store"
	"github.com/crowdspire/orgcore/internal/orgcore/store/drivers/sqlite"
	"github.com/crowdspire/orgcore/pkg/slogx"
)

// Application bundles the authorization core's dependencies. The embedding
// transport owns request handling; it calls the services directly and maps
// the service error kinds to its own status codes.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	dispatcher notify.Dispatcher
	amqp       *notify.AMQPDispatcher // nil when the log dispatcher is in use

	Memberships   *service.MembershipService
	Invites       *service.InviteService
	Organizations *service.OrganizationService
	Members       *service.MemberService
	Projects      *service.ProjectService
	Users         *service.UserService
	Recovery      *service.RecoveryService
}

// New builds an Application: logger, migrated store, dispatcher, services.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Options{
			Service: "orgcore",
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	db, err := sqlite.NewStore(cfg.DatabaseFile, sqlite.WithTxTimeout(cfg.TxTimeout))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	app.db = db

	if cfg.AMQPURL != "" {
		amqp, err := notify.NewAMQPDispatcher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("amqp dispatcher: %w", err)
		}
		app.amqp = amqp
		app.dispatcher = amqp
	} else {
		app.dispatcher = notify.LogDispatcher{}
	}

	app.Memberships = &service.MembershipService{Store: app.db}
	app.Invites = &service.InviteService{Store: app.db, Dispatcher: app.dispatcher}
	app.Organizations = &service.OrganizationService{Store: app.db}
	app.Members = &service.MemberService{Store: app.db}
	app.Projects = &service.ProjectService{Store: app.db}
	app.Users = &service.UserService{Store: app.db}
	app.Recovery = &service.RecoveryService{
		Store:      app.db,
		Dispatcher: app.dispatcher,
		TTL:        cfg.RecoveryTTL,
	}

	app.logger.Info("orgcore initialized", slog.String("database", cfg.DatabaseFile))
	return app, nil
}

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// Store exposes the underlying store, mainly for operational commands.
func (app *Application) Store() store.Store { return app.db }

// Close releases the store and, when configured, the AMQP connection.
func (app *Application) Close() error {
	if app.amqp != nil {
		_ = app.amqp.Close()
	}
	return app.db.Close()
}
