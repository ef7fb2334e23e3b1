// Package database connects to MongoDB.
//
// It handles:
//   - building the client from config (pool size, timeouts, app name)
//   - command monitoring: slow command warnings and, in local env, a debug log of every command
//   - optional New Relic instrumentation (nrmongo)
//   - index bootstrap for the collections the service owns
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/deppfellow/event-scheduler/internal/config"
	loggerConfig "github.com/deppfellow/event-scheduler/internal/logger"
	"github.com/newrelic/go-agent/v3/integrations/nrmongo"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DatabasePingTimeout is how long, in seconds, start-up waits for the first ping.
const DatabasePingTimeout = 10

// Database wraps the MongoDB client and the service database handle.
type Database struct {
	Client *mongo.Client
	DB     *mongo.Database

	operationTimeout time.Duration
	log              *zerolog.Logger
}

// commandLogger logs finished commands. Commands slower than slowThreshold are
// always logged as warnings; every other command only when verbose is set.
type commandLogger struct {
	log           zerolog.Logger
	slowThreshold time.Duration
	verbose       bool

	mu      sync.Mutex
	started map[int64]string
}

func newCommandLogger(log zerolog.Logger, slowThreshold time.Duration, verbose bool) *commandLogger {
	return &commandLogger{
		log:           log,
		slowThreshold: slowThreshold,
		verbose:       verbose,
		started:       make(map[int64]string),
	}
}

func (cl *commandLogger) monitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(_ context.Context, evt *event.CommandStartedEvent) {
			if !cl.verbose {
				return
			}
			cl.mu.Lock()
			cl.started[evt.RequestID] = evt.Command.String()
			cl.mu.Unlock()
		},
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			cl.finished(evt.CommandFinishedEvent, nil)
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			cl.finished(evt.CommandFinishedEvent, errors.New(evt.Failure))
		},
	}
}

func (cl *commandLogger) finished(evt event.CommandFinishedEvent, failure error) {
	var command string
	if cl.verbose {
		cl.mu.Lock()
		command = cl.started[evt.RequestID]
		delete(cl.started, evt.RequestID)
		cl.mu.Unlock()
	}

	var e *zerolog.Event
	switch {
	case failure != nil:
		e = cl.log.Error().Err(failure)
	case cl.slowThreshold > 0 && evt.Duration > cl.slowThreshold:
		e = cl.log.Warn().Bool("slow", true)
	case cl.verbose:
		e = cl.log.Debug()
	default:
		return
	}

	if command != "" {
		e = e.Str("command", command)
	}

	e.Str("command_name", evt.CommandName).
		Str("database", evt.DatabaseName).
		Int64("request_id", evt.RequestID).
		Dur("duration", evt.Duration).
		Msg("mongodb command")
}

// New connects to MongoDB and pings the primary so start-up fails fast when the
// database is unreachable.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	cmdLogger := newCommandLogger(
		loggerConfig.NewDatabaseLogger(*logger),
		cfg.Observability.Logging.SlowQueryThreshold,
		cfg.Primary.Env == "local",
	)

	monitor := cmdLogger.monitor()
	if loggerService != nil && loggerService.GetApplication() != nil {
		// nrmongo wraps our monitor and adds datastore segments to the transaction.
		monitor = nrmongo.NewCommandMonitor(monitor)
	}

	clientOpts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetAppName(config.ServiceName).
		SetMaxPoolSize(cfg.Database.MaxPoolSize).
		SetConnectTimeout(cfg.Database.ConnectTimeout).
		SetMonitor(monitor)

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Str("database", cfg.Database.Name).
		Msg("connected to the database")

	return &Database{
		Client:           client,
		DB:               client.Database(cfg.Database.Name),
		operationTimeout: cfg.Database.OperationTimeout,
		log:              logger,
	}, nil
}

// WithTimeout derives the context used for a single database operation.
// The request deadline still wins when it is shorter.
func (db *Database) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.operationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, db.operationTimeout)
}

// Ping checks the primary is reachable. Used by the health endpoint.
func (db *Database) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

func (db *Database) Close(ctx context.Context) error {
	db.log.Info().Msg("closing database connection")
	return db.Client.Disconnect(ctx)
}
