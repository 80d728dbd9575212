// Package app opens the backends selected by configuration and hands the
// commands the ports they need.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/core/ports"
	"github.com/orderflow/orderflow/internal/core/session"
	"github.com/orderflow/orderflow/internal/infrastructure/config"
	"github.com/orderflow/orderflow/internal/infrastructure/db/mongo"
	"github.com/orderflow/orderflow/internal/infrastructure/db/postgres"
	"github.com/orderflow/orderflow/internal/infrastructure/db/redis"
	"github.com/orderflow/orderflow/internal/infrastructure/http/handlers"
)

// UserCreator seeds accounts. It reports false when the username exists.
type UserCreator interface {
	CreateUser(ctx context.Context, username, password string, role domain.Role) (bool, error)
}

// Stores bundles the opened backends.
type Stores struct {
	Orders    ports.OrderRepository
	Verifier  ports.CredentialVerifier
	Users     UserCreator
	Readiness map[string]handlers.Pinger

	closers []func(context.Context)
}

// Close releases every backend in reverse opening order.
func (s *Stores) Close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i](ctx)
	}
}

// OpenStores connects the order store selected by STORE_BACKEND.
func OpenStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	s := &Stores{Readiness: make(map[string]handlers.Pinger)}

	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) { pool.Close() })

		if cfg.Postgres.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				s.Close(ctx)
				return nil, err
			}
			log.Info().Msg("postgres schema applied")
		}

		s.Orders = postgres.NewOrderRepository(pool)
		s.Verifier = postgres.NewCredentialVerifier(pool)
		s.Users = pgUsers{db: pool}
		s.Readiness["postgres"] = pool

	case config.BackendMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(ctx context.Context) { _ = client.Disconnect(ctx) })

		orders := mongo.NewOrderRepository(db)
		users := mongo.NewUserRepository(db)
		if err := orders.EnsureIndexes(ctx); err != nil {
			s.Close(ctx)
			return nil, err
		}
		if err := users.EnsureIndexes(ctx); err != nil {
			s.Close(ctx)
			return nil, err
		}

		s.Orders = orders
		s.Verifier = users
		s.Users = users
		s.Readiness["mongo"] = mongo.Pinger{DB: db}

	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}

	log.Info().Str("backend", cfg.Backend).Msg("order store connected")
	return s, nil
}

// SessionBackends holds the browser-scoped storage and the form
// submission guard, both backed by the same store.
type SessionBackends struct {
	Storage     ports.SessionStorageFactory
	Submissions ports.SubmissionGuard
}

// OpenSessionStorage returns the browser-scoped storage selected by
// SESSION_STORAGE. A Redis client is registered on s for readiness and
// shutdown.
func OpenSessionStorage(ctx context.Context, cfg *config.Config, s *Stores, log zerolog.Logger) (*SessionBackends, error) {
	if cfg.Session.Storage == config.SessionMemory {
		log.Warn().Msg("sessions kept in process memory")
		return &SessionBackends{
			Storage:     session.NewMemoryStorage(),
			Submissions: session.NewMemoryDedup(0),
		}, nil
	}

	client, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, func(context.Context) { _ = client.Close() })
	s.Readiness["redis"] = redis.Pinger{Client: client}

	return &SessionBackends{
		Storage:     redis.NewSessionStorage(client, cfg.Session.TTL),
		Submissions: redis.NewDedupChecker(client, 0),
	}, nil
}

type pgUsers struct {
	db postgres.PgxIface
}

func (u pgUsers) CreateUser(ctx context.Context, username, password string, role domain.Role) (bool, error) {
	return postgres.CreateUser(ctx, u.db, username, password, role)
}
