package app

import (
	"context"
	"fmt"
	"time"

	"kenolive/internal/config"
	"kenolive/internal/logger"
	"kenolive/internal/repository"
	"kenolive/internal/repository/sqlstore"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// App holds the durable store selected by STORE_DRIVER
type App struct {
	Repos *repository.Repositories
	close func()
}

// Close releases the store connection
func (a *App) Close() {
	if a.close != nil {
		a.close()
	}
}

// Open connects the durable store named by cfg.StoreDriver and prepares its
// schema (Mongo indexes or Postgres migrations)
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := sqlstore.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to Postgres")
		return &App{Repos: sqlstore.New(db), close: func() { sqlDB.Close() }}, nil

	case config.StoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, err
		}
		closeFn := func() { client.Disconnect(context.Background()) }

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			closeFn()
			return nil, fmt.Errorf("ping: %w", err)
		}
		logger.Info("Connected to MongoDB")

		db := client.Database(cfg.MongoDB)
		if err := repository.EnsureIndexes(pingCtx, db); err != nil {
			closeFn()
			return nil, fmt.Errorf("indexes: %w", err)
		}
		return &App{Repos: repository.NewMongo(db), close: closeFn}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
