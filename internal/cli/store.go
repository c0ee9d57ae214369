// filepath: internal/cli/store.go
package cli

import (
	"context"
	"fmt"

	"streamdb/internal/config"
	"streamdb/internal/repository"
	"streamdb/internal/repository/mongo"
	"streamdb/internal/repository/sqlite"

	"github.com/sirupsen/logrus"
)

// openStore connects to the configured database engine.
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (repository.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		log.Infof("Using SQLite database at %s", cfg.Database.Path)
		return sqlite.New(cfg.Database.Path, cfg.Database.Name, log)
	case config.DriverMongo:
		log.WithField("database", cfg.Database.Name).Info("Connecting to MongoDB")
		return mongo.Connect(ctx, cfg.Database.MongoURI(), cfg.Database.Name, cfg.ConnectTimeout, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func closeStore(store repository.Store, log *logrus.Logger) {
	if err := store.Close(context.Background()); err != nil {
		log.Warnf("Failed to close database connection: %v", err)
	}
}
