package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
)

// Open returns the ContactStore selected by the configuration and checks that its database can
// be reached.
func Open(ctx context.Context, cfg *config.Config) (ContactStore, error) {
	var s ContactStore
	switch cfg.DBDriver {
	case "mongo":
		mongoStore, err := NewMongoStore(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		s = mongoStore
	case "mysql":
		sqlDB, err := OpenMySQL(cfg.DBHost, cfg.DBUser, cfg.DBPwd, cfg.DBName)
		if err != nil {
			return nil, err
		}
		mysqlStore, err := NewMySQLStore(sqlDB)
		if err != nil {
			return nil, errors.Join(err, sqlDB.Close())
		}
		s = mysqlStore
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		return nil, errors.Join(fmt.Errorf("error reaching %s database: %w", cfg.DBDriver, err), s.Close(ctx))
	}
	return s, nil
}
