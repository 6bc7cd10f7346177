package store

import (
	"fmt"

	"github.com/labextract-server/internal/domain"
)

// Open builds the store selected by cfg.Driver. The "none" driver returns a nil Store and
// callers skip persistence. postgresURL overrides cfg.PostgresURL when non-empty.
func Open(cfg domain.StoreConfig, postgresURL string) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "postgres":
		if postgresURL == "" {
			postgresURL = cfg.PostgresURL
		}
		return NewPostgresStoreFromURL(postgresURL)
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
