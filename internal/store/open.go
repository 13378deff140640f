package store

import (
	"fmt"

	"github.com/hpungsan/clarity/internal/config"
	"github.com/hpungsan/clarity/internal/db"
	"github.com/hpungsan/clarity/internal/errors"
)

// Open returns the store selected by cfg.StoreBackend, rooted at baseDir.
func Open(baseDir string, cfg *config.Config) (Store, error) {
	backend := config.BackendSQLite
	if cfg != nil && cfg.StoreBackend != "" {
		backend = cfg.StoreBackend
	}

	switch backend {
	case config.BackendSQLite:
		conn, err := db.Init(baseDir)
		if err != nil {
			return nil, errors.NewStorageUnavailable(err)
		}
		db.ConfigurePool(conn, cfg)
		return NewSQLite(conn), nil
	case config.BackendBolt:
		return OpenBolt(baseDir)
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown store backend %q", backend))
	}
}
