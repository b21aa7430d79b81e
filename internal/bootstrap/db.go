package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/y4d-ngo/beneficiary-portal/config"
	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
	"github.com/y4d-ngo/beneficiary-portal/internal/storage/memdb"
	"github.com/y4d-ngo/beneficiary-portal/internal/storage/mongo"
	"github.com/y4d-ngo/beneficiary-portal/internal/storage/postgres"
)

type StoreOptions struct {
	ConnectTO time.Duration
}

// OpenStore connects the entity store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config, opt StoreOptions, logger *slog.Logger) (domain.Store, error) {
	if opt.ConnectTO == 0 {
		opt.ConnectTO = 10 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, opt.ConnectTO)
	defer cancel()

	switch cfg.Store.Driver {
	case config.StoreMongo:
		s, err := mongo.Connect(cctx, cfg.Store.MongoURI, cfg.Store.MongoDB, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("entity store connected", "driver", cfg.Store.Driver, "database", cfg.Store.MongoDB)
		return s, nil

	case config.StorePostgres:
		db, err := postgres.NewConnection(cctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		s := postgres.NewStore(db)
		if err := s.Migrate(cctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db migrate: %w", err)
		}
		logger.Info("entity store connected", "driver", cfg.Store.Driver, "database", cfg.Database.Name)
		return s, nil

	case config.StoreMemory:
		s, err := memdb.New()
		if err != nil {
			return nil, err
		}
		logger.Warn("using in-memory entity store; data is lost on restart")
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
