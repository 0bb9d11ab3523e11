// Package storage elige e inicializa el store de animals según la configuración.
package storage

import (
	"context"
	"fmt"

	"pedigree-tracker/internal/adapters/storage/memory"
	"pedigree-tracker/internal/adapters/storage/migrations"
	"pedigree-tracker/internal/adapters/storage/postgres"
	"pedigree-tracker/internal/adapters/storage/sqlite"
	"pedigree-tracker/internal/config"
	"pedigree-tracker/internal/domain/animals"
	"pedigree-tracker/internal/platform/logger"
)

// Opened es un store listo para usar más su función de cierre.
type Opened struct {
	Repo  animals.Repository
	Close func() error
}

// Open abre el store configurado y, para drivers SQL, aplica migraciones pendientes.
func Open(ctx context.Context, cfg config.Storage, log logger.Logger) (Opened, error) {
	if log == nil {
		log = logger.NewNop()
	}

	switch cfg.Driver {
	case config.DriverMemory, "":
		log.Warn("using in-memory storage, data is lost on restart", nil)
		return Opened{Repo: memory.NewStore(), Close: func() error { return nil }}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return Opened{}, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return Opened{}, err
		}
		n, err := migrations.Up(ctx, sqlDB, migrations.SQLite)
		if err != nil {
			_ = sqlDB.Close()
			return Opened{}, err
		}
		log.Info("storage ready", map[string]any{"driver": "sqlite", "migrations_applied": n})
		return Opened{Repo: sqlite.NewStore(db), Close: sqlDB.Close}, nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return Opened{}, err
		}
		n, err := migrations.Up(ctx, db, migrations.Postgres)
		if err != nil {
			_ = db.Close()
			return Opened{}, err
		}
		log.Info("storage ready", map[string]any{"driver": "postgres", "migrations_applied": n})
		return Opened{Repo: postgres.NewStore(db), Close: db.Close}, nil

	default:
		return Opened{}, fmt.Errorf("storage: unsupported driver %q", cfg.Driver)
	}
}

// Migrate aplica migraciones sin abrir el store (comando `pedigree migrate`).
// Devuelve la versión de esquema resultante.
func Migrate(ctx context.Context, cfg config.Storage) (int64, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return 0, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return 0, err
		}
		defer sqlDB.Close()

		if _, err := migrations.Up(ctx, sqlDB, migrations.SQLite); err != nil {
			return 0, err
		}
		return migrations.Version(ctx, sqlDB, migrations.SQLite)

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return 0, err
		}
		defer db.Close()

		if _, err := migrations.Up(ctx, db, migrations.Postgres); err != nil {
			return 0, err
		}
		return migrations.Version(ctx, db, migrations.Postgres)

	default:
		return 0, fmt.Errorf("storage: driver %q has no migrations", cfg.Driver)
	}
}
