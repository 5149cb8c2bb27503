package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/orangery/ams/shared/config"
	"github.com/orangery/ams/shared/logger"
	sharedpg "github.com/orangery/ams/shared/storage/pg"
)

//go:embed migrations/init.sql
var schema string

const queryTimeout = 5 * time.Second

type Storage struct {
	db *sql.DB
}

func New(ctx context.Context, cfg config.Pg) (*Storage, error) {
	log := logger.Component("storage")
	log.Info("connecting to db", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.Dbname)
	db, err := sharedpg.Connect(ctx, cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	s := &Storage{db: db}
	if cfg.ApplySchema {
		if err := s.ApplySchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("schema applied")
	}
	log.Info("successfully connected to db")
	return s, nil
}

// ApplySchema runs the idempotent init script.
func (s *Storage) ApplySchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

func (s *Storage) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return sharedpg.WithTx(ctx, s.db, fn)
}

// scope bounds a single storage call. Callers' deadlines win when shorter.
func scope(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}
