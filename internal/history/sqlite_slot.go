package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const (
	driverName   = "sqlite"
	gooseDialect = "sqlite3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// OpenSQLite opens the database at path and applies the embedded migrations.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, "file:"+path+"?cache=shared&mode=rwc")
	if err != nil {
		return nil, err
	}
	// one writer keeps sqlite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(gooseDialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// SQLiteSlot keeps slots as rows of the history_slots table.
type SQLiteSlot struct {
	DB  *sql.DB
	log zerolog.Logger
}

func NewSQLiteSlot(db *sql.DB, logger zerolog.Logger) *SQLiteSlot {
	logger = logger.With().Str("component", "SQLiteSlot").Logger()
	return &SQLiteSlot{DB: db, log: logger}
}

func (s *SQLiteSlot) Read(ctx context.Context, key string) (string, error) {
	var value string
	err := s.DB.QueryRowContext(ctx,
		`SELECT value FROM history_slots WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSlotEmpty
	}
	if err != nil {
		s.log.Error().Err(err).Ctx(ctx).Str("key", key).Msg("failed to query slot")
		return "", err
	}
	return value, nil
}

func (s *SQLiteSlot) Write(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO history_slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		s.log.Error().Err(err).Ctx(ctx).Str("key", key).Msg("failed to upsert slot")
		return err
	}
	return nil
}
