package sqlite

import (
	"context"
	"database/sql"
	"formintake/core"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-based store.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	tableStmt := `
	CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		data BLOB,
		updated_at DATETIME
	);`
	if _, err = db.Exec(tableStmt); err != nil {
		log.Fatalf("failed to create snapshots table: %v", err)
	}

	return &sqliteStore{db}
}

func (s *sqliteStore) Load(ctx context.Context, key string) ([]byte, error) {
	log := logrus.WithField("snapshot_key", key)
	log.Debug("Loading snapshot")

	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM snapshots WHERE key = ?", key).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Debug("Snapshot key has never been written")
			return nil, core.ErrNotFound
		}
		log.WithError(err).Error("Failed to load snapshot")
		return nil, err
	}
	return data, nil
}

func (s *sqliteStore) Save(ctx context.Context, key string, data []byte) error {
	log := logrus.WithFields(logrus.Fields{
		"snapshot_key": key,
		"data_length":  len(data),
	})

	stmt := `
	INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at;`
	if _, err := s.db.ExecContext(ctx, stmt, key, data, time.Now()); err != nil {
		log.WithError(err).Error("Failed to save snapshot")
		return err
	}
	log.Debug("Snapshot saved")
	return nil
}
