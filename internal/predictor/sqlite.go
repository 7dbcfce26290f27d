package predictor

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"PriceForecaster/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore serves network artifacts kept in a SQLite database, keyed by ticker.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the artifact database and ensures the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// WAL mode so the importer can write while runs read.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite model store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS model_artifacts (
		ticker     TEXT PRIMARY KEY,
		artifact   TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	return err
}

// Name identifies the store in logs and errors.
func (s *SQLiteStore) Name() string { return "sqlite:" + s.path }

// Open loads the artifact stored for ticker. A missing row wraps ErrNotFound; a row that
// cannot be decoded does not.
func (s *SQLiteStore) Open(ctx context.Context, ticker string) (Model, error) {
	var artifact string
	err := s.db.QueryRowContext(ctx,
		`SELECT artifact FROM model_artifacts WHERE ticker = ?`, ticker).Scan(&artifact)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w in %s: %w", ticker, ErrNotFound, s.path, model.ErrModelUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: query %s: %v: %w", ticker, s.path, err, model.ErrModelUnavailable)
	}
	n, err := DecodeNetwork([]byte(artifact))
	if err != nil {
		return nil, fmt.Errorf("%s: load from %s: %v: %w", ticker, s.path, err, model.ErrModelUnavailable)
	}
	return n, nil
}

// Import stores (or replaces) the artifact for ticker. It is used by the import-model command.
func (s *SQLiteStore) Import(ctx context.Context, ticker string, n *Network) error {
	if err := ValidateTicker(ticker); err != nil {
		return err
	}
	if err := n.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal network: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO model_artifacts (ticker, artifact, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET artifact = excluded.artifact, updated_at = excluded.updated_at`,
		ticker, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("import %s: %w", ticker, err)
	}
	log.Printf("[INFO] imported model artifact for %s into %s", ticker, s.path)
	return nil
}

// Tickers lists the tickers with a stored artifact.
func (s *SQLiteStore) Tickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker FROM model_artifacts ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite model store")
	return s.db.Close()
}
