package ledger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/smartspend-dev/smartspend/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore keeps all ledgers in one SQLite database. Rows hold the same
// four text columns as the CSV ledger and go through the same validation
// on load.
type SQLiteStore struct {
	db *sql.DB
	options
}

// NewSQLiteStore opens (and migrates) the database at dbPath.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, storageError("creating db directory", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, storageError("opening sqlite database", err)
	}
	// SQLite has a single writer; one connection keeps appends ordered
	// without SQLITE_BUSY retries.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storageError("pinging database", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, storageError("running migrations", err)
	}

	return &SQLiteStore{db: db, options: newOptions(opts)}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, userID string, kind model.Kind, category string, amount decimal.Decimal) (model.Record, error) {
	if err := ValidateUserID(userID); err != nil {
		return model.Record{}, err
	}
	rec, err := newRecord(s.now(), kind, category, amount)
	if err != nil {
		return model.Record{}, err
	}

	row := MarshalRecord(rec)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, created_at, type, category, amount) VALUES (?, ?, ?, ?, ?)`,
		userID, row[colTimestamp], row[colType], row[colCategory], row[colAmount])
	if err != nil {
		return model.Record{}, storageError("inserting record", err)
	}

	s.log.Debug().Str("user", userID).Str("type", string(rec.Kind)).Str("amount", rec.Amount.String()).Msg("record appended")
	return rec, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, userID string) ([]model.Record, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, type, category, amount FROM transactions WHERE user_id = ? ORDER BY id`,
		userID)
	if err != nil {
		return nil, storageError("querying records", err)
	}
	defer rows.Close()

	skip := s.skipper(userID)
	var records []model.Record
	for rows.Next() {
		var id int
		row := make([]string, numFields)
		if err := rows.Scan(&id, &row[colTimestamp], &row[colType], &row[colCategory], &row[colAmount]); err != nil {
			return nil, storageError("scanning record", err)
		}
		rec, err := UnmarshalRecord(row)
		if err != nil {
			skip(id, err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating records", err)
	}
	return records, nil
}

func runMigrations(dbPath string) error {
	// A separate connection keeps migrate from closing the store's handle.
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
