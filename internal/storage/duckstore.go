package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
)

// DuckOptions tunes the DuckDB connection.
type DuckOptions struct {
	Threads     int
	MemoryLimit string
	Logger      *slog.Logger
}

// DuckStore stores file records in a DuckDB database file.
type DuckStore struct {
	db     *sql.DB
	dbPath string
	logger *slog.Logger
}

var _ RecordStore = (*DuckStore)(nil)

// NewDuckStore opens (or creates) the database at dbPath and ensures the
// records table exists.
func NewDuckStore(ctx context.Context, dbPath string, opts DuckOptions) (*DuckStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	var pragmas []string
	if opts.MemoryLimit != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit))
	}
	if opts.Threads > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", opts.Threads))
	}
	pragmas = append(pragmas, "PRAGMA enable_progress_bar=false")

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("executing %q: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS arquivos (
			id           VARCHAR PRIMARY KEY,
			nome         VARCHAR NOT NULL,
			formato      VARCHAR NOT NULL,
			tamanho      BIGINT NOT NULL,
			data_criacao TIMESTAMP NOT NULL,
			amostra      VARCHAR NOT NULL,
			resumo       VARCHAR NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Info("record store ready", "path", dbPath)
	return &DuckStore{db: db, dbPath: dbPath, logger: logger}, nil
}

// Save inserts rec. Ids must be unique.
func (s *DuckStore) Save(ctx context.Context, rec *models.FileRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO arquivos (id, nome, formato, tamanho, data_criacao, amostra, resumo)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Metadata.Name,
		string(rec.Metadata.Format),
		rec.Metadata.SizeBytes,
		rec.Metadata.CreatedAt.UTC(),
		string(rec.Sample),
		string(rec.Summary),
	)
	if err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.ID, err)
	}
	return nil
}

const selectRecord = `SELECT id, nome, formato, tamanho, data_criacao, amostra, resumo FROM arquivos`

// Get returns the record with the given id, or ErrNotFound.
func (s *DuckStore) Get(ctx context.Context, id string) (*models.FileRecord, error) {
	row := s.db.QueryRowContext(ctx, selectRecord+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying record %s: %w", id, err)
	}
	return rec, nil
}

// List returns up to limit records, newest first.
func (s *DuckStore) List(ctx context.Context, limit int) ([]*models.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectRecord+` ORDER BY data_criacao DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.FileRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes the record with the given id, or returns ErrNotFound.
func (s *DuckStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM arquivos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close closes the database. The file is kept.
func (s *DuckStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.FileRecord, error) {
	var (
		rec       models.FileRecord
		format    string
		createdAt time.Time
		sample    string
		summary   string
	)
	err := row.Scan(&rec.ID, &rec.Metadata.Name, &format, &rec.Metadata.SizeBytes, &createdAt, &sample, &summary)
	if err != nil {
		return nil, err
	}
	rec.Metadata.Format = models.FormatTag(format)
	rec.Metadata.CreatedAt = createdAt.UTC()
	rec.Sample = models.ContentSample(sample)
	rec.Summary = []byte(summary)
	return &rec, nil
}
