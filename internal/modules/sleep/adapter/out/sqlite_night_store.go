package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sleeptrack/internal/modules/sleep/domain"
	apperrors "sleeptrack/internal/platform/errors"

	_ "modernc.org/sqlite"
)

type SQLiteNightStore struct {
	db *sql.DB
}

func NewSQLiteNightStore(dbPath string) (*SQLiteNightStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers; one connection keeps the tracker and quality screens from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	store := &SQLiteNightStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteNightStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS nights (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  start_time_milli INTEGER NOT NULL,
  end_time_milli INTEGER NOT NULL,
  quality INTEGER NOT NULL DEFAULT -1
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create nights table: %w", err)
	}
	return nil
}

func (s *SQLiteNightStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteNightStore) Latest(ctx context.Context) (domain.Night, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, start_time_milli, end_time_milli, quality
FROM nights
ORDER BY id DESC
LIMIT 1;
`)
	night, err := scanNight(row)
	if err != nil {
		return domain.Night{}, fmt.Errorf("latest night: %w", err)
	}
	return night, nil
}

func (s *SQLiteNightStore) FindByID(ctx context.Context, id int64) (domain.Night, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, start_time_milli, end_time_milli, quality
FROM nights
WHERE id = ?;
`, id)
	night, err := scanNight(row)
	if err != nil {
		return domain.Night{}, fmt.Errorf("find night %d: %w", id, err)
	}
	return night, nil
}

func (s *SQLiteNightStore) List(ctx context.Context) ([]domain.Night, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, start_time_milli, end_time_milli, quality
FROM nights
ORDER BY id DESC;
`)
	if err != nil {
		return nil, fmt.Errorf("list nights: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Night, 0)
	for rows.Next() {
		night, err := scanNight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan night: %w", err)
		}
		out = append(out, night)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nights: %w", err)
	}
	return out, nil
}

func (s *SQLiteNightStore) Insert(ctx context.Context, night domain.Night) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO nights (start_time_milli, end_time_milli, quality)
VALUES (?, ?, ?);
`, night.StartTime.UnixMilli(), night.EndTime.UnixMilli(), night.Quality)
	if err != nil {
		return 0, fmt.Errorf("insert night: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert night id: %w", err)
	}
	return id, nil
}

func (s *SQLiteNightStore) Update(ctx context.Context, night domain.Night) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE nights
SET start_time_milli = ?, end_time_milli = ?, quality = ?
WHERE id = ?;
`, night.StartTime.UnixMilli(), night.EndTime.UnixMilli(), night.Quality, night.ID)
	if err != nil {
		return fmt.Errorf("update night %d: %w", night.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update night %d: %w", night.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update night %d: %w", night.ID, apperrors.ErrNotFound)
	}
	return nil
}

func (s *SQLiteNightStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM nights`); err != nil {
		return fmt.Errorf("clear nights: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNight(row rowScanner) (domain.Night, error) {
	var (
		night      domain.Night
		start, end int64
	)
	if err := row.Scan(&night.ID, &start, &end, &night.Quality); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Night{}, apperrors.ErrNotFound
		}
		return domain.Night{}, err
	}
	night.StartTime = time.UnixMilli(start).UTC()
	night.EndTime = time.UnixMilli(end).UTC()
	return night, nil
}
