package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/rxtech-lab/lrs-signal/internal/logger"
	"github.com/rxtech-lab/lrs-signal/internal/types"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBStore keeps price series snapshots as Parquet files, written and read through DuckDB.
// Files are named TICKER_<lookback>y_<YYYY-MM-DD>.parquet; saving a new snapshot removes
// older snapshots of the same ticker and lookback.
type DuckDBStore struct {
	dir    string
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBStore creates a snapshot store rooted at dir, creating the directory if needed.
func NewDuckDBStore(dir string, log *logger.Logger) (*DuckDBStore, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "snapshot directory is required")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeSnapshotFailed, err, "failed to create snapshot directory %s", dir)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &DuckDBStore{
		dir:    dir,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Path returns the snapshot file for ticker, lookback and day.
func (s *DuckDBStore) Path(ticker string, lookbackYears int, day time.Time) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%dy_%s.parquet",
		strings.ToUpper(ticker), lookbackYears, day.Format(types.DateLayout)))
}

// Save writes series to a new Parquet snapshot and returns its path.
func (s *DuckDBStore) Save(ticker string, lookbackYears int, day time.Time, series types.PriceSeries) (outputPath string, err error) {
	outputPath = s.Path(ticker, lookbackYears, day)

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSnapshotFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE price_data (
			id TEXT,
			symbol TEXT,
			time TIMESTAMP,
			close DOUBLE
		)
	`)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSnapshotFailed, "failed to create table", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSnapshotFailed, "failed to begin transaction", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO price_data (id, symbol, time, close) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeSnapshotFailed, "failed to prepare statement", err)
	}
	defer stmt.Close()

	symbol := strings.ToUpper(ticker)
	for _, p := range series {
		if _, err = stmt.Exec(uuid.New().String(), symbol, p.Date, p.Close); err != nil {
			tx.Rollback()

			return "", errors.Wrap(errors.ErrCodeSnapshotFailed, "failed to insert data", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", errors.Wrap(errors.ErrCodeSnapshotFailed, "failed to commit transaction", err)
	}

	_, err = db.Exec(fmt.Sprintf(`COPY price_data TO '%s' (FORMAT PARQUET)`, quotePath(outputPath)))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSnapshotFailed, "failed to export to Parquet", err)
	}

	s.prune(ticker, lookbackYears, outputPath)

	return outputPath, nil
}

// Load reads the snapshot for ticker, lookback and day, oldest first.
// A missing snapshot fails with ErrCodeDataNotFound.
func (s *DuckDBStore) Load(ticker string, lookbackYears int, day time.Time) (types.PriceSeries, error) {
	path := s.Path(ticker, lookbackYears, day)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "no snapshot at %s", path)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	query, args, err := s.sq.
		Select("time", "close").
		From(fmt.Sprintf("read_parquet('%s')", quotePath(path))).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query snapshot", err)
	}
	defer rows.Close()

	var series types.PriceSeries

	for rows.Next() {
		var point types.PricePoint
		if err := rows.Scan(&point.Date, &point.Close); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		point.Date = point.Date.UTC()
		series = append(series, point)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read snapshot", err)
	}

	return series, nil
}

// Remove deletes the snapshot for ticker, lookback and day. A missing snapshot is not an error.
func (s *DuckDBStore) Remove(ticker string, lookbackYears int, day time.Time) error {
	path := s.Path(ticker, lookbackYears, day)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(errors.ErrCodeSnapshotFailed, err, "failed to remove snapshot %s", path)
	}

	return nil
}

// prune removes snapshots of the same ticker and lookback other than keep.
func (s *DuckDBStore) prune(ticker string, lookbackYears int, keep string) {
	pattern := filepath.Join(s.dir, fmt.Sprintf("%s_%dy_*.parquet", strings.ToUpper(ticker), lookbackYears))

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}

	for _, match := range matches {
		if match == keep {
			continue
		}

		if err := os.Remove(match); err != nil {
			s.logger.Warn("Failed to remove stale snapshot", zap.String("path", match), zap.Error(err))
		}
	}
}

func quotePath(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
