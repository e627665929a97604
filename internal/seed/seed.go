// Package seed loads station and measurement CSV exports into the database.
//
// Stations use the columns station,name,latitude,longitude,elevation and
// measurements use station,date,prcp,tobs. Extra columns are ignored and the
// order is taken from the header row. Each file is loaded in one transaction,
// and rows already present (same station, or same station and date) are
// updated in place, so re-running a seed is safe.
package seed

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"climate-server/internal/modules/climate/service"
)

//go:embed sql/upsert-station.sql
var upsertStationSQL string

//go:embed sql/upsert-measurement.sql
var upsertMeasurementSQL string

var (
	stationColumns     = []string{"station", "name", "latitude", "longitude", "elevation"}
	measurementColumns = []string{"station", "date", "prcp", "tobs"}
)

// RowError reports a CSV record that could not be loaded. Line is 1-based and
// counts the header.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// Stations loads a stations CSV and returns the number of rows written.
func Stations(ctx context.Context, db *sql.DB, r io.Reader, logger *slog.Logger) (int, error) {
	return load(ctx, db, r, stationColumns, upsertStationSQL, stationArgs, "stations", logger)
}

// Measurements loads a measurements CSV and returns the number of rows written.
// Stations must be loaded first.
func Measurements(ctx context.Context, db *sql.DB, r io.Reader, logger *slog.Logger) (int, error) {
	return load(ctx, db, r, measurementColumns, upsertMeasurementSQL, measurementArgs, "measurements", logger)
}

type argsFunc func(rec map[string]string) ([]any, error)

func load(ctx context.Context, db *sql.DB, r io.Reader, columns []string, query string, toArgs argsFunc, what string, logger *slog.Logger) (n int, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%s: empty file", what)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: read header: %w", what, err)
	}
	index, err := columnIndex(header, columns)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("seed rollback", "table", what, "error", rbErr)
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("%s: prepare: %w", what, err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			logger.Error("seed statement close", "table", what, "error", closeErr)
		}
	}()

	line := 1
	for {
		record, readErr := cr.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		line++
		if readErr != nil {
			return 0, fmt.Errorf("%s: %w", what, &RowError{Line: line, Err: readErr})
		}

		rec := make(map[string]string, len(columns))
		for name, i := range index {
			rec[name] = strings.TrimSpace(record[i])
		}
		args, argErr := toArgs(rec)
		if argErr != nil {
			return 0, fmt.Errorf("%s: %w", what, &RowError{Line: line, Err: argErr})
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("%s: %w", what, &RowError{Line: line, Err: err})
		}
		n++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", what, err)
	}
	logger.Info("seed loaded", "table", what, "rows", n)
	return n, nil
}

func columnIndex(header []string, columns []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	index := make(map[string]int, len(columns))
	var missing []string
	for _, c := range columns {
		i, ok := pos[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		index[c] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func stationArgs(rec map[string]string) ([]any, error) {
	if rec["station"] == "" {
		return nil, errors.New("station is empty")
	}
	lat, err := parseFloat("latitude", rec["latitude"])
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("longitude", rec["longitude"])
	if err != nil {
		return nil, err
	}
	elev, err := parseFloat("elevation", rec["elevation"])
	if err != nil {
		return nil, err
	}
	return []any{rec["station"], rec["name"], lat, lon, elev}, nil
}

func measurementArgs(rec map[string]string) ([]any, error) {
	if rec["station"] == "" {
		return nil, errors.New("station is empty")
	}
	if _, err := service.ParseDate(rec["date"]); err != nil {
		return nil, fmt.Errorf("date %q: %w", rec["date"], err)
	}

	// Missing rainfall readings are NULL rather than zero.
	var prcp sql.NullFloat64
	if rec["prcp"] != "" {
		v, err := parseFloat("prcp", rec["prcp"])
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("prcp %v is negative", v)
		}
		prcp = sql.NullFloat64{Float64: v, Valid: true}
	}
	tobs, err := parseFloat("tobs", rec["tobs"])
	if err != nil {
		return nil, err
	}
	return []any{rec["station"], rec["date"], prcp, tobs}, nil
}

func parseFloat(column, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", column, s)
	}
	return v, nil
}
