package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"log/slog"

	"climate-server/internal/modules/climate/types"
)

//go:embed sql/get-date-bounds.sql
var getDateBoundsSQL string

//go:embed sql/get-precipitation.sql
var getPrecipitationSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-most-active-station.sql
var getMostActiveStationSQL string

//go:embed sql/get-temperature-observations.sql
var getTemperatureObservationsSQL string

//go:embed sql/get-temperature-summary.sql
var getTemperatureSummarySQL string

// ErrNoData is returned when the measurements table is empty.
var ErrNoData = errors.New("no measurements recorded")

// ClimateRepository reads the externally maintained measurements and stations
// tables. Dates are passed and returned as YYYY-MM-DD strings, which order
// correctly under plain string comparison.
type ClimateRepository interface {
	GetDateBounds(ctx context.Context) (types.DateBounds, error)
	GetPrecipitationSince(ctx context.Context, since string) ([]types.DailyPrecipitation, error)
	GetStations(ctx context.Context) ([]types.Station, error)
	GetMostActiveStation(ctx context.Context) (types.StationActivity, error)
	GetTemperatureObservations(ctx context.Context, station string, since string) ([]types.TemperatureObservation, error)
	GetTemperatureSummary(ctx context.Context, start string, end *string) (types.TemperatureAggregate, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) GetDateBounds(ctx context.Context) (types.DateBounds, error) {
	var first, last sql.NullString
	if err := r.db.QueryRowContext(ctx, getDateBoundsSQL).Scan(&first, &last); err != nil {
		return types.DateBounds{}, err
	}
	if !first.Valid || !last.Valid {
		return types.DateBounds{}, ErrNoData
	}
	return types.DateBounds{First: first.String, Last: last.String}, nil
}

func (r *repositoryImpl) GetPrecipitationSince(ctx context.Context, since string) ([]types.DailyPrecipitation, error) {
	rows, err := r.db.QueryContext(ctx, getPrecipitationSQL, since)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "precipitation")

	out := make([]types.DailyPrecipitation, 0)
	for rows.Next() {
		var (
			rec   types.DailyPrecipitation
			total sql.NullFloat64
		)
		if err := rows.Scan(&rec.Date, &total); err != nil {
			return nil, err
		}
		rec.Total = nullFloat(total)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetStations(ctx context.Context) ([]types.Station, error) {
	rows, err := r.db.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "stations")

	out := make([]types.Station, 0)
	for rows.Next() {
		var s types.Station
		if err := rows.Scan(&s.ID, &s.Elevation, &s.Latitude, &s.Longitude, &s.Station, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetMostActiveStation(ctx context.Context) (types.StationActivity, error) {
	var a types.StationActivity
	err := r.db.QueryRowContext(ctx, getMostActiveStationSQL).Scan(&a.Station, &a.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StationActivity{}, ErrNoData
	}
	return a, err
}

func (r *repositoryImpl) GetTemperatureObservations(ctx context.Context, station string, since string) ([]types.TemperatureObservation, error) {
	rows, err := r.db.QueryContext(ctx, getTemperatureObservationsSQL, station, since)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "temperature observations")

	out := make([]types.TemperatureObservation, 0)
	for rows.Next() {
		var o types.TemperatureObservation
		if err := rows.Scan(&o.Station, &o.Date, &o.TOBS); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetTemperatureSummary aggregates tobs for date >= start and, when end is not
// nil, date <= end.
func (r *repositoryImpl) GetTemperatureSummary(ctx context.Context, start string, end *string) (types.TemperatureAggregate, error) {
	var upper any
	if end != nil {
		upper = *end
	}
	var lo, avg, hi sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, getTemperatureSummarySQL, start, upper).Scan(&lo, &avg, &hi); err != nil {
		return types.TemperatureAggregate{}, err
	}
	return types.TemperatureAggregate{
		Min: nullFloat(lo),
		Avg: nullFloat(avg),
		Max: nullFloat(hi),
	}, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close "+what+" rows", "error", err)
	}
}
