package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/types"
)

// trailingWindowDays is the length of the "last year of data" window, counted back
// from the most recent measurement rather than from today.
const trailingWindowDays = 365

const (
	formatMsgSingle = "Invalid date format. Date must be represented as: 'YYYY-MM-DD'."
	formatMsgRange  = "Invalid date format. Dates must be represented as: 'YYYY-MM-DD'."
	rangeMsgSingle  = "Invalid date entered. Date must be between %s and %s"
	rangeMsgRange   = "Invalid date entered. Both dates must be between %s and %s"
	noDataMsg       = "Invalid date entered. No measurements are available"
)

type Service struct {
	repository repository.ClimateRepository
	logger     *slog.Logger
}

func NewService(repository repository.ClimateRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repository: repository, logger: logger}
}

// GetDateBounds returns the dataset's first and last dates; repository.ErrNoData
// passes through for an empty dataset.
func (s *Service) GetDateBounds(ctx context.Context) (types.DateBounds, error) {
	bounds, err := s.repository.GetDateBounds(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoData) {
			return types.DateBounds{}, err
		}
		return types.DateBounds{}, storeErr("date bounds", err)
	}
	return bounds, nil
}

// GetPrecipitation returns per-date precipitation totals for the trailing year.
func (s *Service) GetPrecipitation(ctx context.Context) ([]types.DailyPrecipitation, error) {
	since, ok, err := s.windowStart(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []types.DailyPrecipitation{}, nil
	}
	out, err := s.repository.GetPrecipitationSince(ctx, since)
	if err != nil {
		return nil, storeErr("precipitation", err)
	}
	return out, nil
}

func (s *Service) GetStations(ctx context.Context) ([]types.Station, error) {
	out, err := s.repository.GetStations(ctx)
	if err != nil {
		return nil, storeErr("stations", err)
	}
	return out, nil
}

// GetTemperatureObservations returns the trailing year of observations for the
// station with the most measurements.
func (s *Service) GetTemperatureObservations(ctx context.Context) ([]types.TemperatureObservation, error) {
	since, ok, err := s.windowStart(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []types.TemperatureObservation{}, nil
	}

	active, err := s.repository.GetMostActiveStation(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoData) {
			return []types.TemperatureObservation{}, nil
		}
		return nil, storeErr("most active station", err)
	}
	s.logger.Debug("most active station", "station", active.Station, "observations", active.Count)

	out, err := s.repository.GetTemperatureObservations(ctx, active.Station, since)
	if err != nil {
		return nil, storeErr("temperature observations", err)
	}
	return out, nil
}

// GetTemperatureSummary computes min/avg/max tobs from start, up to end when
// given or to the last recorded date otherwise. Format failures are reported
// before the store is touched.
func (s *Service) GetTemperatureSummary(ctx context.Context, start string, end *string) (types.TemperatureSummary, error) {
	formatMsg, rangeMsg := formatMsgSingle, rangeMsgSingle
	if end != nil {
		formatMsg, rangeMsg = formatMsgRange, rangeMsgRange
	}

	if _, err := ParseDate(start); err != nil {
		return types.TemperatureSummary{}, newDateError(ErrInvalidFormat, formatMsg)
	}
	if end != nil {
		if _, err := ParseDate(*end); err != nil {
			return types.TemperatureSummary{}, newDateError(ErrInvalidFormat, formatMsg)
		}
	}

	bounds, err := s.GetDateBounds(ctx)
	if errors.Is(err, repository.ErrNoData) {
		return types.TemperatureSummary{}, newDateError(ErrOutOfRange, noDataMsg)
	}
	if err != nil {
		return types.TemperatureSummary{}, err
	}

	if !within(start, bounds) || (end != nil && !within(*end, bounds)) {
		return types.TemperatureSummary{}, newDateError(ErrOutOfRange, fmt.Sprintf(rangeMsg, bounds.First, bounds.Last))
	}

	agg, err := s.repository.GetTemperatureSummary(ctx, start, end)
	if err != nil {
		return types.TemperatureSummary{}, storeErr("temperature summary", err)
	}

	endDate := bounds.Last
	if end != nil {
		endDate = *end
	}
	return types.TemperatureSummary{
		StartDate: start,
		EndDate:   endDate,
		Min:       agg.Min,
		Avg:       agg.Avg,
		Max:       agg.Max,
	}, nil
}

// windowStart returns the first date of the trailing year window. ok is false
// when the dataset is empty.
func (s *Service) windowStart(ctx context.Context) (since string, ok bool, err error) {
	bounds, err := s.GetDateBounds(ctx)
	if errors.Is(err, repository.ErrNoData) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	last, err := ParseDate(bounds.Last)
	if err != nil {
		return "", false, storeErr("date bounds", fmt.Errorf("stored date %q: %w", bounds.Last, err))
	}
	return last.AddDate(0, 0, -trailingWindowDays).Format(DateLayout), true, nil
}

// within relies on YYYY-MM-DD strings ordering like the dates they name.
func within(date string, b types.DateBounds) bool {
	return date >= b.First && date <= b.Last
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
