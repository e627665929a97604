package controller

import (
	"context"
	"net/http"

	"climate-server/internal/modules/climate/types"
)

// ClimateService is the query surface the handlers depend on.
type ClimateService interface {
	GetDateBounds(ctx context.Context) (types.DateBounds, error)
	GetPrecipitation(ctx context.Context) ([]types.DailyPrecipitation, error)
	GetStations(ctx context.Context) ([]types.Station, error)
	GetTemperatureObservations(ctx context.Context) ([]types.TemperatureObservation, error)
	GetTemperatureSummary(ctx context.Context, start string, end *string) (types.TemperatureSummary, error)
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service ClimateService
}

func NewClimateController(service ClimateService) ClimateController {
	return &climateControllerImpl{service: service}
}

// Route is one entry of the plain-text index served at "/".
type Route struct {
	Path        string
	Description string
}

// apiRoutes lists the data routes in the order they appear on the index page.
var apiRoutes = []Route{
	{Path: "/api/v1.0/precipitation", Description: "daily precipitation totals for the last year of data"},
	{Path: "/api/v1.0/stations", Description: "all weather stations"},
	{Path: "/api/v1.0/tobs", Description: "last year of temperature observations for the most active station"},
	{Path: "/api/v1.0/<start>", Description: "min/avg/max temperature from <start> (YYYY-MM-DD) to the last recorded date"},
	{Path: "/api/v1.0/<start>/<end>", Description: "min/avg/max temperature from <start> to <end>, inclusive"},
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /api/v1.0/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1.0/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1.0/tobs", c.handleTemperatureObservations)
	mux.HandleFunc("GET /api/v1.0/{start}", c.handleSummaryFrom)
	mux.HandleFunc("GET /api/v1.0/{start}/{end}", c.handleSummaryBetween)
}
