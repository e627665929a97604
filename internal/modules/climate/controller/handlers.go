package controller

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/service"
	"climate-server/internal/modules/climate/types"
	"climate-server/internal/modules/climate/views"
	"climate-server/internal/utils"
)

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := views.IndexData{}
	for _, rt := range apiRoutes {
		data.Routes = append(data.Routes, views.RouteLine{Path: rt.Path, Description: rt.Description})
	}

	bounds, err := c.service.GetDateBounds(r.Context())
	switch {
	case err == nil:
		data.FirstDate, data.LastDate = bounds.First, bounds.Last
	case errors.Is(err, repository.ErrNoData):
	default:
		// the index is still useful without the coverage line
		slog.Warn("index: get date bounds failed", "error", err)
	}

	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, &data); err != nil {
		slog.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("index: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	totals, err := c.service.GetPrecipitation(r.Context())
	if err != nil {
		slog.Error("precipitation: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load precipitation")
		return
	}
	utils.WriteJSON(w, http.StatusOK, totals)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.GetStations(r.Context())
	if err != nil {
		slog.Error("stations: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load stations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTemperatureObservations(w http.ResponseWriter, r *http.Request) {
	observations, err := c.service.GetTemperatureObservations(r.Context())
	if err != nil {
		slog.Error("tobs: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature observations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, observations)
}

func (c *climateControllerImpl) handleSummaryFrom(w http.ResponseWriter, r *http.Request) {
	c.writeSummary(w, r, r.PathValue("start"), nil)
}

func (c *climateControllerImpl) handleSummaryBetween(w http.ResponseWriter, r *http.Request) {
	end := r.PathValue("end")
	c.writeSummary(w, r, r.PathValue("start"), &end)
}

func (c *climateControllerImpl) writeSummary(w http.ResponseWriter, r *http.Request, start string, end *string) {
	summary, err := c.service.GetTemperatureSummary(r.Context(), start, end)
	if err != nil {
		endValue := ""
		if end != nil {
			endValue = *end
		}
		var dateErr *service.DateError
		if errors.As(err, &dateErr) {
			slog.Debug("summary: rejected dates", "start", start, "end", endValue, "reason", err)
			utils.WriteError(w, http.StatusBadRequest, dateErr.Error())
			return
		}
		slog.Error("summary: query failed", "start", start, "end", endValue, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature summary")
		return
	}
	utils.WriteJSON(w, http.StatusOK, []types.TemperatureSummary{summary})
}
