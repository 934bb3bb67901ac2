package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/dto"
	"market-khabri/internal/khabri/service"
	"market-khabri/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisHandler handles HTTP requests for result dates and analyses.
type AnalysisHandler struct {
	dates    service.DateDiscoveryService
	pipeline service.PipelineService
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(dates service.DateDiscoveryService, pipeline service.PipelineService, logger *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{dates: dates, pipeline: pipeline, logger: logger}
}

// RegisterRoutes registers the analysis routes to the Echo group.
func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/upcoming-results", h.GetUpcomingResults)
	g.POST("/analyze/:symbol", h.AnalyzeCompany)
	g.GET("/latest-results", h.GetLatestResults)
}

// GetUpcomingResults godoc
// @Summary List upcoming result dates
// @Description Upcoming quarterly result announcements, earliest first
// @Tags results
// @Produce  json
// @Param   limit  query    int false    "Maximum number of events" default(20)
// @Success 200 {array} entity.ResultEvent
// @Failure 400 {object} dto.ErrorResponse
// @Router /upcoming-results [get]
func (h *AnalysisHandler) GetUpcomingResults(c echo.Context) error {
	limit, err := queryLimit(c, service.DefaultUpcomingLimit)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
	}
	return c.JSON(http.StatusOK, h.dates.ListUpcoming(c.Request().Context(), limit))
}

// AnalyzeCompany godoc
// @Summary Analyse a company's latest results
// @Description Fetch, parse and analyse the latest quarterly results for a symbol
// @Tags results
// @Produce  json
// @Param   symbol  path    string true    "Exchange symbol"
// @Success 200 {object} entity.AnalysisRecord
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /analyze/{symbol} [post]
func (h *AnalysisHandler) AnalyzeCompany(c echo.Context) error {
	symbol := entity.NormalizeSymbol(c.Param("symbol"))

	record, err := h.pipeline.Run(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: fmt.Sprintf("No results found for %s", symbol)})
		}
		h.logger.Error("Analysis failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: fmt.Sprintf("Analysis failed: %s", err.Error())})
	}
	return c.JSON(http.StatusOK, record)
}

// GetLatestResults godoc
// @Summary List recently analysed results
// @Tags results
// @Produce  json
// @Param   limit  query    int false    "Maximum number of records" default(10)
// @Success 200 {array} entity.AnalysisRecord
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /latest-results [get]
func (h *AnalysisHandler) GetLatestResults(c echo.Context) error {
	limit, err := queryLimit(c, service.DefaultLatestLimit)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
	}

	records, err := h.pipeline.Latest(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get latest results", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: fmt.Sprintf("Error fetching results: %s", err.Error())})
	}
	return c.JSON(http.StatusOK, records)
}

func queryLimit(c echo.Context, def int) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return limit, nil
}
