package http

import (
	"net/http"
	"time"

	"market-khabri/internal/khabri/dto"

	"github.com/labstack/echo/v4"
)

// HealthHandler serves liveness and the service banner.
type HealthHandler struct {
	agents map[string]string
	now    func() time.Time
}

// NewHealthHandler creates a new HealthHandler reporting the given stage states.
func NewHealthHandler(agents map[string]string) *HealthHandler {
	return &HealthHandler{agents: agents, now: time.Now}
}

// RegisterRoutes registers /health on the API group and the banner on the root.
func (h *HealthHandler) RegisterRoutes(e *echo.Echo, g *echo.Group) {
	e.GET("/", h.Root)
	g.GET("/health", h.Health)
}

// Root godoc
// @Summary Service banner
// @Produce  json
// @Success 200 {object} dto.RootResponse
// @Router / [get]
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.RootResponse{
		Message: "Market Khabri API - Your Personal Stock Market Intelligence",
		Status:  "running",
		Endpoints: map[string]string{
			"upcoming_results": "/api/upcoming-results",
			"analyze_company":  "/api/analyze/{symbol}",
			"latest_results":   "/api/latest-results",
			"chat":             "/api/chat",
		},
	})
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce  json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().Format(time.RFC3339),
		Agents:    h.agents,
	})
}
