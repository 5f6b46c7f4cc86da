package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/epilog/epilog-api/internal/domain/advisor"
	apperrors "github.com/epilog/epilog-api/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	advisorSvc advisor.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(advisorSvc advisor.Service, logger *slog.Logger) *Handler {
	return &Handler{
		advisorSvc: advisorSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// Advise answers "is it safe for this child to go outside today?".
func (h *Handler) Advise(c *gin.Context) {
	var req advisor.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.advisorSvc.Advise(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, adviceError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AirQuality returns the resolved telemetry snapshot without advice.
func (h *Handler) AirQuality(c *gin.Context) {
	station := strings.TrimSpace(c.Query("station"))
	if station == "" {
		station = strings.TrimSpace(c.Query("stationName"))
	}

	snapshot, err := h.advisorSvc.AirQuality(c.Request.Context(), station)
	if err != nil {
		abortWithError(c, adviceError(err))
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func adviceError(err error) *HTTPError {
	switch apperrors.Code(err) {
	case "invalid_input":
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case "telemetry_error":
		return NewHTTPError(http.StatusBadGateway, "telemetry_error", errMessage(err), err)
	case "llm_error":
		return NewHTTPError(http.StatusBadGateway, "llm_error", errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "advice_failed", errMessage(err), err)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
