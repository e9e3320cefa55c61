package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atm360/backend/internal/db"
)

func (h *Handler) EngineersList(c *gin.Context) {
	engineers, err := h.Store.ListEngineers(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list engineers", err.Error())
		return
	}
	c.JSON(http.StatusOK, engineers)
}

type DispatchRequest struct {
	TicketID  string `json:"ticket_id" validate:"required"`
	AtmID     string `json:"atm_id" validate:"required"`
	IssueType string `json:"issue_type" validate:"required"`
}

// @Summary Auto-dispatch an engineer
// @Tags dispatch
// @Accept json
// @Produce json
// @Param payload body DispatchRequest true "dispatch request"
// @Success 201 {object} models.DispatchResult
// @Failure 404 {object} map[string]any
// @Router /api/dispatch/auto [post]
func (h *Handler) DispatchAuto(c *gin.Context) {
	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	result, err := h.Dispatch.Dispatch(c.Request.Context(), req.TicketID, req.AtmID, req.IssueType)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "ATM or ticket not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DISPATCH_ERROR", "Error during dispatch", err.Error())
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary At-risk ATMs
// @Tags alerts
// @Produce json
// @Success 200 {array} models.ATM
// @Router /api/alerts/at-risk [get]
func (h *Handler) AlertsAtRisk(c *gin.Context) {
	atms, err := h.Alerts.AtRiskATMs(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to collect at-risk ATMs", err.Error())
		return
	}
	c.JSON(http.StatusOK, atms)
}

// @Summary Dashboard KPIs
// @Tags stats
// @Produce json
// @Success 200 {object} models.KPIReport
// @Router /api/stats/kpi [get]
func (h *Handler) StatsKPI(c *gin.Context) {
	report, err := h.Reports.GenerateKPIReport(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Error generating KPI report", err.Error())
		return
	}
	c.JSON(http.StatusOK, report)
}
