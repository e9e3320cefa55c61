package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atm360/backend/internal/db"
	"github.com/atm360/backend/internal/models"
	"github.com/atm360/backend/internal/service"
)

type CreateAtmRequest struct {
	BankID             string                `json:"bank_id" validate:"required"`
	Location           *models.Location      `json:"location" validate:"required"`
	Model              string                `json:"model" validate:"required"`
	Type               string                `json:"type" validate:"required"`
	Status             string                `json:"status" validate:"required,oneof=ONLINE OFFLINE OUT_OF_SERVICE"`
	NetworkStatus      string                `json:"network_status" validate:"required,oneof=CONNECTED INTERMITTENT DISCONNECTED"`
	CashLevel          *models.CashLevel     `json:"cash_level" validate:"required"`
	PowerStatus        *models.PowerStatus   `json:"power_status" validate:"required"`
	Diagnostics        *models.Diagnostics   `json:"diagnostics" validate:"required"`
	UptimeMetrics      *models.UptimeMetrics `json:"uptime_metrics"`
	AssignedEngineerID *string               `json:"assigned_engineer_id"`
}

// @Summary Register an ATM
// @Tags atms
// @Accept json
// @Produce json
// @Param payload body CreateAtmRequest true "ATM"
// @Success 201 {object} models.ATM
// @Failure 400 {object} map[string]any
// @Router /api/atms [post]
func (h *Handler) AtmCreate(c *gin.Context) {
	var req CreateAtmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	now := time.Now().UTC()
	atm := models.ATM{
		ID:                 uuid.NewString(),
		BankID:             req.BankID,
		Location:           *req.Location,
		Model:              req.Model,
		Type:               req.Type,
		Status:             req.Status,
		NetworkStatus:      req.NetworkStatus,
		CashLevel:          *req.CashLevel,
		PowerStatus:        *req.PowerStatus,
		Diagnostics:        *req.Diagnostics,
		UptimeMetrics:      req.UptimeMetrics,
		AssignedEngineerID: req.AssignedEngineerID,
		LastUpdated:        now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.Store.CreateATM(c.Request.Context(), atm); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create ATM", err.Error())
		return
	}
	c.JSON(http.StatusCreated, atm)
}

func (h *Handler) AtmsList(c *gin.Context) {
	atms, err := h.Store.ListATMs(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list ATMs", err.Error())
		return
	}
	c.JSON(http.StatusOK, atms)
}

func (h *Handler) AtmDetails(c *gin.Context) {
	atm, err := h.Store.GetATM(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "ATM not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get ATM", err.Error())
		return
	}
	c.JSON(http.StatusOK, atm)
}

// PatchAtmRequest carries a partial update. Nested objects are replaced
// wholesale when present and kept when absent.
type PatchAtmRequest struct {
	BankID             *string                 `json:"bank_id"`
	Location           *models.Location        `json:"location"`
	Model              *string                 `json:"model"`
	Type               *string                 `json:"type"`
	Status             *string                 `json:"status" validate:"omitempty,oneof=ONLINE OFFLINE OUT_OF_SERVICE"`
	NetworkStatus      *string                 `json:"network_status" validate:"omitempty,oneof=CONNECTED INTERMITTENT DISCONNECTED"`
	CashLevel          *models.CashLevel       `json:"cash_level"`
	PowerStatus        *models.PowerStatus     `json:"power_status"`
	Diagnostics        *models.Diagnostics     `json:"diagnostics"`
	PredictiveScore    *models.PredictiveScore `json:"predictive_score"`
	UptimeMetrics      *models.UptimeMetrics   `json:"uptime_metrics"`
	AssignedEngineerID *string                 `json:"assigned_engineer_id"`
}

func (h *Handler) AtmUpdate(c *gin.Context) {
	var req PatchAtmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	atm, err := h.Store.GetATM(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "ATM not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get ATM", err.Error())
		return
	}

	if req.BankID != nil {
		atm.BankID = *req.BankID
	}
	if req.Location != nil {
		atm.Location = *req.Location
	}
	if req.Model != nil {
		atm.Model = *req.Model
	}
	if req.Type != nil {
		atm.Type = *req.Type
	}
	if req.Status != nil {
		atm.Status = *req.Status
	}
	if req.NetworkStatus != nil {
		atm.NetworkStatus = *req.NetworkStatus
	}
	if req.CashLevel != nil {
		atm.CashLevel = *req.CashLevel
	}
	if req.PowerStatus != nil {
		atm.PowerStatus = *req.PowerStatus
	}
	if req.Diagnostics != nil {
		atm.Diagnostics = *req.Diagnostics
	}
	if req.PredictiveScore != nil {
		atm.PredictiveScore = req.PredictiveScore
	}
	if req.UptimeMetrics != nil {
		atm.UptimeMetrics = req.UptimeMetrics
	}
	if req.AssignedEngineerID != nil {
		atm.AssignedEngineerID = req.AssignedEngineerID
	}
	atm.UpdatedAt = time.Now().UTC()

	if err := h.Store.UpdateATM(c.Request.Context(), atm); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update ATM", err.Error())
		return
	}
	c.JSON(http.StatusOK, atm)
}

func (h *Handler) AtmDelete(c *gin.Context) {
	if err := h.Store.DeleteATM(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "ATM not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to delete ATM", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Fleet telemetry snapshot
// @Tags telemetry
// @Produce json
// @Success 200 {array} models.TelemetryPacket
// @Router /api/atms/telemetry [get]
func (h *Handler) TelemetrySnapshot(c *gin.Context) {
	packets, err := h.Telemetry.Snapshots(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to collect telemetry", err.Error())
		return
	}
	c.JSON(http.StatusOK, packets)
}

func (h *Handler) TelemetryIngest(c *gin.Context) {
	var req service.TelemetryUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	atm, err := h.Telemetry.Ingest(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "ATM not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to ingest telemetry", err.Error())
		return
	}
	c.JSON(http.StatusOK, atm)
}
