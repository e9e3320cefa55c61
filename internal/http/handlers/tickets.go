package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atm360/backend/internal/db"
	"github.com/atm360/backend/internal/http/middleware"
	"github.com/atm360/backend/internal/models"
)

// TicketsList returns the whole backlog to admins and only the
// engineer's own tickets to engineers.
func (h *Handler) TicketsList(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	var (
		tickets []models.Ticket
		err     error
	)
	switch user.Role {
	case models.RoleAdmin:
		tickets, err = h.Store.ListTickets(c.Request.Context())
	case models.RoleEngineer:
		tickets, err = h.Store.ListTicketsByEngineer(c.Request.Context(), user.ID)
	default:
		writeError(c, http.StatusForbidden, "FORBIDDEN", "Unauthorized role", nil)
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list tickets", err.Error())
		return
	}
	c.JSON(http.StatusOK, tickets)
}

type CreateTicketRequest struct {
	AtmID       string `json:"atm_id" validate:"required"`
	IssueType   string `json:"issue_type" validate:"required"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// normalizeSeverity coerces the reported severity to one of the known
// levels. Anything unrecognized, including empty, becomes MEDIUM rather
// than being rejected.
func normalizeSeverity(severity string) string {
	switch v := strings.ToUpper(strings.TrimSpace(severity)); v {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical:
		return v
	default:
		return models.SeverityMedium
	}
}

// @Summary Report a fault
// @Tags tickets
// @Accept json
// @Produce json
// @Param payload body CreateTicketRequest true "ticket"
// @Success 201 {object} models.Ticket
// @Failure 400 {object} map[string]any
// @Router /api/tickets [post]
func (h *Handler) TicketCreate(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	req.Severity = normalizeSeverity(req.Severity)

	if _, err := h.Store.GetATM(c.Request.Context(), req.AtmID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "ATM not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to check ATM", err.Error())
		return
	}

	id := uuid.NewString()
	if err := h.Store.CreateOpenTicket(c.Request.Context(), id, req.AtmID, req.IssueType, req.Severity, "SYSTEM"); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create ticket", err.Error())
		return
	}

	ticket, err := h.Store.GetTicket(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load created ticket", err.Error())
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

type TicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress closed"`
}

// TicketStatusUpdate moves a ticket to in_progress or closed. Earlier
// states are reached through creation and dispatch, never directly.
func (h *Handler) TicketStatusUpdate(c *gin.Context) {
	var req TicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", `Invalid status. Must be "in_progress" or "closed".`, err.Error())
		return
	}

	id := c.Param("id")
	if err := h.Store.UpdateTicketStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update ticket", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

type ProofPhotoRequest struct {
	Base64Image string `json:"base64_image" validate:"required"`
}

// TicketProofPhoto records proof of repair. The image itself is not
// stored; only a placeholder URL is kept on the ticket.
func (h *Handler) TicketProofPhoto(c *gin.Context) {
	var req ProofPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "No image data provided", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "No image data provided", err.Error())
		return
	}

	id := c.Param("id")
	photoURL := "/uploads/proof_" + id + ".jpg"
	if err := h.Store.SetTicketProofPhoto(c.Request.Context(), id, photoURL); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to store photo", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Photo uploaded successfully",
		"photo_url": photoURL,
	})
}
