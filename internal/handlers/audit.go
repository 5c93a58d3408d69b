package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gridstore/bridge/internal/models"
	"github.com/gridstore/bridge/internal/services"
)

// AuditHandler handles audit scheduling and worker claim requests
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ScheduleRequest represents a batch of contracts to schedule audits
// for.
type ScheduleRequest struct {
	Contracts []models.ContractSummary `json:"contracts" binding:"required"`
}

// Schedule handles expanding contracts into scheduled audit jobs
func (h *AuditHandler) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	audits, err := h.auditService.Schedule(c.Request.Context(), req.Contracts, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"scheduled": len(audits), "audits": audits})
}

// Claim handles a worker claiming every due audit job up to the
// configured limit.
func (h *AuditHandler) Claim(c *gin.Context) {
	audits, err := h.auditService.PopReadyAudits(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": audits})
}

// ResultRequest represents a worker's audit outcome report
type ResultRequest struct {
	Passed *bool `json:"passed" binding:"required"`
}

// Result handles recording a worker's audit outcome
func (h *AuditHandler) Result(c *gin.Context) {
	auditID, err := uuid.Parse(c.Param("auditID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid audit ID"})
		return
	}

	var req ResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auditService.HandleAuditResult(c.Request.Context(), auditID, *req.Passed); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recorded": true})
}

// Pending handles reporting the count of due, unclaimed audit jobs
func (h *AuditHandler) Pending(c *gin.Context) {
	count, err := h.auditService.PendingCount(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": count})
}
