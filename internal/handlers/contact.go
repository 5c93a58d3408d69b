package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gridstore/bridge/internal/services"
)

// ContactHandler handles farmer contact requests
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Upsert handles a contact observation
func (h *ContactHandler) Upsert(c *gin.Context) {
	var req services.UpsertContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.contactService.Upsert(c.Request.Context(), req, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// Get handles fetching one contact
func (h *ContactHandler) Get(c *gin.Context) {
	contact, err := h.contactService.Get(c.Request.Context(), c.Param("nodeID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// List handles listing contacts by recency
func (h *ContactHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	contacts, err := h.contactService.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

// RecordPointsRequest represents a reputation adjustment. Points is a
// pointer so an explicit zero adjustment binds instead of failing
// required-field validation.
type RecordPointsRequest struct {
	Points *int `json:"points" binding:"required"`
}

// RecordPoints handles a reputation adjustment for a contact
func (h *ContactHandler) RecordPoints(c *gin.Context) {
	var req RecordPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.contactService.RecordPoints(c.Request.Context(), c.Param("nodeID"), *req.Points)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// RecordTimeout handles a timeout failure report for a contact
func (h *ContactHandler) RecordTimeout(c *gin.Context) {
	contact, err := h.contactService.RecordTimeoutFailure(c.Request.Context(), c.Param("nodeID"), time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// RecordResponseTimeRequest represents an observed response time
type RecordResponseTimeRequest struct {
	Milliseconds float64 `json:"milliseconds" binding:"required"`
}

// RecordResponseTime handles a response time report for a contact
func (h *ContactHandler) RecordResponseTime(c *gin.Context) {
	var req RecordResponseTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.contactService.RecordResponseTime(c.Request.Context(), c.Param("nodeID"), req.Milliseconds)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}
