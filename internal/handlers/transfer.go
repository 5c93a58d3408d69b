package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gridstore/bridge/internal/services"
)

// TransferHandler handles bandwidth accounting reports from the data
// plane.
type TransferHandler struct {
	userService *services.UserService
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(userService *services.UserService) *TransferHandler {
	return &TransferHandler{userService: userService}
}

// RecordTransferRequest represents a transfer report for one user.
// Bytes is a pointer so a zero-byte report binds instead of failing
// required-field validation.
type RecordTransferRequest struct {
	Direction string `json:"direction" binding:"required,oneof=upload download"`
	Bytes     *int64 `json:"bytes" binding:"required"`
}

// Record handles folding reported bytes into a user's rolling windows
func (h *TransferHandler) Record(c *gin.Context) {
	var req RecordTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.RecordTransferBytes(
		c.Request.Context(), c.Param("email"),
		services.TransferDirection(req.Direction), *req.Bytes, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// RateLimited handles checking whether a user has hit a bandwidth
// ceiling for a direction.
func (h *TransferHandler) RateLimited(c *gin.Context) {
	dir := services.TransferDirection(c.Query("direction"))
	if dir != services.TransferUpload && dir != services.TransferDownload {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be upload or download"})
		return
	}

	limited, err := h.userService.IsRateLimited(c.Request.Context(), c.Param("email"), dir, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"limited": limited})
}
