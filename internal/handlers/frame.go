package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gridstore/bridge/internal/middleware"
	"github.com/gridstore/bridge/internal/models"
)

// frameService is the slice of frame operations the handler needs
type frameService interface {
	Create(ctx context.Context, userEmail string) (*models.Frame, error)
	Get(ctx context.Context, frameID uuid.UUID) (*models.Frame, error)
	ListForUser(ctx context.Context, userEmail string) ([]models.Frame, error)
	SetLocked(ctx context.Context, frameID uuid.UUID, userEmail string, locked bool) error
	AddShard(ctx context.Context, frameID uuid.UUID, userEmail string, shard models.Pointer) (*models.Frame, error)
}

// FrameHandler handles frame staging requests
type FrameHandler struct {
	frameService frameService
}

// NewFrameHandler creates a new frame handler
func NewFrameHandler(frameService frameService) *FrameHandler {
	return &FrameHandler{frameService: frameService}
}

// Create handles opening a new frame for the authenticated user
func (h *FrameHandler) Create(c *gin.Context) {
	frame, err := h.frameService.Create(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, frame)
}

// Get handles fetching a frame with its shard list
func (h *FrameHandler) Get(c *gin.Context) {
	frameID, err := uuid.Parse(c.Param("frameID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid frame ID"})
		return
	}

	frame, err := h.frameService.Get(c.Request.Context(), frameID)
	if err != nil {
		respondError(c, err)
		return
	}
	if frame.UserEmail != middleware.GetEmail(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your frame"})
		return
	}

	c.JSON(http.StatusOK, frame)
}

// List handles listing the authenticated user's frames
func (h *FrameHandler) List(c *gin.Context) {
	frames, err := h.frameService.ListForUser(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"frames": frames})
}

// SetLockedRequest represents a frame lock state change
type SetLockedRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}

// SetLocked handles locking or unlocking a frame
func (h *FrameHandler) SetLocked(c *gin.Context) {
	frameID, err := uuid.Parse(c.Param("frameID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid frame ID"})
		return
	}

	var req SetLockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.frameService.SetLocked(c.Request.Context(), frameID, middleware.GetEmail(c), *req.Locked); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"locked": *req.Locked})
}

// AddShardRequest represents a shard staged into a frame
type AddShardRequest struct {
	Index  int    `json:"index"`
	Hash   string `json:"hash" binding:"required"`
	Size   int64  `json:"size" binding:"required"`
	Parity bool   `json:"parity"`
}

// AddShard handles staging a shard into a frame
func (h *FrameHandler) AddShard(c *gin.Context) {
	frameID, err := uuid.Parse(c.Param("frameID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid frame ID"})
		return
	}

	var req AddShardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	frame, err := h.frameService.AddShard(c.Request.Context(), frameID, middleware.GetEmail(c), models.Pointer{
		Index:  req.Index,
		Hash:   req.Hash,
		Size:   req.Size,
		Parity: req.Parity,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, frame)
}
