package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gridstore/bridge/internal/middleware"
	"github.com/gridstore/bridge/internal/models"
	"github.com/gridstore/bridge/internal/services"
)

// BucketHandler handles bucket and file entry requests
type BucketHandler struct {
	bucketService *services.BucketService
}

// NewBucketHandler creates a new bucket handler
func NewBucketHandler(bucketService *services.BucketService) *BucketHandler {
	return &BucketHandler{bucketService: bucketService}
}

// CreateBucketRequest represents a bucket creation request
type CreateBucketRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create handles creating a bucket for the authenticated user
func (h *BucketHandler) Create(c *gin.Context) {
	var req CreateBucketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bucket, err := h.bucketService.Create(c.Request.Context(), middleware.GetEmail(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bucket)
}

// Get handles fetching one bucket
func (h *BucketHandler) Get(c *gin.Context) {
	bucket, ok := h.ownedBucket(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, bucket)
}

// List handles listing the authenticated user's buckets
func (h *BucketHandler) List(c *gin.Context) {
	buckets, err := h.bucketService.ListForUser(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"buckets": buckets})
}

// Delete handles removing a bucket and its entries
func (h *BucketHandler) Delete(c *gin.Context) {
	bucket, ok := h.ownedBucket(c)
	if !ok {
		return
	}

	if err := h.bucketService.Delete(c.Request.Context(), bucket.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// CreateEntryRequest represents committing a frame into a bucket as a
// named file.
type CreateEntryRequest struct {
	FrameID  uuid.UUID `json:"frame_id" binding:"required"`
	Name     string    `json:"name" binding:"required"`
	MimeType string    `json:"mime_type"`
}

// CreateEntry handles committing a frame into a bucket
func (h *BucketHandler) CreateEntry(c *gin.Context) {
	bucket, ok := h.ownedBucket(c)
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := &models.BucketEntry{
		BucketID: bucket.ID,
		FrameID:  req.FrameID,
		Name:     req.Name,
		MimeType: req.MimeType,
	}

	if err := h.bucketService.CreateEntry(c.Request.Context(), entry); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// ListEntries handles listing a bucket's files
func (h *BucketHandler) ListEntries(c *gin.Context) {
	bucket, ok := h.ownedBucket(c)
	if !ok {
		return
	}

	entries, err := h.bucketService.ListEntries(c.Request.Context(), bucket.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ownedBucket loads the bucket from the path parameter and checks that
// the authenticated user owns it. It writes the error response itself
// when the check fails.
func (h *BucketHandler) ownedBucket(c *gin.Context) (*models.Bucket, bool) {
	bucketID, err := uuid.Parse(c.Param("bucketID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bucket ID"})
		return nil, false
	}

	bucket, err := h.bucketService.Get(c.Request.Context(), bucketID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if bucket.UserEmail != middleware.GetEmail(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your bucket"})
		return nil, false
	}

	return bucket, true
}
