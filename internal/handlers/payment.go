package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gridstore/bridge/internal/middleware"
	"github.com/gridstore/bridge/internal/models"
	"github.com/gridstore/bridge/internal/services"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment processor requests
type PaymentHandler struct {
	paymentService *services.PaymentService
	billingService *services.BillingService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, billingService *services.BillingService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, billingService: billingService}
}

// RegisterProcessorRequest represents a processor registration
type RegisterProcessorRequest struct {
	Processor string `json:"processor"`
	Token     string `json:"token"`
}

// Register handles registering the authenticated user with a payment
// processor.
func (h *PaymentHandler) Register(c *gin.Context) {
	var req RegisterProcessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	processor, err := h.paymentService.Register(c.Request.Context(), middleware.GetEmail(c), req.Processor, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, processor)
}

// Default handles fetching the authenticated user's default processor
func (h *PaymentHandler) Default(c *gin.Context) {
	processor, adapter, data, err := h.paymentService.DefaultProcessor(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"processor":    processor,
		"billing_date": adapter.BillingDate(data),
	})
}

// AddMethodRequest represents a payment instrument registration
type AddMethodRequest struct {
	Token string `json:"token" binding:"required"`
}

// AddMethod handles storing a payment instrument with the
// authenticated user's default processor.
func (h *PaymentHandler) AddMethod(c *gin.Context) {
	var req AddMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	method, err := h.paymentService.AddPaymentMethod(c.Request.Context(), middleware.GetEmail(c), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, method)
}

// RemoveMethod handles removing a stored payment instrument from the
// authenticated user's default processor.
func (h *PaymentHandler) RemoveMethod(c *gin.Context) {
	if err := h.paymentService.RemovePaymentMethod(c.Request.Context(), middleware.GetEmail(c), c.Param("methodID")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// ChargeRequest represents a charge against the user's default
// processor. Amount is decimal cents.
type ChargeRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// Charge handles billing the authenticated user's default processor
func (h *PaymentHandler) Charge(c *gin.Context) {
	var req ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	credit, err := h.paymentService.Charge(c.Request.Context(), h.billingService, middleware.GetEmail(c), models.MoneyFromCents(req.Amount))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, credit)
}
