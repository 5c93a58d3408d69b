package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gridstore/bridge/internal/middleware"
	"github.com/gridstore/bridge/internal/models"
	"github.com/gridstore/bridge/internal/services"
	"github.com/shopspring/decimal"
)

// BillingHandler handles credit and debit ledger requests
type BillingHandler struct {
	billingService *services.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *services.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// CreateCreditRequest represents a credit ledger entry. Amounts are
// decimal cents.
type CreateCreditRequest struct {
	UserEmail      string          `json:"user" binding:"required,email"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	InvoicedAmount decimal.Decimal `json:"invoiced_amount"`
	PromoAmount    decimal.Decimal `json:"promo_amount"`
	PromoCode      string          `json:"promo_code"`
	Paid           bool            `json:"paid"`
	Processor      string          `json:"payment_processor"`
	Type           string          `json:"type"`
}

// CreateCredit handles creating a credit ledger entry
func (h *BillingHandler) CreateCredit(c *gin.Context) {
	var req CreateCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	credit := &models.Credit{
		UserEmail:      req.UserEmail,
		PaidAmount:     models.MoneyFromCents(req.PaidAmount),
		InvoicedAmount: models.MoneyFromCents(req.InvoicedAmount),
		PromoAmount:    models.MoneyFromCents(req.PromoAmount),
		PromoCode:      req.PromoCode,
		Paid:           req.Paid,
		Processor:      req.Processor,
		Type:           models.CreditType(req.Type),
	}

	if err := h.billingService.CreateCredit(c.Request.Context(), credit); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, credit)
}

// MarkCreditPaidRequest represents a settlement of an invoiced credit
type MarkCreditPaidRequest struct {
	PaidAmount decimal.Decimal `json:"paid_amount" binding:"required"`
}

// MarkCreditPaid handles settling an invoiced credit
func (h *BillingHandler) MarkCreditPaid(c *gin.Context) {
	creditID, err := uuid.Parse(c.Param("creditID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credit ID"})
		return
	}

	var req MarkCreditPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	credit, err := h.billingService.MarkCreditPaid(c.Request.Context(), creditID, models.MoneyFromCents(req.PaidAmount))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, credit)
}

// ListCredits handles listing the authenticated user's credits
func (h *BillingHandler) ListCredits(c *gin.Context) {
	credits, err := h.billingService.ListCredits(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"credits": credits})
}

// CreateDebitRequest represents a usage charge. Amount is decimal
// cents; bandwidth and storage are byte counts.
type CreateDebitRequest struct {
	UserEmail string          `json:"user" binding:"required,email"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Type      string          `json:"type" binding:"required"`
	Bandwidth int64           `json:"bandwidth"`
	Storage   int64           `json:"storage"`
}

// CreateDebit handles creating a usage charge
func (h *BillingHandler) CreateDebit(c *gin.Context) {
	var req CreateDebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	debit := &models.Debit{
		UserEmail: req.UserEmail,
		Amount:    models.MoneyFromCents(req.Amount),
		Type:      models.DebitType(req.Type),
		Bandwidth: req.Bandwidth,
		Storage:   req.Storage,
	}

	if err := h.billingService.CreateDebit(c.Request.Context(), debit); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, debit)
}

// ListDebits handles listing the authenticated user's debits
func (h *BillingHandler) ListDebits(c *gin.Context) {
	debits, err := h.billingService.ListDebits(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"debits": debits})
}

// Balance handles reporting the authenticated user's outstanding
// balance in decimal cents.
func (h *BillingHandler) Balance(c *gin.Context) {
	balance, err := h.billingService.Balance(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance.Cents()})
}
