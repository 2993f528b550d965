package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/SscSPs/trustbridge_backend/internal/middleware"
	"github.com/SscSPs/trustbridge_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// paymentHandler handles the funding workflow endpoints.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
	posthog        *utils.PosthogClientWrapper
}

func newPaymentHandler(ps portssvc.PaymentSvcFacade, posthog *utils.PosthogClientWrapper) *paymentHandler {
	return &paymentHandler{
		paymentService: ps,
		posthog:        posthog,
	}
}

// registerPaymentRoutes registers the investor side of the funding workflow.
// idempotent is mounted in front of every route that moves money; it is empty
// when no idempotency store is configured.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade, posthog *utils.PosthogClientWrapper, idempotent ...gin.HandlerFunc) {
	h := newPaymentHandler(paymentService, posthog)

	payments := rg.Group("/payments")
	{
		payments.POST("/intents", withMiddleware(idempotent, h.createIntent)...)
		payments.POST("/:id/confirm", withMiddleware(idempotent, h.confirmPayment)...)
		payments.GET("", h.listTransactions)
		payments.GET("/:id", h.getTransaction)
	}
	rg.GET("/deals/:id/transactions", h.listDealTransactions)
}

// createIntent godoc
// @Summary Create a payment intent
// @Description Opens a pending funding transaction on an accepted deal. The first round must cover the agreed amount.
// @Tags payments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "UUID identifying this request"
// @Param intent body dto.CreatePaymentIntentRequest true "Deal and amount"
// @Success 201 {object} dto.PaymentIntentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "KYC_REQUIRED or not the deal's investor"
// @Failure 409 {object} ErrorResponse "PAYMENT_IN_PROGRESS"
// @Security BearerAuth
// @Router /payments/intents [post]
func (h *paymentHandler) createIntent(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req dto.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	intent, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), caller, req)
	if err != nil {
		respondWithError(c, err, "Failed to create payment intent")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Payment intent created",
		slog.String("transaction_id", intent.TransactionID),
		slog.String("deal_id", req.DealID))
	middleware.PosthogEvent(c, h.posthog, "payment_intent_created", map[string]any{
		"deal_id":    req.DealID,
		"amount":     intent.Amount.String(),
		"additional": intent.IsAdditionalInvestment,
	})
	c.JSON(http.StatusCreated, intent)
}

// confirmPayment godoc
// @Summary Confirm a payment
// @Description Confirms the intent with the processor and marks the transaction paid.
// @Tags payments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "UUID identifying this request"
// @Param id path string true "Transaction ID"
// @Param confirm body dto.ConfirmPaymentRequest true "Payment intent"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse "PAYMENT_FAILED"
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse "RECONCILIATION_REQUIRED"
// @Security BearerAuth
// @Router /payments/{id}/confirm [post]
func (h *paymentHandler) confirmPayment(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txn, err := h.paymentService.ConfirmPayment(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondWithError(c, err, "Failed to confirm payment")
		return
	}
	middleware.PosthogEvent(c, h.posthog, "payment_confirmed", map[string]any{"transaction_id": txn.TransactionID})
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// getTransaction godoc
// @Summary Get a funding transaction
// @Tags payments
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments/{id} [get]
func (h *paymentHandler) getTransaction(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}

	txn, err := h.paymentService.GetTransaction(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List funding transactions
// @Description Transactions the caller is a party to, newest first.
// @Tags payments
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Cursor from the previous page"
// @Param status query string false "pending, paid, funds_released or failed"
// @Param dealID query string false "Restrict to one deal"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments [get]
func (h *paymentHandler) listTransactions(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	txns, next, err := h.paymentService.ListTransactions(c.Request.Context(), caller, params)
	if err != nil {
		respondWithError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns, next))
}

// listDealTransactions godoc
// @Summary Funding rounds of a deal
// @Tags payments
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /deals/{id}/transactions [get]
func (h *paymentHandler) listDealTransactions(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}

	txns, err := h.paymentService.ListDealTransactions(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to list deal transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns, nil))
}
