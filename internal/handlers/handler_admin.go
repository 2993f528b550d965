package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/SscSPs/trustbridge_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// adminHandler serves the oversight routes. Every route runs behind
// RequireRole(admin).
type adminHandler struct {
	dealService    portssvc.DealSvcFacade
	paymentService portssvc.PaymentSvcFacade
	userService    portssvc.UserSvcFacade
}

func newAdminHandler(services *portssvc.ServiceContainer) *adminHandler {
	return &adminHandler{
		dealService:    services.Deal,
		paymentService: services.Payment,
		userService:    services.User,
	}
}

func registerAdminRoutes(admin *gin.RouterGroup, services *portssvc.ServiceContainer, idempotent ...gin.HandlerFunc) {
	h := newAdminHandler(services)

	admin.GET("/deals", h.listDeals)
	admin.GET("/transactions", h.listTransactions)
	admin.POST("/transactions/:id/release", withMiddleware(idempotent, h.releaseFunds)...)
	admin.GET("/users", h.listUsers)
	admin.PUT("/users/:id/suspend", h.setSuspended)
	admin.PUT("/users/:id/kyc", h.setKYC)

	registerReportingRoutes(admin, services.Reporting)
}

// listDeals godoc
// @Summary All deals
// @Tags admin
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Cursor from the previous page"
// @Param status query string false "Pending, Negotiating, Accepted or Rejected"
// @Success 200 {object} dto.ListDealsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/deals [get]
func (h *adminHandler) listDeals(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var params dto.ListDealsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	deals, next, err := h.dealService.ListDeals(c.Request.Context(), caller, params)
	if err != nil {
		respondWithError(c, err, "Failed to list deals")
		return
	}
	c.JSON(http.StatusOK, dto.ToListDealsResponse(deals, next))
}

// listTransactions godoc
// @Summary All funding transactions
// @Description status=pending surfaces payments awaiting confirmation or reconciliation.
// @Tags admin
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Cursor from the previous page"
// @Param status query string false "pending, paid, funds_released or failed"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/transactions [get]
func (h *adminHandler) listTransactions(c *gin.Context) {
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

// releaseFunds godoc
// @Summary Release funds to the entrepreneur
// @Tags admin
// @Produce json
// @Param Idempotency-Key header string true "UUID identifying this request"
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse "Transaction is not paid"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/transactions/{id}/release [post]
func (h *adminHandler) releaseFunds(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}

	txn, err := h.paymentService.ReleaseFunds(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to release funds")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Funds released",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("net_amount", txn.NetAmount.String()))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// listUsers godoc
// @Summary All users
// @Tags admin
// @Produce json
// @Param role query string false "investor, entrepreneur or admin"
// @Param limit query int false "Limit number of results" default(20)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListUsersResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (h *adminHandler) listUsers(c *gin.Context) {
	var params dto.ListUsersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, dto.ToListUserResponse(users, params))
}

// setSuspended godoc
// @Summary Block or unblock a user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param suspend body dto.AdminSetSuspendedRequest true "Suspension flag"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/suspend [put]
func (h *adminHandler) setSuspended(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req dto.AdminSetSuspendedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.SetSuspended(c.Request.Context(), caller.UserID, c.Param("id"), *req.Suspended)
	if err != nil {
		respondWithError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// setKYC godoc
// @Summary Set a user's verification status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param kyc body dto.AdminSetKYCRequest true "Verification flag"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/kyc [put]
func (h *adminHandler) setKYC(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req dto.AdminSetKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.SetKYCStatus(c.Request.Context(), caller.UserID, c.Param("id"), *req.Verified)
	if err != nil {
		respondWithError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}
