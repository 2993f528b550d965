package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string // overrides err.Error() when set
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{target: apperrors.ErrNotYourTurn, status: http.StatusConflict, code: "NOT_YOUR_TURN", message: "not your turn"},
	{target: apperrors.ErrTerminalState, status: http.StatusConflict, code: "TERMINAL_STATE"},
	{target: apperrors.ErrConflict, status: http.StatusConflict, code: "VERSION_CONFLICT"},
	{target: apperrors.ErrPaymentInProgress, status: http.StatusConflict, code: "PAYMENT_IN_PROGRESS"},
	{target: apperrors.ErrKYCRequired, status: http.StatusForbidden, code: "KYC_REQUIRED"},
	{target: apperrors.ErrPayment, status: http.StatusPaymentRequired, code: "PAYMENT_FAILED"},
	{target: apperrors.ErrReconciliation, status: http.StatusBadGateway, code: "RECONCILIATION_REQUIRED"},
	{target: apperrors.ErrValidation, status: http.StatusBadRequest, code: "VALIDATION"},
	{target: apperrors.ErrUnauthorized, status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
	{target: apperrors.ErrForbidden, status: http.StatusForbidden, code: "FORBIDDEN"},
	{target: apperrors.ErrNotFound, status: http.StatusNotFound, code: "NOT_FOUND"},
	{target: apperrors.ErrDuplicate, status: http.StatusConflict, code: "DUPLICATE"},
}

// respondWithError maps err to a status code and writes it. Unmapped errors
// are logged and answered with a generic 500 carrying fallback.
func respondWithError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", m.status))
		c.JSON(m.status, ErrorResponse{Error: msg, Code: m.code})
		return
	}

	logger.Error(fallback, slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
}

// respondBindError answers a request whose body or query failed to bind.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request: " + err.Error(), Code: "VALIDATION"})
}

// principalOrAbort returns the authenticated caller or writes 401.
func principalOrAbort(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return p, false
	}
	return p, true
}
