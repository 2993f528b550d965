package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/SscSPs/trustbridge_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests related to users.
type userHandler struct {
	userService portssvc.UserSvcFacade
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade) *userHandler {
	return &userHandler{
		userService: us,
	}
}

// registerUserRoutes registers all user-related routes.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := newUserHandler(userService)

	users := rg.Group("/users")
	{
		users.GET("/me", h.getMe)
		users.PUT("/me", h.updateMe)
		users.DELETE("/me", h.deleteMe)
		users.POST("/me/kyc", h.submitKYC)
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUser)
		users.GET("/:id/valuation", h.getUserValuation)
	}
}

// getMe godoc
// @Summary Get the current user
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (h *userHandler) getMe(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), caller.UserID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// updateMe godoc
// @Summary Update the current user's profile
// @Description Only the provided fields change.
// @Tags users
// @Accept json
// @Produce json
// @Param profile body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/me [put]
func (h *userHandler) updateMe(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), caller.UserID, req)
	if err != nil {
		respondWithError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// deleteMe godoc
// @Summary Delete the current user
// @Description Marks the caller's account as deleted (soft delete)
// @Tags users
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/me [delete]
func (h *userHandler) deleteMe(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), caller.UserID, caller.UserID); err != nil {
		respondWithError(c, err, "Failed to delete user")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("User deleted their account")
	c.Status(http.StatusNoContent)
}

// submitKYC godoc
// @Summary Submit identity verification
// @Tags users
// @Accept json
// @Produce json
// @Param kyc body dto.KYCSubmissionRequest true "Identity details"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/me/kyc [post]
func (h *userHandler) submitKYC(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req dto.KYCSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.SubmitKYC(c.Request.Context(), caller.UserID, req)
	if err != nil {
		respondWithError(c, err, "Failed to submit verification")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("KYC submitted", slog.Bool("verified", user.KYCVerified))
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// getUser godoc
// @Summary Get a user by ID
// @Description Other users' contact email is hidden unless the caller is an admin.
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *userHandler) getUser(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	userID := c.Param("id")

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve user")
		return
	}

	if caller.UserID == userID || caller.IsAdmin() {
		c.JSON(http.StatusOK, dto.ToUserResponse(user))
		return
	}
	c.JSON(http.StatusOK, dto.ToPublicUserResponse(user))
}

// listUsers godoc
// @Summary List users
// @Description Discovery list of users, optionally filtered by role
// @Tags users
// @Produce json
// @Param role query string false "investor, entrepreneur or admin"
// @Param limit query int false "Limit number of results" default(20)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListUsersResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func (h *userHandler) listUsers(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
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

	resp := dto.ToListUserResponse(users, params)
	if !caller.IsAdmin() {
		for i := range resp.Users {
			if resp.Users[i].UserID != caller.UserID {
				resp.Users[i].Email = ""
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// getUserValuation godoc
// @Summary Estimated valuation of an entrepreneur
// @Description Rough multiplier over the profile's revenue, growth and margin. Informational only.
// @Tags valuation
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.ValuationResponse
// @Failure 400 {object} ErrorResponse "User is not an entrepreneur"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/valuation [get]
func (h *userHandler) getUserValuation(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve user")
		return
	}

	value, ok := user.EstimatedValuation()
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "valuation is only estimated for entrepreneurs", Code: "VALIDATION"})
		return
	}
	c.JSON(http.StatusOK, dto.ToHeuristicValuationResponse(value))
}
