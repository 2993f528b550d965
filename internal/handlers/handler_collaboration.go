package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/SscSPs/trustbridge_backend/internal/middleware"
	"github.com/SscSPs/trustbridge_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type collaborationHandler struct {
	collabService portssvc.CollaborationSvcFacade
	posthog       *utils.PosthogClientWrapper
}

func registerCollaborationRoutes(rg *gin.RouterGroup, collabService portssvc.CollaborationSvcFacade, posthog *utils.PosthogClientWrapper) {
	h := &collaborationHandler{collabService: collabService, posthog: posthog}

	collabs := rg.Group("/collaborations")
	{
		collabs.POST("", h.createRequest)
		collabs.GET("", h.listRequests)
		collabs.POST("/:id/accept", h.accept)
		collabs.POST("/:id/decline", h.decline)
	}
}

// createRequest godoc
// @Summary Request a collaboration
// @Description Investors ask entrepreneurs and vice versa.
// @Tags collaborations
// @Accept json
// @Produce json
// @Param request body dto.CreateCollaborationRequest true "Receiver and message"
// @Success 201 {object} domain.CollaborationRequest
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "A pending request already exists"
// @Security BearerAuth
// @Router /collaborations [post]
func (h *collaborationHandler) createRequest(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req dto.CreateCollaborationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.collabService.CreateRequest(c.Request.Context(), caller.UserID, req)
	if err != nil {
		respondWithError(c, err, "Failed to create collaboration request")
		return
	}
	middleware.PosthogEvent(c, h.posthog, "collaboration_requested", map[string]any{"request_id": created.RequestID})
	c.JSON(http.StatusCreated, created)
}

// listRequests godoc
// @Summary List collaboration requests
// @Tags collaborations
// @Produce json
// @Param direction query string false "incoming or outgoing" default(incoming)
// @Param status query string false "pending, accepted or declined"
// @Param limit query int false "Limit number of results" default(20)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListCollaborationResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /collaborations [get]
func (h *collaborationHandler) listRequests(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var params dto.ListCollaborationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	reqs, err := h.collabService.ListRequests(c.Request.Context(), caller.UserID, params)
	if err != nil {
		respondWithError(c, err, "Failed to list collaboration requests")
		return
	}
	c.JSON(http.StatusOK, dto.ListCollaborationResponse{Requests: reqs})
}

// accept godoc
// @Summary Accept a collaboration request
// @Tags collaborations
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} domain.CollaborationRequest
// @Failure 400 {object} ErrorResponse "Request is not pending"
// @Failure 403 {object} ErrorResponse "Caller is not the receiver"
// @Security BearerAuth
// @Router /collaborations/{id}/accept [post]
func (h *collaborationHandler) accept(c *gin.Context) {
	h.respond(c, true)
}

// decline godoc
// @Summary Decline a collaboration request
// @Tags collaborations
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} domain.CollaborationRequest
// @Failure 400 {object} ErrorResponse "Request is not pending"
// @Failure 403 {object} ErrorResponse "Caller is not the receiver"
// @Security BearerAuth
// @Router /collaborations/{id}/decline [post]
func (h *collaborationHandler) decline(c *gin.Context) {
	h.respond(c, false)
}

func (h *collaborationHandler) respond(c *gin.Context, accept bool) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}

	updated, err := h.collabService.Respond(c.Request.Context(), caller.UserID, c.Param("id"), accept)
	if err != nil {
		respondWithError(c, err, "Failed to respond to collaboration request")
		return
	}
	c.JSON(http.StatusOK, updated)
}
