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

// dealHandler handles the deal negotiation endpoints.
type dealHandler struct {
	dealService portssvc.DealSvcFacade
	posthog     *utils.PosthogClientWrapper
}

func newDealHandler(ds portssvc.DealSvcFacade, posthog *utils.PosthogClientWrapper) *dealHandler {
	return &dealHandler{
		dealService: ds,
		posthog:     posthog,
	}
}

// registerDealRoutes registers the deal routes. Mutations carry the deal
// version the client last saw.
func registerDealRoutes(rg *gin.RouterGroup, dealService portssvc.DealSvcFacade, posthog *utils.PosthogClientWrapper) {
	h := newDealHandler(dealService, posthog)

	deals := rg.Group("/deals")
	{
		deals.POST("", h.createDeal)
		deals.GET("", h.listDeals)
		deals.GET("/:id", h.getDeal)
		deals.GET("/:id/proposal", h.getProposal)
		deals.POST("/:id/negotiate", h.negotiateDeal)
		deals.POST("/:id/accept", h.acceptDeal)
		deals.POST("/:id/reject", h.rejectDeal)
	}
}

// createDeal godoc
// @Summary Open a deal
// @Description An investor proposes terms to an entrepreneur. postMoneyValuation is computed by the server.
// @Tags deals
// @Accept json
// @Produce json
// @Param deal body dto.CreateDealRequest true "Initial terms"
// @Success 201 {object} dto.DealResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Caller is not an investor"
// @Failure 409 {object} ErrorResponse "An open deal already exists for the pair"
// @Security BearerAuth
// @Router /deals [post]
func (h *dealHandler) createDeal(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req dto.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	deal, err := h.dealService.CreateDeal(c.Request.Context(), caller, req)
	if err != nil {
		respondWithError(c, err, "Failed to create deal")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Deal created", slog.String("deal_id", deal.DealID))
	middleware.PosthogEvent(c, h.posthog, "deal_created", map[string]any{"deal_id": deal.DealID})
	c.JSON(http.StatusCreated, dto.ToDealResponse(deal))
}

// listDeals godoc
// @Summary List deals
// @Description Deals the caller is a party to, newest first. Admins see all deals.
// @Tags deals
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Cursor from the previous page"
// @Param status query string false "Pending, Negotiating, Accepted or Rejected"
// @Success 200 {object} dto.ListDealsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /deals [get]
func (h *dealHandler) listDeals(c *gin.Context) {
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

// getDeal godoc
// @Summary Get a deal
// @Tags deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} dto.DealResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /deals/{id} [get]
func (h *dealHandler) getDeal(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}

	deal, err := h.dealService.GetDeal(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve deal")
		return
	}
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}

// getProposal godoc
// @Summary Proposal view of a deal
// @Description Current and original terms, the prefilled counter-offer and whether the caller may act.
// @Tags deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} domain.ProposalView
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /deals/{id}/proposal [get]
func (h *dealHandler) getProposal(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}

	view, err := h.dealService.GetProposalView(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve proposal")
		return
	}
	c.JSON(http.StatusOK, view)
}

// negotiateDeal godoc
// @Summary Counter-offer
// @Description Omitted term fields keep the latest proposal's value.
// @Tags deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param counter body dto.NegotiateDealRequest true "Counter-offer"
// @Success 200 {object} dto.DealResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "NOT_YOUR_TURN, TERMINAL_STATE or VERSION_CONFLICT"
// @Security BearerAuth
// @Router /deals/{id}/negotiate [post]
func (h *dealHandler) negotiateDeal(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req dto.NegotiateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	deal, err := h.dealService.NegotiateDeal(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondWithError(c, err, "Failed to negotiate deal")
		return
	}
	middleware.PosthogEvent(c, h.posthog, "deal_negotiated", map[string]any{"deal_id": deal.DealID, "round": len(deal.NegotiationHistory)})
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}

// acceptDeal godoc
// @Summary Accept the current terms
// @Tags deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param decision body dto.DealDecisionRequest true "Version seen by the caller"
// @Success 200 {object} dto.DealResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "NOT_YOUR_TURN, TERMINAL_STATE or VERSION_CONFLICT"
// @Security BearerAuth
// @Router /deals/{id}/accept [post]
func (h *dealHandler) acceptDeal(c *gin.Context) {
	h.decide(c, true)
}

// rejectDeal godoc
// @Summary Reject the deal
// @Tags deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param decision body dto.DealDecisionRequest true "Version seen by the caller"
// @Success 200 {object} dto.DealResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "NOT_YOUR_TURN, TERMINAL_STATE or VERSION_CONFLICT"
// @Security BearerAuth
// @Router /deals/{id}/reject [post]
func (h *dealHandler) rejectDeal(c *gin.Context) {
	h.decide(c, false)
}

func (h *dealHandler) decide(c *gin.Context, accept bool) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req dto.DealDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	decide, event := h.dealService.RejectDeal, "deal_rejected"
	if accept {
		decide, event = h.dealService.AcceptDeal, "deal_accepted"
	}

	deal, err := decide(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondWithError(c, err, "Failed to update deal")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Deal closed",
		slog.String("deal_id", deal.DealID),
		slog.String("status", string(deal.Status)))
	middleware.PosthogEvent(c, h.posthog, event, map[string]any{"deal_id": deal.DealID})
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}
