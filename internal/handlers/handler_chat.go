package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/SscSPs/trustbridge_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ChatTransport runs a realtime chat connection for an authenticated user.
type ChatTransport interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string, chat portssvc.ChatSvcFacade) error
}

type chatHandler struct {
	chatService portssvc.ChatSvcFacade
	transport   ChatTransport
}

func newChatHandler(cs portssvc.ChatSvcFacade, transport ChatTransport) *chatHandler {
	return &chatHandler{
		chatService: cs,
		transport:   transport,
	}
}

// registerChatRoutes registers the chat routes. The websocket route is only
// mounted when a transport is configured.
func registerChatRoutes(rg *gin.RouterGroup, chatService portssvc.ChatSvcFacade, transport ChatTransport) {
	h := newChatHandler(chatService, transport)

	chats := rg.Group("/chats")
	{
		if transport != nil {
			chats.GET("/ws", h.connect)
		}
		chats.GET("", h.listConversations)
		chats.GET("/:userId/messages", h.listMessages)
		chats.POST("/messages", h.sendMessage)
		chats.POST("/messages/:id/delivered", h.markDelivered)
	}
}

// connect godoc
// @Summary Open the realtime chat connection
// @Description Websocket upgrade. Browsers pass the JWT in the token query parameter. Undelivered messages are pushed on join.
// @Tags chat
// @Param token query string false "JWT when the Authorization header cannot be set"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /chats/ws [get]
func (h *chatHandler) connect(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}

	// The upgrader writes its own error response.
	if err := h.transport.Serve(c.Writer, c.Request, caller.UserID, h.chatService); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Chat connection failed", slog.String("error", err.Error()))
	}
}

// listConversations godoc
// @Summary Conversation partners
// @Description Every partner with the last message exchanged and the caller's undelivered count, most recent first.
// @Tags chat
// @Produce json
// @Success 200 {object} dto.ListConversationsResponse
// @Security BearerAuth
// @Router /chats [get]
func (h *chatHandler) listConversations(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}

	convs, err := h.chatService.ListConversations(c.Request.Context(), caller.UserID)
	if err != nil {
		respondWithError(c, err, "Failed to list conversations")
		return
	}
	c.JSON(http.StatusOK, dto.ListConversationsResponse{Conversations: convs})
}

// listMessages godoc
// @Summary Conversation history
// @Description Messages between the caller and userId, newest first.
// @Tags chat
// @Produce json
// @Param userId path string true "Partner user ID"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListMessagesResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /chats/{userId}/messages [get]
func (h *chatHandler) listMessages(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var params dto.ListMessagesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	msgs, next, err := h.chatService.ListConversation(c.Request.Context(), caller.UserID, c.Param("userId"), params)
	if err != nil {
		respondWithError(c, err, "Failed to list messages")
		return
	}
	c.JSON(http.StatusOK, dto.ListMessagesResponse{Messages: msgs, NextToken: next})
}

// sendMessage godoc
// @Summary Send a message
// @Description Same semantics as the websocket message event. Resending a messageID returns the stored message with duplicate=true.
// @Tags chat
// @Accept json
// @Produce json
// @Param message body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.SendMessageResponse
// @Success 200 {object} dto.SendMessageResponse "Duplicate"
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "messageID used by another conversation"
// @Security BearerAuth
// @Router /chats/messages [post]
func (h *chatHandler) sendMessage(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, duplicate, err := h.chatService.SendMessage(c.Request.Context(), caller.UserID, req)
	if err != nil {
		respondWithError(c, err, "Failed to send message")
		return
	}

	status := http.StatusCreated
	if duplicate {
		status = http.StatusOK
	}
	c.JSON(status, dto.SendMessageResponse{Message: *msg, Duplicate: duplicate})
}

// markDelivered godoc
// @Summary Acknowledge a message
// @Tags chat
// @Param id path string true "Message ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse "Caller is not the receiver"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /chats/messages/{id}/delivered [post]
func (h *chatHandler) markDelivered(c *gin.Context) {
	caller, ok := principalOrAbort(c)
	if !ok {
		return
	}

	if err := h.chatService.MarkDelivered(c.Request.Context(), caller.UserID, c.Param("id")); err != nil {
		respondWithError(c, err, "Failed to acknowledge message")
		return
	}
	c.Status(http.StatusNoContent)
}
