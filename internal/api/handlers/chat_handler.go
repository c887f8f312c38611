package handlers

import (
	"net/http"
	"strconv"

	"github.com/Marga-Ghale/ora-interior-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-interior-backend/internal/models"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Chat Handler
// ============================================

type ChatHandler struct {
	chatService service.ChatService
}

// Send - Post a message to a lead or project chat
// POST /api/chats/:chatId/messages
func (h *ChatHandler) Send(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), actor, c.Param("chatId"), service.MessageInput{
		Type:     req.Type,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		respondError(c, err, "Failed to send message")
		return
	}
	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

// List - Newest first, paged with ?before=<RFC3339>&limit=
// GET /api/chats/:chatId/messages
func (h *ChatHandler) List(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	before, err := parseDate("before", c.Query("before"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			respondError(c, invalidField("limit", "must be an integer"), "")
			return
		}
	}

	messages, err := h.chatService.List(c.Request.Context(), actor, c.Param("chatId"), before, limit)
	if err != nil {
		respondError(c, err, "Failed to fetch messages")
		return
	}

	response := make([]models.MessageResponse, len(messages))
	for i, m := range messages {
		response[i] = toMessageResponse(m)
	}
	c.JSON(http.StatusOK, response)
}

// MarkRead - Mark the other side's messages as read
// POST /api/chats/:chatId/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	n, err := h.chatService.MarkRead(c.Request.Context(), actor, c.Param("chatId"))
	if err != nil {
		respondError(c, err, "Failed to mark messages as read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// Delete - Soft-delete one of the caller's messages
// DELETE /api/messages/:id
func (h *ChatHandler) Delete(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	if err := h.chatService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete message")
		return
	}
	c.Status(http.StatusNoContent)
}
