package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	chatsvc "riderlink/internal/app/services/chat"
	"riderlink/internal/domain/chat"
	"riderlink/internal/domain/participant"
)

// ChatHTTP exposes the conversation and messaging endpoints.
type ChatHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	ListMessages(c *gin.Context)
	Send(c *gin.Context)
	MarkRead(c *gin.Context)
	MarkAllRead(c *gin.Context)
	Unread(c *gin.Context)
	Delete(c *gin.Context)
}

type ChatHandler struct {
	Service *chatsvc.Service
	Logger  *slog.Logger
}

type createConversationRequest struct {
	UserID      string `json:"user_id"`
	UserType    string `json:"user_type"`
	ContextType string `json:"context_type"`
	ReferenceID string `json:"reference_id"`
}

// Create resolves or creates the conversation between the caller and the
// target. The response reports whether a new conversation was created.
func (h ChatHandler) Create(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	targetType, err := participant.ParseUserType(req.UserType)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	target, err := participant.New(req.UserID, targetType)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	contextType, err := chat.ParseContextType(req.ContextType)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	var convCtx *chat.Context
	if contextType != "" {
		convCtx = &chat.Context{Type: contextType, ReferenceID: strings.TrimSpace(req.ReferenceID)}
	}

	conversation, created, err := h.Service.GetOrCreate(c.Request.Context(), p.Participant, target, convCtx)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, conversationResponse(conversation, created))
}

// List returns the caller's conversations, most recently active first.
func (h ChatHandler) List(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	page, limit, ok := pageQuery(c)
	if !ok {
		return
	}
	contextType, err := chat.ParseContextType(c.Query("context_type"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	list, err := h.Service.ListForParticipant(c.Request.Context(), p.Participant, page, limit, contextType)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListMessages returns one page of a conversation the caller participates in.
func (h ChatHandler) ListMessages(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	conversationID, ok := hexIDParam(c, "id")
	if !ok {
		return
	}
	page, limit, ok := pageQuery(c)
	if !ok {
		return
	}
	if _, err := h.Service.Conversation(c.Request.Context(), p.Participant, conversationID); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	list, err := h.Service.ListMessages(c.Request.Context(), conversationID, page, limit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type sendMessageRequest struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

func (h ChatHandler) Send(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	conversationID, ok := hexIDParam(c, "id")
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	messageType, err := chat.ParseMessageType(req.MessageType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message type"})
		return
	}
	message, err := h.Service.Send(c.Request.Context(), p.Participant, conversationID, req.Content, messageType)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

type markReadRequest struct {
	MessageIDs []string `json:"message_ids"`
}

// MarkRead appends read receipts for the listed messages. Re-marking is a
// no-op, the response carries how many were newly marked.
func (h ChatHandler) MarkRead(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	for _, id := range req.MessageIDs {
		if !participant.IsHexID(strings.TrimSpace(id)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message_ids must be valid ids"})
			return
		}
	}
	marked, err := h.Service.MarkRead(c.Request.Context(), p.Participant, req.MessageIDs)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked_count": marked})
}

// MarkAllRead marks every unread message of the conversation.
func (h ChatHandler) MarkAllRead(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	conversationID, ok := hexIDParam(c, "id")
	if !ok {
		return
	}
	marked, err := h.Service.MarkAllRead(c.Request.Context(), p.Participant, conversationID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked_count": marked})
}

// Unread returns the caller's total unread count plus the per-conversation
// breakdown.
func (h ChatHandler) Unread(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	summary, err := h.Service.TotalUnread(c.Request.Context(), p.Participant)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Delete soft-deletes the conversation.
func (h ChatHandler) Delete(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	conversationID, ok := hexIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.Participant, conversationID); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func conversationResponse(conversation *chat.Conversation, created bool) gin.H {
	participants := make([]gin.H, 0, len(conversation.Participants))
	for _, p := range conversation.Participants {
		participants = append(participants, gin.H{"user_id": p.UserID, "user_type": string(p.UserType)})
	}
	body := gin.H{
		"id":           conversation.ID,
		"participants": participants,
		"status":       string(conversation.Status),
		"created":      created,
		"created_at":   conversation.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":   conversation.UpdatedAt.Format(time.RFC3339Nano),
	}
	if conversation.Context != nil {
		body["context_type"] = string(conversation.Context.Type)
		body["reference_id"] = conversation.Context.ReferenceID
	}
	return body
}

var _ ChatHTTP = (*ChatHandler)(nil)
