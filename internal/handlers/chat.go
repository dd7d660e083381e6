package handlers

import (
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"

  "github.com/r7ala/r7ala-backend/internal/services"
)

type ChatHandler struct {
  conversationService services.ConversationService
  messageService      services.MessageService
}

func NewChatHandler(conversationService services.ConversationService, messageService services.MessageService) *ChatHandler {
  return &ChatHandler{conversationService: conversationService, messageService: messageService}
}

func (ch *ChatHandler) CreateChat(c *gin.Context) {
  var req struct {
    TourGuideID uint    `json:"tourGuideId"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  summary, err := ch.conversationService.CreateChat(c.Request.Context(), req.TourGuideID)
  if err != nil {
    writeError(c, err)
    return
  }
  c.JSON(http.StatusCreated, summary)
}

func (ch *ChatHandler) GetChats(c *gin.Context) {
  summaries, err := ch.conversationService.ListChats(c.Request.Context())
  if err != nil {
    writeError(c, err)
    return
  }
  c.JSON(http.StatusOK, summaries)
}

func (ch *ChatHandler) GetMessages(c *gin.Context) {
  chatID, ok := uintParam(c, "chatId")
  if !ok {
    return
  }
  records, err := ch.messageService.ListMessages(c.Request.Context(), chatID)
  if err != nil {
    writeError(c, err)
    return
  }
  c.JSON(http.StatusOK, records)
}

func (ch *ChatHandler) SendMessage(c *gin.Context) {
  chatID, ok := uintParam(c, "chatId")
  if !ok {
    return
  }
  var req struct {
    Content     string      `json:"content"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  record, err := ch.messageService.SendMessage(c.Request.Context(), chatID, req.Content)
  if err != nil {
    writeError(c, err)
    return
  }
  c.JSON(http.StatusCreated, record)
}

func (ch *ChatHandler) DeleteMessage(c *gin.Context) {
  chatID, ok := uintParam(c, "chatId")
  if !ok {
    return
  }
  messageID, ok := uintParam(c, "messageId")
  if !ok {
    return
  }
  if err := ch.messageService.DeleteMessage(c.Request.Context(), chatID, messageID); err != nil {
    writeError(c, err)
    return
  }
  c.Status(http.StatusNoContent)
}

func uintParam(c *gin.Context, name string) (uint, bool) {
  raw := c.Param(name)
  val, err := strconv.ParseUint(raw, 10, 64)
  if err != nil || val == 0 {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
    return 0, false
  }
  return uint(val), true
}
