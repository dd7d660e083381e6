package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/r7ala/r7ala-backend/internal/apperr"
)

// writeError maps a service error onto its HTTP status. Only the typed
// message reaches the client; wrapped causes stay server-side. Duplicate-chat
// conflicts additionally carry the existing chat id.
func writeError(c *gin.Context, err error) {
  var ae *apperr.Error
  if errors.As(err, &ae) {
    body := gin.H{"error": ae.Message}
    if ae.Kind == apperr.KindConflict && ae.ChatID != 0 {
      body["chatId"] = ae.ChatID
    }
    c.JSON(ae.Kind.HTTPStatus(), body)
    return
  }
  c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
