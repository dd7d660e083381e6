package middleware

import (
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"

  "github.com/r7ala/r7ala-backend/internal/logger"
  "github.com/r7ala/r7ala-backend/internal/requestdata"
  "github.com/r7ala/r7ala-backend/internal/services"
)

type AuthMiddleware struct {
  log           *logger.Logger
  authService   services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
  middlewareLogger := log.With("Middleware", "AuthMiddleware")
  return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    if !am.authenticate(c) {
      return
    }
    c.Next()
  }
}

// RequireRole gates on the role set carried by the token claims; no store
// round trip per request. The role is checked before the rest of the chain
// runs, so a principal without it never reaches the handler.
func (am *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
  return func(c *gin.Context) {
    if !am.authenticate(c) {
      return
    }
    rd := requestdata.GetRequestData(c.Request.Context())
    if rd == nil || !rd.HasRole(role) {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
      return
    }
    c.Next()
  }
}

// authenticate validates the bearer token and attaches the principal to the
// request context. On failure it aborts with 401 and reports false; it never
// advances the chain itself.
func (am *AuthMiddleware) authenticate(c *gin.Context) bool {
  tokenString := extractToken(c)
  if tokenString == "" {
    c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return false
  }
  ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
  if err != nil {
    c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
    return false
  }
  c.Request = c.Request.WithContext(ctx)
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == 0 {
    c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
    return false
  }
  return true
}

// extractToken accepts the query parameter first (websocket upgrades cannot
// set headers from the browser) and falls back to the Authorization header.
func extractToken(c *gin.Context) string {
  if qToken := c.Query("token"); qToken != "" {
    return qToken
  }
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return authHeader[7:]
  }
  return ""
}
