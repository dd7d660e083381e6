package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/r7ala/r7ala-backend/internal/handlers"
  "github.com/r7ala/r7ala-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler           *handlers.AuthHandler
  ChatHandler           *handlers.ChatHandler
  AuthMiddleware        *middleware.AuthMiddleware
  WsHandler             gin.HandlerFunc
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  //-----------------------------------------
  // Cors Setup
  //-----------------------------------------
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:3000",
      "https://r7ala.app",
      "https://www.r7ala.app",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  //-----------------------------------------
  // Health Routes
  //-----------------------------------------
  router.GET("/healthz", handlers.Healthz)

  //-----------------------------------------
  // Public Routes
  //-----------------------------------------
  api := router.Group("/api")
  {
    api.POST("/login", cfg.AuthHandler.Login)
  }

  //------------------------------------------
  // Protected Routes
  //------------------------------------------
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  protected.GET("/ws", cfg.WsHandler)

  //Chats
  protected.POST("/chats", cfg.ChatHandler.CreateChat)
  protected.GET("/chats", cfg.ChatHandler.GetChats)
  protected.GET("/chats/:chatId/messages", cfg.ChatHandler.GetMessages)
  protected.POST("/chats/:chatId/messages", cfg.ChatHandler.SendMessage)
  protected.DELETE("/chats/:chatId/messages/:messageId", cfg.ChatHandler.DeleteMessage)

  return router
}
