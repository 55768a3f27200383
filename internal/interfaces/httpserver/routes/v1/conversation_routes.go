package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/TesslaRay/claudio-aleph-2025/internal/interfaces/httpserver/handlers"
)

func registerConversationRoutes(group *gin.RouterGroup, handler *handlers.ConversationHandler) {
	conversation := group.Group("/conversation")
	conversation.GET("", handler.History)
	conversation.GET("/last-active", handler.LastActive)
}
