package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/TesslaRay/claudio-aleph-2025/internal/interfaces/httpserver/handlers"
)

func registerClaudioRoutes(group *gin.RouterGroup, handler *handlers.ClaudioHandler) {
	claudio := group.Group("/claudio")
	claudio.POST("/chat", handler.Chat)
	claudio.POST("/generate-contract-for-case", handler.GenerateContract)
	claudio.GET("/contract/:caseId", handler.GetContract)
	claudio.GET("/agreement/:caseId", handler.GetAgreement)
}
