package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/TesslaRay/claudio-aleph-2025/internal/interfaces/httpserver/handlers"
)

func registerCaseRoutes(group *gin.RouterGroup, handler *handlers.CaseHandler) {
	cases := group.Group("/cases")
	cases.POST("", handler.Create)
	cases.GET("", handler.ListByUser)
	cases.DELETE("/:caseId", handler.Delete)
}
