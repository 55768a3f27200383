package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/TesslaRay/claudio-aleph-2025/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register attaches all v1 routes under the /v1 prefix.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/v1")
	registerClaudioRoutes(group, r.handlers.Claudio)
	registerCaseRoutes(group, r.handlers.Case)
	registerConversationRoutes(group, r.handlers.Conversation)
}
