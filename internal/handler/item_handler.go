package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit-app/service-booking/internal/application"
	"github.com/shareit-app/service-booking/pkg/auth"
	"github.com/shareit-app/service-booking/pkg/middleware"
	"github.com/shareit-app/service-booking/pkg/response"
)

// ItemHandler handles HTTP requests for item views.
type ItemHandler struct {
	service *application.ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service *application.ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

// RegisterRoutes registers the item view routes. Every route requires a valid token.
func (h *ItemHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, extra ...gin.HandlerFunc) {
	items := r.Group("/api/v1/items")
	items.Use(middleware.AuthMiddleware(jwtManager))
	items.Use(extra...)
	{
		items.GET("", h.ListOwnerItems)
		items.GET("/:id", h.GetItem)
	}
}

// GetItem handles GET /api/v1/items/:id.
func (h *ItemHandler) GetItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return
	}

	result, err := h.service.GetItem(c.Request.Context(), itemID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListOwnerItems handles GET /api/v1/items.
func (h *ItemHandler) ListOwnerItems(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.ListOwnerItems(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
