package api

import (
	"github.com/labstack/echo/v4"

	"cafe-order-service/internal/entity"
	"cafe-order-service/internal/service"
)

type MenuHandler struct {
	menuService *service.MenuService
}

func NewMenuHandler(menuService *service.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// ListMenu returns the full catalog --> GET /api/menu
func (h *MenuHandler) ListMenu(c echo.Context) error {
	items, err := h.menuService.List(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, items)
}

// CreateMenuItem adds a catalog item --> POST /api/staff/create-menu
func (h *MenuHandler) CreateMenuItem(c echo.Context) error {
	item := &entity.MenuItem{Available: true}
	if err := c.Bind(item); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	created, err := h.menuService.Create(c.Request().Context(), item)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, created)
}
