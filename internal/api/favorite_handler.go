package api

import (
	"github.com/labstack/echo/v4"

	"cafe-order-service/internal/service"
)

type FavoriteHandler struct {
	favorites *service.FavoriteService
}

func NewFavoriteHandler(favorites *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

// Toggle flips an item's favorite state --> POST /api/favorite/add
func (h *FavoriteHandler) Toggle(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	body := struct {
		ItemID int `json:"item_id"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	isFavorite, err := h.favorites.Toggle(c.Request().Context(), claims.UserID, body.ItemID, nil)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, map[string]interface{}{"is_favorite": isFavorite})
}

// Remove deletes an item from the favorites set --> DELETE /api/favorites/remove
func (h *FavoriteHandler) Remove(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	body := struct {
		ItemID int `json:"item_id"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	if err := h.favorites.Remove(c.Request().Context(), claims.UserID, body.ItemID); err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, map[string]interface{}{"success": true})
}

// List returns the caller's favorites --> GET /api/favorite/user-favorites
func (h *FavoriteHandler) List(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	items, err := h.favorites.List(c.Request().Context(), claims.UserID)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, map[string]interface{}{"favorites": items})
}

// Merge unions a client-local anonymous set into the account --> POST /api/favorite/merge
func (h *FavoriteHandler) Merge(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	body := struct {
		ItemIDs []int `json:"item_ids"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	local := service.NewLocalFavorites()
	for _, id := range body.ItemIDs {
		if !local.Contains(id) {
			local.Toggle(id)
		}
	}

	if err := h.favorites.MergeOnLogin(c.Request().Context(), claims.UserID, local); err != nil {
		return httpError(c, err)
	}

	items, err := h.favorites.List(c.Request().Context(), claims.UserID)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, map[string]interface{}{"favorites": items})
}
