package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"cafe-order-service/internal/service"
)

type CartHandler struct {
	carts *service.CartStore
	menu  service.MenuStore
}

func NewCartHandler(carts *service.CartStore, menu service.MenuStore) *CartHandler {
	return &CartHandler{carts: carts, menu: menu}
}

// AddItem puts a menu item into the caller's cart --> POST /api/cart/add
func (h *CartHandler) AddItem(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	body := struct {
		ItemID   int `json:"item_id"`
		Quantity int `json:"quantity"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	item, err := h.menu.GetMenuItemByID(c.Request().Context(), body.ItemID)
	if err != nil {
		return httpError(c, err)
	}

	lines := h.carts.AddItem(claims.UserID, item, body.Quantity)
	return c.JSON(200, map[string]interface{}{"cart": lines})
}

// AddToCartLegacy accepts the older body shape --> POST /api/add-to-cart
func (h *CartHandler) AddToCartLegacy(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	body := struct {
		ProductID       int `json:"productId"`
		UserID          int `json:"userId"`
		ProductQuantity int `json:"productQuantity"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if body.UserID != 0 && body.UserID != claims.UserID {
		return c.JSON(403, map[string]string{"error": "forbidden"})
	}

	item, err := h.menu.GetMenuItemByID(c.Request().Context(), body.ProductID)
	if err != nil {
		return httpError(c, err)
	}

	h.carts.AddItem(claims.UserID, item, body.ProductQuantity)
	return c.JSON(200, map[string]interface{}{"success": true, "message": "Item added to cart"})
}

// GetCart returns the caller's open cart --> GET /api/cart
func (h *CartHandler) GetCart(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	snapshot := h.carts.Snapshot(claims.UserID)
	return c.JSON(200, map[string]interface{}{"cart": snapshot.Lines})
}

// SetQuantity updates one line; zero removes it --> PUT /api/cart/:itemId
func (h *CartHandler) SetQuantity(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}
	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	body := struct {
		Quantity int `json:"quantity"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	lines := h.carts.SetQuantity(claims.UserID, itemID, body.Quantity)
	return c.JSON(200, map[string]interface{}{"cart": lines})
}

// RemoveItem drops one line from the cart --> DELETE /api/cart/:itemId
func (h *CartHandler) RemoveItem(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}
	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	lines := h.carts.RemoveItem(claims.UserID, itemID)
	return c.JSON(200, map[string]interface{}{"cart": lines})
}
