package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"cafe-order-service/internal/entity"
	"cafe-order-service/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Checkout creates an order from the caller's cart --> POST /api/cart/checkout
func (h *OrderHandler) Checkout(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	req := service.CheckoutRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	req.IdempotentKey = c.Request().Header.Get("Idempotent-Key")

	order, err := h.orderService.Checkout(c.Request().Context(), claims.UserID, req)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, order)
}

// MyOrders lists the caller's visible orders --> GET /api/order/my-orders/:userId
func (h *OrderHandler) MyOrders(c echo.Context) error {
	claims := claimsFrom(c)
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}
	if claims == nil || (claims.Role == entity.RoleCustomer && claims.UserID != userID) {
		return c.JSON(403, map[string]string{"error": "forbidden"})
	}

	orders, err := h.orderService.ListUserOrders(c.Request().Context(), userID, claims.Role)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, orders)
}

// GetOrder retrieves one order --> GET /api/order/:orderId
func (h *OrderHandler) GetOrder(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}
	orderID, err := strconv.Atoi(c.Param("orderId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), orderID, claims.UserID, claims.Role)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, order)
}

// UpdateOrder transitions an order's status --> POST /api/order/update-order/:orderId
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}
	orderID, err := strconv.Atoi(c.Param("orderId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	body := struct {
		OrderStatus entity.OrderStatus `json:"orderStatus"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	order, err := h.orderService.Transition(c.Request().Context(), orderID, body.OrderStatus, claims.Role, claims.UserID)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, order)
}

// DeleteOrder hides an order from the caller's history --> DELETE /api/order/delete/:orderId
//
// This is not a status change: the canonical record survives for staff and
// admin, only the owner's list view forgets it.
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}
	orderID, err := strconv.Atoi(c.Param("orderId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	if err := h.orderService.RemoveFromHistory(c.Request().Context(), orderID, claims.UserID); err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, map[string]interface{}{"success": true, "message": "Order removed from history"})
}
