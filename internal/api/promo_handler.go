package api

import (
	"github.com/labstack/echo/v4"

	"cafe-order-service/internal/entity"
	"cafe-order-service/internal/service"
)

type PromoHandler struct {
	promoService *service.PromoService
}

func NewPromoHandler(promoService *service.PromoService) *PromoHandler {
	return &PromoHandler{promoService: promoService}
}

// CreatePromo registers a promo code --> POST /api/staff/create-promo
func (h *PromoHandler) CreatePromo(c echo.Context) error {
	promo := entity.PromoCode{}
	if err := c.Bind(&promo); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	created, err := h.promoService.CreatePromo(c.Request().Context(), &promo)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, created)
}

// ListPromos returns every promo code --> GET /api/staff/get-all-promo
func (h *PromoHandler) ListPromos(c echo.Context) error {
	promos, err := h.promoService.ListPromos(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, promos)
}
