package api

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"cafe-order-service/internal/entity"
	"cafe-order-service/internal/service"
)

// NewJWTMiddleware validates the bearer token on protected routes. A missing
// or expired token answers with the body the clients key on to force a
// re-login instead of a retry.
func NewJWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: secret,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return &service.JwtCustomClaims{}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(401, map[string]interface{}{"success": false, "message": "Token expired"})
		},
	})
}

// RequireStaff gates staff/admin routes.
func RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := claimsFrom(c)
		if claims == nil || (claims.Role != entity.RoleStaff && claims.Role != entity.RoleAdmin) {
			return c.JSON(403, map[string]string{"error": "staff access required"})
		}
		return next(c)
	}
}

// claimsFrom pulls the parsed claims the JWT middleware stashed on the
// context.
func claimsFrom(c echo.Context) *service.JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, _ := token.Claims.(*service.JwtCustomClaims)
	return claims
}

// httpError maps the error taxonomy onto status codes. Everything not in the
// taxonomy is a plain 500.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return c.JSON(400, map[string]string{"error": err.Error()})
	case errors.Is(err, entity.ErrInvalidPromo), errors.Is(err, entity.ErrInsufficientPoints),
		errors.Is(err, entity.ErrUnavailableItems), errors.Is(err, entity.ErrEmptyCart):
		return c.JSON(422, map[string]string{"error": err.Error()})
	case errors.Is(err, entity.ErrInvalidTransition), errors.Is(err, entity.ErrDuplicateCheckout):
		return c.JSON(409, map[string]string{"error": err.Error()})
	case errors.Is(err, entity.ErrNotOrderOwner):
		return c.JSON(403, map[string]string{"error": err.Error()})
	case errors.Is(err, entity.ErrOrderNotFound):
		return c.JSON(404, map[string]string{"error": err.Error()})
	case errors.Is(err, entity.ErrSessionExpired):
		return c.JSON(401, map[string]interface{}{"success": false, "message": "Token expired"})
	default:
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
}
