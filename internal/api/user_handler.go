package api

import (
	"github.com/labstack/echo/v4"

	"cafe-order-service/internal/service"
)

type UserHandler struct {
	userService   *service.UserService
	rewardService *service.RewardService
}

func NewUserHandler(userService *service.UserService, rewardService *service.RewardService) *UserHandler {
	return &UserHandler{userService: userService, rewardService: rewardService}
}

// Register creates a customer account --> POST /api/users/register
func (h *UserHandler) Register(c echo.Context) error {
	req := struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	user, err := h.userService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, user)
}

// Me returns the caller's profile with their point balance --> GET /api/users/me
func (h *UserHandler) Me(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	user, err := h.userService.Profile(c.Request().Context(), claims.UserID)
	if err != nil {
		return httpError(c, err)
	}

	account, err := h.rewardService.Account(c.Request().Context(), claims.UserID)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, map[string]interface{}{
		"user":          user,
		"reward_points": account.Balance,
	})
}

// Login logs in a user --> POST /api/users/login
func (h *UserHandler) Login(c echo.Context) error {
	login := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	if err := c.Bind(&login); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	token, err := h.userService.Login(c.Request().Context(), login.Email, login.Password)
	if err != nil {
		return c.JSON(401, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, map[string]string{"token": token})
}

// ValidateSession checks the server-side session mirror --> GET /api/users/validate
func (h *UserHandler) ValidateSession(c echo.Context) error {
	token := c.Request().Header.Get("Authorization")
	if token == "" {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	if err := h.userService.ValidateSession(c.Request().Context(), token); err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, map[string]string{"message": "Session is valid"})
}

// RewardBalance returns the caller's point balance --> GET /api/rewards/balance
//
// The canonical field is reward_points; any other spelling clients carry
// around is presentation-layer noise.
func (h *UserHandler) RewardBalance(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	account, err := h.rewardService.Account(c.Request().Context(), claims.UserID)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, map[string]int{"reward_points": account.Balance})
}
