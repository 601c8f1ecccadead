package handlers

import (
	"errors"
	"net/http"

	"galleria/internal/common"
	"galleria/internal/repositories"
	"galleria/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	userRepo    repositories.UserRepository
}

func NewAuthHandlers(authService services.AuthService, userRepo repositories.UserRepository) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Signup handles POST /auth/signup
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	user, err := h.authService.Signup(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Account created successfully",
		"user":    user,
	})
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	tokens, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return c.JSON(http.StatusOK, tokens)
}

// Me handles GET /admin/me
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

// ForgotPassword handles POST /auth/forgot-password
func (h *AuthHandlers) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	err := h.authService.RequestPasswordReset(ctx, req.Email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	// Unknown addresses get the same answer as known ones.
	return c.JSON(http.StatusOK, map[string]string{
		"message": "If the account exists, a verification code has been sent",
	})
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email    string `json:"email"`
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and code are required")
	}

	if err := h.authService.ResetPassword(ctx, req.Email, req.Code, req.Password); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired verification code")
		}
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Password updated successfully",
	})
}
