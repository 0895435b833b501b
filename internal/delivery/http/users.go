package http

import (
	"net/http"

	"market-tips/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupUsers(api *echo.Group) {
	user := api.Group("/user", h.jwtMiddleware(), h.csrfMiddleware())
	user.GET("/profile", h.GetProfile)
	user.PUT("/profile", h.UpdateProfile)
	user.POST("/change-password", h.ChangePassword)
	user.POST("/disconnect-oauth", h.DisconnectOAuth)
	user.DELETE("/account", h.DeleteAccount)
}

func (h *HttpAPIHandler) GetProfile(c echo.Context) error {
	profile, err := h.service.UserService.GetProfile(c.Request().Context(), userIDFromContext(c))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *HttpAPIHandler) UpdateProfile(c echo.Context) error {
	var req dto.UpdateProfileRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}

	profile, err := h.service.UserService.UpdateProfile(c.Request().Context(), userIDFromContext(c), req)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *HttpAPIHandler) ChangePassword(c echo.Context) error {
	var req dto.ChangePasswordRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}

	if err := h.service.UserService.ChangePassword(c.Request().Context(), userIDFromContext(c), req); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse("Password changed successfully", nil))
}

func (h *HttpAPIHandler) DisconnectOAuth(c echo.Context) error {
	var req dto.OAuthDisconnectRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}

	if err := h.service.UserService.DisconnectOAuth(c.Request().Context(), userIDFromContext(c), req.Provider); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse("OAuth provider disconnected", nil))
}

func (h *HttpAPIHandler) DeleteAccount(c echo.Context) error {
	if err := h.service.UserService.DeleteAccount(c.Request().Context(), userIDFromContext(c)); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse("Account deleted", nil))
}
