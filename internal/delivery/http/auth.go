package http

import (
	"net/http"

	"market-tips/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAuth(auth *echo.Group) {
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.RefreshToken)
	auth.POST("/logout", h.Logout, h.jwtMiddleware())
	auth.GET("/csrf-token", h.GetCSRFToken, h.jwtMiddleware())

	auth.GET("/:provider/authorize", h.OAuthAuthorize)
	auth.GET("/:provider/callback", h.OAuthCallback)
}

func (h *HttpAPIHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}

	user, err := h.service.AuthService.Register(c.Request().Context(), req)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse("User registered", user))
}

func (h *HttpAPIHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}

	tokens, err := h.service.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

func (h *HttpAPIHandler) RefreshToken(c echo.Context) error {
	var req dto.RefreshRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return h.handleServiceError(c, err)
	}

	tokens, err := h.service.AuthService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout is stateless: tokens expire on their own, the client drops them.
func (h *HttpAPIHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewBaseResponse("Logged out", nil))
}

func (h *HttpAPIHandler) GetCSRFToken(c echo.Context) error {
	token, err := h.service.CSRFService.GenerateToken()
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.CSRFTokenResponse{CSRFToken: token})
}

// OAuthAuthorize redirects the browser to the provider's consent screen.
func (h *HttpAPIHandler) OAuthAuthorize(c echo.Context) error {
	provider := c.Param("provider")
	if provider != dto.ProviderGoogle && provider != dto.ProviderGitHub {
		return c.JSON(http.StatusNotFound, dto.NewErrorResponse("Unknown oauth provider", "UNKNOWN_PROVIDER"))
	}

	resp, err := h.service.OAuthService.AuthorizeURL(c.Request().Context(), provider)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.Redirect(http.StatusFound, resp.AuthorizationURL)
}

func (h *HttpAPIHandler) OAuthCallback(c echo.Context) error {
	provider := c.Param("provider")
	if provider != dto.ProviderGoogle && provider != dto.ProviderGitHub {
		return c.JSON(http.StatusNotFound, dto.NewErrorResponse("Unknown oauth provider", "UNKNOWN_PROVIDER"))
	}

	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return c.JSON(http.StatusBadRequest, dto.NewErrorResponse("code and state are required", "BAD_REQUEST"))
	}

	tokens, err := h.service.OAuthService.HandleCallback(c.Request().Context(), provider, code, state)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}
