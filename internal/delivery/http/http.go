package http

import (
	"errors"
	"net/http"
	"os"

	"market-tips/config"
	"market-tips/internal/dto"
	"market-tips/internal/service"
	"market-tips/pkg/eventstore"
	"market-tips/pkg/logger"
	pkgMiddleware "market-tips/pkg/middleware"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
	cfg       *config.Config
	logger    *logger.Logger
	events    *eventstore.Store
}

func NewHttpAPIHandler(
	e *echo.Echo,
	validator *goValidator.Validate,
	svc *service.Service,
	cfg *config.Config,
	log *logger.Logger,
	events *eventstore.Store,
) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      e,
		validator: validator,
		service:   svc,
		cfg:       cfg,
		logger:    log,
		events:    events,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.GET("/health", h.Health)
	h.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := h.echo.Group("/api")
	h.SetupTips(api)
	h.SetupUsers(api)

	auth := h.echo.Group("/auth")
	h.SetupAuth(auth)

	debug := h.echo.Group("/debug")
	h.SetupDebug(debug)

	// Dashboard SPA, when a build exists.
	if _, err := os.Stat(h.cfg.API.FrontendDir); err == nil {
		h.echo.Static("/", h.cfg.API.FrontendDir)
	}
}

func (h *HttpAPIHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HttpAPIHandler) jwtMiddleware() echo.MiddlewareFunc {
	return pkgMiddleware.NewJWTAuthMiddleware(h.service.TokenService)
}

func (h *HttpAPIHandler) csrfMiddleware() echo.MiddlewareFunc {
	return pkgMiddleware.NewCSRFMiddleware(h.service.CSRFService)
}

func (h *HttpAPIHandler) bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return h.validator.Struct(req)
}

func userIDFromContext(c echo.Context) uint {
	userID, _ := c.Get(pkgMiddleware.ContextKeyUserID).(uint)
	return userID
}

// handleServiceError maps service errors onto the API's status codes.
func (h *HttpAPIHandler) handleServiceError(c echo.Context, err error) error {
	var validationErrs goValidator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err.Error(), "VALIDATION_ERROR"))

	case errors.Is(err, service.ErrEmailExists):
		return c.JSON(http.StatusConflict, dto.NewErrorResponse("Email already registered", "EMAIL_EXISTS"))

	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("Invalid email or password", "INVALID_CREDENTIALS"))

	case errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("Invalid or expired token", "INVALID_TOKEN"))

	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, dto.NewErrorResponse("User not found", "USER_NOT_FOUND"))

	case errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrOAuthOnlyAccount),
		errors.Is(err, service.ErrProviderNotLinked),
		errors.Is(err, service.ErrLastAuthMethod),
		errors.Is(err, service.ErrInvalidOAuthState):
		return c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err.Error(), "BAD_REQUEST"))

	default:
		h.logger.ErrorContext(c.Request().Context(), "Unhandled service error", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", "INTERNAL_ERROR"))
	}
}
