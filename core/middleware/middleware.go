package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"studio-api/core/cache"
	"studio-api/core/constants"
	"studio-api/core/controller"
	"studio-api/core/errors"
	"studio-api/core/logger"
	"studio-api/core/utils"
)

type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// AuthMiddleware validates the bearer token, rejects blacklisted tokens,
// and stores the decoded claims in the echo context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, appErr := utils.GetTokenFromHeader(c.Request().Header.Get("Authorization"))
			if appErr != nil {
				return controller.NewErrorResponse(http.StatusUnauthorized, appErr.Code, appErr.Message)
			}

			blacklisted, err := cache.IsTokenBlacklisted(c.Request().Context(), token)
			if err != nil {
				// Redis being down must not lock every user out.
				logger.Warn("Middleware:AuthMiddleware:BlacklistCheck", "error", err)
			} else if blacklisted {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "Token revoked")
			}

			claims, appErr := utils.ValidateAndParseToken(token)
			if appErr != nil {
				return controller.NewErrorResponse(http.StatusUnauthorized, appErr.Code, appErr.Message)
			}
			if claims.Scope != constants.ScopeTokenAccess {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "Wrong token scope")
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// StaffOnly requires an authenticated staff token. Must run after AuthMiddleware.
func (m *Middleware) StaffOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
			if !ok {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "Unauthorized")
			}
			if claims.Role != utils.RoleStaff {
				return controller.NewErrorResponse(http.StatusForbidden, errors.ErrForbidden, "Staff access required")
			}
			return next(c)
		}
	}
}

// ClaimsFromContext returns the token claims set by AuthMiddleware.
func ClaimsFromContext(c echo.Context) (*utils.TokenClaims, *errors.AppError) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "No token data in context", nil)
	}
	return claims, nil
}
