package utils

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"studio-api/core/config"
	"studio-api/core/constants"
	"studio-api/core/errors"
)

// Role distinguishes member self-service from staff actions; staff
// bypasses the cancellation cutoff and may act on other members' bookings.
type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
)

// TokenClaims is the decoded JWT payload the middleware stores in the
// request context.
type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
	Scope  string    `json:"scope"`
	jwt.RegisteredClaims
}

// GenerateToken signs a JWT for the given user with the requested scope.
func GenerateToken(userID uuid.UUID, role Role, scope string) (string, *errors.AppError) {
	cfg, ok := config.GetSafe()
	if !ok {
		return "", errors.NewAppError(errors.ErrInternalServer, "Config not initialized", nil)
	}

	ttl := time.Duration(cfg.Auth.AccessTokenTTLMin) * time.Minute
	if scope == constants.ScopeTokenRefresh {
		ttl = time.Duration(cfg.Auth.RefreshTokenTTLMin) * time.Minute
	}

	claims := TokenClaims{
		UserID: userID,
		Role:   role,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Failed to sign token", err)
	}
	return signed, nil
}

// ValidateAndParseToken verifies the signature and expiry and returns the claims.
func ValidateAndParseToken(tokenString string) (*TokenClaims, *errors.AppError) {
	cfg, ok := config.GetSafe()
	if !ok {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Config not initialized", nil)
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.Auth.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAppError(errors.ErrTokenExpired, "Token expired", err)
		}
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Invalid token", err)
	}
	if !token.Valid {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token", nil)
	}

	return claims, nil
}

// GetTokenFromHeader extracts the bearer token from an Authorization header value.
func GetTokenFromHeader(header string) (string, *errors.AppError) {
	if header == "" {
		return "", errors.NewAppError(errors.ErrMissingAuthorizationHeader, "Missing Authorization header", nil)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.NewAppError(errors.ErrInvalidTokenFormat, "Authorization header must be a Bearer token", nil)
	}
	return strings.TrimSpace(parts[1]), nil
}
