package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"picstream/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// deniedJTI reports whether a token ID has been revoked (logout). Wired by
// the cache package at startup; nil means no denylist is available and all
// otherwise-valid tokens are accepted.
var deniedJTI func(ctx context.Context, jti string) bool

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// SetTokenDenylist wires the revoked-token lookup used by AuthRequired.
func SetTokenDenylist(fn func(ctx context.Context, jti string) bool) {
	deniedJTI = fn
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Authorization header required",
		})
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid authorization header format",
		})
	}

	tokenString := parts[1]

	// Parse and validate token
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid or expired token",
		})
	}

	// Extract claims
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token claims",
		})
	}

	// Extract user ID from "sub" claim (subject claim per RFC 7519)
	subClaim, ok := claims["sub"]
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token structure - missing subject",
		})
	}

	subStr, ok := subClaim.(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token subject type",
		})
	}

	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid user ID in token",
		})
	}

	// Reject revoked tokens (logged-out sessions)
	if jti, ok := claims["jti"].(string); ok && deniedJTI != nil {
		if deniedJTI(c.Context(), jti) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Session has been logged out",
			})
		}
	}

	// Store identity in context for handlers
	c.Locals("userID", uint(userIDVal))
	if jti, ok := claims["jti"].(string); ok {
		c.Locals("jti", jti)
	}
	if exp, ok := claims["exp"].(float64); ok {
		c.Locals("tokenExp", time.Unix(int64(exp), 0))
	}

	return c.Next()
}
