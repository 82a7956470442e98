package identity

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserID extracts the authenticated user's id from JWT claims in context.
func UserID(c *fiber.Ctx) (uint, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return 0, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, errors.New("missing sub claim")
	}

	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, errors.New("malformed sub claim")
	}
	return uint(id), nil
}

// ViewerID is UserID for routes where authentication is optional: it
// returns 0 for anonymous requests instead of an error.
func ViewerID(c *fiber.Ctx) uint {
	id, err := UserID(c)
	if err != nil {
		return 0
	}
	return id
}
