package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/cgchiraggupta/kalakar/utils"
)

// Claims is the token payload. The subject claim carries the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// Auth validates the bearer token and puts the caller's user id into
// locals under "user_id". Requests without a valid token never reach
// the handlers.
func Auth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return utils.RespondWithError(c, fiber.StatusUnauthorized, "Missing Authorization header")
		}
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return utils.RespondWithError(c, fiber.StatusUnauthorized, "Authorization header must be a bearer token")
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.RespondWithError(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusUnauthorized, "Token subject is not a valid user id")
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// UserID pulls the authenticated user id set by Auth.
func UserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals("user_id").(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
