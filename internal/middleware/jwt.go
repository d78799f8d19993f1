package middleware

import (
	"errors"
	"log"
	"strings"

	"study-plan-service/internal/config"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func ValidateJWT(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token is required")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.ServiceConfig.JWT.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// GatewayOrJWT resolves the calling user. Behind the gateway the X-User-ID
// header is already set; when running standalone (local dev, direct API use)
// a Bearer token is accepted instead and the header is filled in from its
// claims so downstream handlers only ever read X-User-ID.
func GatewayOrJWT() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Get("X-User-ID") != "" {
			return c.Next()
		}

		tokenString := c.Get("Authorization")
		if tokenString == "" {
			return c.Next()
		}
		if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
			tokenString = tokenString[7:]
		}

		claims, err := ValidateJWT(tokenString)
		if err != nil {
			log.Printf("Rejected bearer token from %s: %v", c.IP(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		userID := claims.UserID
		// Clean up ObjectID string format if present
		if strings.HasPrefix(userID, "ObjectID(\"") && strings.HasSuffix(userID, "\")") {
			userID = userID[10 : len(userID)-2]
		}

		c.Request().Header.Set("X-User-ID", userID)
		return c.Next()
	}
}
