package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"tickethub/config"
)

// GenerateJWT generates a session token for a staff user. The guilds claim
// lists the servers the upstream OAuth flow authorized the user for.
func GenerateJWT(userID, username, avatar string, guilds []string) (string, error) {
	claims := jwt.MapClaims{
		"userId":   userID,
		"username": username,
		"avatar":   avatar,
		"guilds":   guilds,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(24 * time.Hour).Unix(), // expiry 24h
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	return token.SignedString(jwtSecret)
}

// ValidateToken parses a token string and returns its claims if valid.
func ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return nil, fmt.Errorf("invalid token payload")
	}
	return claims, nil
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
	}

	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
	}

	claims, err := ValidateToken(authHeader[len("Bearer "):])
	if err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
	}

	userID, _ := claims["userId"].(string)
	username, _ := claims["username"].(string)
	avatar, _ := claims["avatar"].(string)

	c.Locals("userId", userID)
	c.Locals("username", username)
	c.Locals("avatar", avatar)
	c.Locals("guilds", guildsFromClaims(claims))

	return c.Next()
}

// guildsFromClaims lifts the guilds claim back into a string slice.
func guildsFromClaims(claims jwt.MapClaims) []string {
	raw, ok := claims["guilds"].([]interface{})
	if !ok {
		return nil
	}
	guilds := make([]string, 0, len(raw))
	for _, g := range raw {
		if s, ok := g.(string); ok {
			guilds = append(guilds, s)
		}
	}
	return guilds
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}
