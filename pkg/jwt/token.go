package jwtPkg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"inkpress/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// AccessTokenDuration is how long a signed access token stays valid.
const AccessTokenDuration = 7 * 24 * time.Hour

func Sign(data map[string]interface{}, expiresIn time.Duration) (string, int64, error) {
	expiredAt := time.Now().Add(expiresIn).Unix()

	secret := os.Getenv("JWT_ACCESS_TOKEN_SECRET")
	if secret == "" {
		return "", 0, fmt.Errorf("JWT_ACCESS_TOKEN_SECRET not set")
	}

	claims := jwt.MapClaims{}
	claims["exp"] = expiredAt

	for k, v := range data {
		claims[k] = v
	}

	to := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := to.SignedString([]byte(secret))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign token")
		return "", 0, err
	}

	return accessToken, expiredAt, nil
}

// Verify parses and validates a raw token string against the secret held in
// the given environment variable.
func Verify(accessToken string, secretEnvKey string) (*jwt.Token, error) {
	secret := os.Getenv(secretEnvKey)
	if secret == "" {
		return nil, errors.New("JWT secret not configured")
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	return token, nil
}

func VerifyTokenHeader(c *fiber.Ctx, secretEnvKey string) (*jwt.Token, error) {
	log := logrus.WithField("func", "VerifyTokenHeader")

	header := c.Get("Authorization")
	if header == "" {
		log.Error("Empty Authorization header")
		return nil, errors.New("empty Authorization header")
	}

	parts := strings.Split(header, "Bearer ")
	if len(parts) != 2 {
		log.WithField("header_parts", len(parts)).Error("Invalid Authorization format")
		return nil, errors.New("invalid Authorization format")
	}

	accessToken := strings.TrimSpace(parts[1])
	if accessToken == "" {
		log.Error("Empty token after Bearer")
		return nil, errors.New("empty token")
	}

	token, err := Verify(accessToken, secretEnvKey)
	if err != nil {
		log.WithError(err).Error("Failed to parse JWT token")
		return nil, err
	}

	return token, nil
}

// UserDataFromClaims pulls the identity fields out of a verified token.
func UserDataFromClaims(token *jwt.Token) (entity.UserLoginData, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return entity.UserLoginData{}, errors.New("invalid token claims")
	}

	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return entity.UserLoginData{}, errors.New("missing id claim")
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return entity.UserLoginData{
		ID:    id,
		Email: email,
		Role:  role,
	}, nil
}

func GetUserLoginData(c *fiber.Ctx) (entity.UserLoginData, error) {
	userData := c.Locals("user")

	user, ok := userData.(entity.UserLoginData)
	if !ok {
		return entity.UserLoginData{}, fiber.ErrUnauthorized
	}

	return user, nil
}
