package middleware

import (
	"strings"

	"inkpress/internal/entity"
	jwtPkg "inkpress/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"
)

// NewTokenMiddleware verifies the Bearer token and stores the caller's
// identity in Locals("user"). Every failure answers with the same 401.
func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")

	if authHeader == "" {
		m.log.WithFields(logrus.Fields{
			"path":   ctx.Path(),
			"method": ctx.Method(),
		}).Warn("Authorization header is missing")
		return unauthorized(ctx)
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		m.log.WithFields(logrus.Fields{
			"path": ctx.Path(),
		}).Warn("Authorization header format is invalid")
		return unauthorized(ctx)
	}

	userToken, err := jwtPkg.VerifyTokenHeader(ctx, AccessTokenSecret)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"path":  ctx.Path(),
			"error": err.Error(),
		}).Warn("Token verification failed")
		return unauthorized(ctx)
	}

	user, err := jwtPkg.UserDataFromClaims(userToken)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"path":  ctx.Path(),
			"error": err.Error(),
		}).Warn("Token claims are missing required fields")
		return unauthorized(ctx)
	}

	ctx.Locals("user", user)
	return ctx.Next()
}

// RequireRoles gates a route to the listed roles. It must run after
// NewTokenMiddleware; a wrong role answers the same 401 as a bad token.
func (m *middleware) RequireRoles(roles ...string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, ok := ctx.Locals("user").(entity.UserLoginData)
		if !ok {
			return unauthorized(ctx)
		}

		for _, role := range roles {
			if user.Role == role {
				return ctx.Next()
			}
		}

		m.log.WithFields(logrus.Fields{
			"path":    ctx.Path(),
			"user_id": user.ID,
			"role":    user.Role,
		}).Warn("Role not allowed for route")
		return unauthorized(ctx)
	}
}

func unauthorized(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   "Unauthorized, access token invalid or expired",
	})
}
