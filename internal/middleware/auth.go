package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/recipeplanner/backend/internal/models"
	"github.com/recipeplanner/backend/internal/services"
	"github.com/recipeplanner/backend/pkg/logger"
	"github.com/recipeplanner/backend/pkg/utils"
	"gorm.io/gorm"
)

const currentUserKey = "currentUser"

type AuthMiddleware struct {
	DB *gorm.DB
}

func NewAuthMiddleware(db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{DB: db}
}

func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	})
}

func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	user, errMessage := a.resolveUser(c)
	if user == nil {
		logger.Warn("auth_rejected", map[string]interface{}{
			"ip":     c.IP(),
			"path":   c.Path(),
			"reason": errMessage,
		})
		return utils.Error(c, fiber.StatusUnauthorized, errMessage)
	}

	c.Locals(currentUserKey, user)
	c.Locals("userID", user.ID.String())
	return c.Next()
}

func (a *AuthMiddleware) OptionalAuth(c *fiber.Ctx) error {
	if user, _ := a.resolveUser(c); user != nil {
		c.Locals(currentUserKey, user)
		c.Locals("userID", user.ID.String())
	}
	return c.Next()
}

// resolveUser validates the bearer token and re-fetches the user so that
// revocation (block, tokenVersion bump, deleted account) takes effect on
// tokens whose signature and expiry are still valid.
func (a *AuthMiddleware) resolveUser(c *fiber.Ctx) (*models.User, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, "missing authorization header"
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if tokenString == authHeader || tokenString == "" {
		return nil, "invalid authorization format"
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		return nil, "invalid or expired token"
	}

	var user models.User
	if err := a.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return nil, "user not found"
	}

	if user.IsBlocked {
		return nil, "account blocked"
	}
	if claims.TokenVersion != user.TokenVersion {
		return nil, "token revoked"
	}

	return &user, ""
}

// RequireModeration gates the admin surface on the authorization model
// rather than on an inline role comparison.
func RequireModeration(c *fiber.Ctx) error {
	user := GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !services.CanAct(user, services.ActionViewModeration, nil) {
		return utils.Error(c, fiber.StatusForbidden, "admin access required")
	}
	return c.Next()
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	value := c.Locals(currentUserKey)
	if value == nil {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
