package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/recipeplanner/backend/internal/middleware"
	"github.com/recipeplanner/backend/internal/models"
	"github.com/recipeplanner/backend/internal/storage"
	"github.com/recipeplanner/backend/pkg/logger"
	"github.com/recipeplanner/backend/pkg/utils"
	"gorm.io/gorm"
)

const avatarFolder = "recipe-users"

type AuthHandler struct {
	DB    *gorm.DB
	Media *storage.MediaStore
}

func NewAuthHandler(db *gorm.DB, media *storage.MediaStore) *AuthHandler {
	return &AuthHandler{DB: db, Media: media}
}

type signupRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "Missing fields")
	}

	var existing models.User
	if err := h.DB.First(&existing, "email = ?", req.Email).Error; err == nil {
		return utils.Error(c, fiber.StatusBadRequest, "Email already exists")
	} else if err != gorm.ErrRecordNotFound {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking existing user")
	}

	var avatarURL *string
	if form, err := c.MultipartForm(); err == nil {
		if avatar := firstFormFile(form, "avatar"); avatar != nil {
			url, _, err := uploadMedia(c, h.Media, avatarFolder, avatar)
			if err != nil {
				return utils.Error(c, fiber.StatusBadGateway, "failed uploading avatar")
			}
			avatarURL = &url
		}
	}

	salt, hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Salt:         salt,
		AvatarURL:    avatarURL,
		Role:         models.UserRoleUser,
	}

	if err := h.DB.Create(&user).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating user")
	}

	logger.Info("user_signed_up", map[string]interface{}{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})

	token, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"token": token, "user": user})
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.First(&user, "email = ?", req.Email).Error; err != nil {
		logger.Warn("login_failed_user_not_found", map[string]interface{}{
			"email": req.Email,
			"ip":    c.IP(),
		})
		return utils.Error(c, fiber.StatusBadRequest, "Invalid credentials")
	}

	if user.IsBlocked {
		return utils.Error(c, fiber.StatusForbidden, "Account blocked")
	}

	if !utils.CheckPassword(req.Password, user.Salt, user.PasswordHash) {
		logger.Warn("login_failed_invalid_password", map[string]interface{}{
			"user_id": user.ID.String(),
			"ip":      c.IP(),
		})
		return utils.Error(c, fiber.StatusBadRequest, "Invalid credentials")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	logger.InfoWithUser(user.ID.String(), "user_login", map[string]interface{}{
		"email": user.Email,
	})

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"token": token, "user": user})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return utils.JSON(c, fiber.StatusOK, user)
}

type updateMeRequest struct {
	Name  string `json:"name" form:"name"`
	Email string `json:"email" form:"email"`
	Phone string `json:"phone" form:"phone"`
}

// UpdateMe mirrors the profile form: name/email update when present,
// phone is cleared when absent and validated to 10 digits otherwise,
// avatar replaces on upload.
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		var existing models.User
		if err := h.DB.First(&existing, "email = ?", email).Error; err == nil {
			return utils.Error(c, fiber.StatusBadRequest, "Email already exists")
		} else if err != gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusInternalServerError, "failed checking email")
		}
		user.Email = email
	}

	if strings.TrimSpace(req.Phone) == "" {
		user.Phone = nil
	} else {
		phone, err := normalizePhone(req.Phone)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "Phone must be 10 digits")
		}
		user.Phone = &phone
	}

	if form, err := c.MultipartForm(); err == nil {
		if avatar := firstFormFile(form, "avatar"); avatar != nil {
			url, _, err := uploadMedia(c, h.Media, avatarFolder, avatar)
			if err != nil {
				return utils.Error(c, fiber.StatusBadGateway, "failed uploading avatar")
			}
			user.AvatarURL = &url
		}
	}

	if err := h.DB.Save(user).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating profile")
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"ok": true, "user": user})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return utils.Error(c, fiber.StatusBadRequest, "Missing fields")
	}

	if !utils.CheckPassword(req.CurrentPassword, user.Salt, user.PasswordHash) {
		return utils.Error(c, fiber.StatusBadRequest, "Current password is incorrect")
	}

	salt, hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to hash password")
	}

	user.Salt = salt
	user.PasswordHash = hash
	if err := h.DB.Save(user).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating password")
	}

	logger.InfoWithUser(user.ID.String(), "password_changed", nil)

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"ok": true})
}
