package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/recipeplanner/backend/internal/middleware"
	"github.com/recipeplanner/backend/internal/models"
	"github.com/recipeplanner/backend/internal/services"
	"github.com/recipeplanner/backend/pkg/logger"
	"github.com/recipeplanner/backend/pkg/utils"
	"gorm.io/gorm"
)

// AdminHandler serves the moderation surface. Route-level middleware
// already requires a moderator; per-action rules still go through
// services.CanAct so the protective invariants hold.
type AdminHandler struct {
	DB *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{DB: db}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := h.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading users")
	}
	return utils.JSON(c, fiber.StatusOK, users)
}

type blockUserRequest struct {
	Block bool `json:"block"`
}

// BlockUser sets the target's blocked flag. Blocking bumps the token
// version so outstanding tokens die immediately; unblocking does not,
// the user simply logs in again.
func (h *AdminHandler) BlockUser(c *fiber.Ctx) error {
	actor := middleware.GetCurrentUser(c)
	if actor == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	targetID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var req blockUserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var target models.User
	if err := h.DB.First(&target, "id = ?", targetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "User not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	if !services.CanAct(actor, services.ActionBlockUser, services.TargetingUser(&target)) {
		if target.Role == models.UserRoleSuperadmin {
			return utils.Error(c, fiber.StatusForbidden, "Cannot block superadmin")
		}
		return utils.Error(c, fiber.StatusForbidden, "Not authorized")
	}

	updates := map[string]interface{}{"is_blocked": req.Block}
	// Every block request revokes tokens, even when the flag was already
	// set.
	if req.Block {
		target.TokenVersion++
		updates["token_version"] = target.TokenVersion
	}
	target.IsBlocked = req.Block

	if err := h.DB.Model(&target).Updates(updates).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating user")
	}

	logger.InfoWithUser(actor.ID.String(), "user_block_changed", map[string]interface{}{
		"target_id":  target.ID.String(),
		"is_blocked": target.IsBlocked,
	})

	return utils.JSON(c, fiber.StatusOK, fiber.Map{
		"ok": true,
		"user": fiber.Map{
			"id":        target.ID,
			"isBlocked": target.IsBlocked,
		},
	})
}

type changeRoleRequest struct {
	Role models.UserRole `json:"role"`
}

// ChangeRole promotes or demotes between user and admin. Superadmin is
// never granted or revoked here; every role change revokes the target's
// outstanding tokens so the old role claim cannot be replayed.
func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	actor := middleware.GetCurrentUser(c)
	if actor == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	targetID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var req changeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Role != models.UserRoleUser && req.Role != models.UserRoleAdmin {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid role")
	}

	var target models.User
	if err := h.DB.First(&target, "id = ?", targetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "User not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	if !services.CanAct(actor, services.ActionChangeRole, services.TargetingUser(&target)) {
		return utils.Error(c, fiber.StatusForbidden, "Not authorized")
	}

	target.Role = req.Role
	target.TokenVersion++

	if err := h.DB.Model(&target).Updates(map[string]interface{}{
		"role":          target.Role,
		"token_version": target.TokenVersion,
	}).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating user")
	}

	logger.InfoWithUser(actor.ID.String(), "user_role_changed", map[string]interface{}{
		"target_id": target.ID.String(),
		"role":      string(target.Role),
	})

	return utils.JSON(c, fiber.StatusOK, fiber.Map{
		"ok": true,
		"user": fiber.Map{
			"id":   target.ID,
			"role": target.Role,
		},
	})
}

// ListPosts returns every recipe, removed and private included, with
// owner summaries for the moderation table.
func (h *AdminHandler) ListPosts(c *fiber.Ctx) error {
	var recipes []models.Recipe
	if err := h.DB.Order("created_at DESC").Find(&recipes).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading posts")
	}

	recipesHandler := RecipesHandler{DB: h.DB}
	views, err := recipesHandler.views(recipes)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed resolving post authors")
	}
	return utils.JSON(c, fiber.StatusOK, views)
}

type removePostRequest struct {
	Remove bool `json:"remove"`
}

// RemovePost soft-removes a recipe from the public feed or restores
// it. The row stays intact so the owner keeps their content.
func (h *AdminHandler) RemovePost(c *fiber.Ctx) error {
	actor := middleware.GetCurrentUser(c)
	if actor == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	recipeID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var req removePostRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var recipe models.Recipe
	if err := h.DB.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "Post not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading post")
	}

	if !services.CanAct(actor, services.ActionRemovePost, nil) {
		return utils.Error(c, fiber.StatusForbidden, "Not authorized")
	}

	recipe.IsRemoved = req.Remove
	if req.Remove {
		removedBy := actor.ID
		recipe.RemovedByID = &removedBy
	} else {
		recipe.RemovedByID = nil
	}

	if err := h.DB.Model(&recipe).Updates(map[string]interface{}{
		"is_removed":    recipe.IsRemoved,
		"removed_by_id": recipe.RemovedByID,
	}).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating post")
	}

	logger.InfoWithUser(actor.ID.String(), "post_removal_changed", map[string]interface{}{
		"recipe_id":  recipe.ID.String(),
		"is_removed": recipe.IsRemoved,
	})

	return utils.JSON(c, fiber.StatusOK, fiber.Map{
		"ok": true,
		"post": fiber.Map{
			"id":        recipe.ID,
			"isRemoved": recipe.IsRemoved,
		},
	})
}

// DeletePost hard-deletes a recipe row. Superadmin only.
func (h *AdminHandler) DeletePost(c *fiber.Ctx) error {
	actor := middleware.GetCurrentUser(c)
	if actor == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if !services.CanAct(actor, services.ActionHardDeletePost, nil) {
		return utils.Error(c, fiber.StatusForbidden, "Not authorized")
	}

	recipeID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	result := h.DB.Delete(&models.Recipe{}, "id = ?", recipeID)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting post")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "Post not found")
	}

	logger.InfoWithUser(actor.ID.String(), "post_hard_deleted", map[string]interface{}{
		"recipe_id": recipeID.String(),
	})

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"ok": true})
}
