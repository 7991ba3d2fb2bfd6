package services

import (
	"github.com/google/uuid"
	"github.com/recipeplanner/backend/internal/models"
)

// Action names a capability checked through CanAct. Every role- or
// ownership-gated operation in the handlers resolves through this set;
// no handler re-derives authorization on its own.
type Action string

const (
	ActionReadPublic Action = "read_public"

	ActionEditRecipe        Action = "recipe.edit"
	ActionDeleteRecipe      Action = "recipe.delete"
	ActionViewPrivateRecipe Action = "recipe.view_private"

	ActionViewList   Action = "list.view"
	ActionEditList   Action = "list.edit"
	ActionDeleteList Action = "list.delete"

	ActionViewModeration Action = "moderation.view"
	ActionBlockUser      Action = "user.block"
	ActionChangeRole     Action = "user.change_role"
	ActionRemovePost     Action = "post.soft_remove"
	ActionHardDeletePost Action = "post.hard_delete"
)

// Resource carries the authorization-relevant facts about the target.
// OwnerID is set for owned resources (recipes, item lists); TargetUser
// for actions aimed at another account.
type Resource struct {
	OwnerID    *uuid.UUID
	TargetUser *models.User
}

// OwnedBy builds a Resource for an owner-checked entity.
func OwnedBy(ownerID uuid.UUID) *Resource {
	return &Resource{OwnerID: &ownerID}
}

// TargetingUser builds a Resource for a user-targeted admin action.
func TargetingUser(target *models.User) *Resource {
	return &Resource{TargetUser: target}
}

// CanAct decides whether actor may perform action on resource. It is a
// pure function of its arguments. Evaluation order: public reads,
// protective invariants, ownership, moderation grants, superadmin-only
// grants, then deny.
func CanAct(actor *models.User, action Action, resource *Resource) bool {
	if action == ActionReadPublic {
		return true
	}
	if actor == nil {
		return false
	}

	// Protective invariants hold for every caller, superadmin included.
	switch action {
	case ActionBlockUser:
		if resource == nil || resource.TargetUser == nil {
			return false
		}
		if resource.TargetUser.Role == models.UserRoleSuperadmin {
			return false
		}
	case ActionChangeRole:
		if resource == nil || resource.TargetUser == nil {
			return false
		}
		if resource.TargetUser.Role == models.UserRoleSuperadmin {
			return false
		}
		if resource.TargetUser.ID == actor.ID {
			return false
		}
	}

	if resource != nil && resource.OwnerID != nil && *resource.OwnerID == actor.ID {
		switch action {
		case ActionEditRecipe, ActionDeleteRecipe, ActionViewPrivateRecipe,
			ActionViewList, ActionEditList, ActionDeleteList:
			return true
		}
	}

	if actor.IsModerator() {
		switch action {
		case ActionViewModeration, ActionBlockUser, ActionRemovePost,
			ActionDeleteRecipe, ActionViewPrivateRecipe,
			ActionViewList, ActionEditList, ActionDeleteList:
			return true
		}
	}

	if actor.Role == models.UserRoleSuperadmin {
		switch action {
		case ActionChangeRole, ActionHardDeletePost:
			return true
		}
	}

	return false
}
