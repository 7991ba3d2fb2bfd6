package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/recipeplanner/backend/internal/middleware"
	"github.com/recipeplanner/backend/internal/models"
	"github.com/recipeplanner/backend/internal/services"
	"github.com/recipeplanner/backend/internal/storage"
	"github.com/recipeplanner/backend/pkg/logger"
	"github.com/recipeplanner/backend/pkg/utils"
	"gorm.io/gorm"
)

const (
	recipeImageFolder = "recipes/images"
	recipeVideoFolder = "recipes/videos"
)

type RecipesHandler struct {
	DB    *gorm.DB
	Media *storage.MediaStore
}

func NewRecipesHandler(db *gorm.DB, media *storage.MediaStore) *RecipesHandler {
	return &RecipesHandler{DB: db, Media: media}
}

// ownerSummary is the denormalized author block attached to feed
// entries and comments.
type ownerSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
}

type commentView struct {
	UserID    uuid.UUID    `json:"userID"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"createdAt"`
	User      ownerSummary `json:"user"`
}

// recipeView augments the stored recipe with the resolved owner and the
// legacy single-image field older clients still read.
type recipeView struct {
	models.Recipe
	Image string       `json:"image"`
	User  ownerSummary `json:"user"`
}

func (h *RecipesHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return utils.Error(c, fiber.StatusBadRequest, "title is required")
	}

	ingredients, err := parseIngredients(c.FormValue("ingredients"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}
	steps, err := parseSteps(c.FormValue("steps"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	isPublic := true
	if value, set := parseBoolValue(c.FormValue("isPublic")); set {
		isPublic = value
	}

	form, _ := c.MultipartForm()

	// Uploads happen before the row is written so a media-host failure
	// leaves nothing half-persisted.
	var images []string
	var uploaded []string
	cleanup := func() {
		for _, objectName := range uploaded {
			_ = h.Media.Delete(c.Context(), objectName)
		}
	}

	for _, fileHeader := range formFiles(form, "images") {
		url, objectName, err := uploadMedia(c, h.Media, recipeImageFolder, fileHeader)
		if err != nil {
			cleanup()
			return utils.Error(c, fiber.StatusBadGateway, "failed uploading image")
		}
		images = append(images, url)
		uploaded = append(uploaded, objectName)
	}

	// Legacy single-image field.
	if fileHeader := firstFormFile(form, "image"); fileHeader != nil {
		url, objectName, err := uploadMedia(c, h.Media, recipeImageFolder, fileHeader)
		if err != nil {
			cleanup()
			return utils.Error(c, fiber.StatusBadGateway, "failed uploading image")
		}
		images = append(images, url)
		uploaded = append(uploaded, objectName)
	}

	videoURL := ""
	if fileHeader := firstFormFile(form, "video"); fileHeader != nil {
		url, objectName, err := uploadMedia(c, h.Media, recipeVideoFolder, fileHeader)
		if err != nil {
			cleanup()
			return utils.Error(c, fiber.StatusBadGateway, "failed uploading video")
		}
		videoURL = url
		uploaded = append(uploaded, objectName)
	}

	recipe := models.Recipe{
		Title:       title,
		Description: c.FormValue("description"),
		Ingredients: ingredients,
		Steps:       steps,
		Images:      images,
		VideoURL:    videoURL,
		OwnerID:     currentUser.ID,
		IsPublic:    isPublic,
	}

	if err := h.DB.Create(&recipe).Error; err != nil {
		cleanup()
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating recipe")
	}

	logger.InfoWithUser(currentUser.ID.String(), "recipe_created", map[string]interface{}{
		"recipe_id": recipe.ID.String(),
		"is_public": recipe.IsPublic,
		"images":    len(recipe.Images),
	})

	return utils.JSON(c, fiber.StatusCreated, h.view(recipe, currentUser))
}

func (h *RecipesHandler) ListPublic(c *fiber.Ctx) error {
	var recipes []models.Recipe
	if err := h.DB.
		Where("is_public = ? AND is_removed = ?", true, false).
		Order("created_at DESC").
		Find(&recipes).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading public recipes")
	}

	views, err := h.views(recipes)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed resolving recipe authors")
	}
	return utils.JSON(c, fiber.StatusOK, views)
}

func (h *RecipesHandler) ListMine(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var recipes []models.Recipe
	if err := h.DB.
		Where("owner_id = ?", currentUser.ID).
		Order("created_at DESC").
		Find(&recipes).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading your recipes")
	}

	views := make([]recipeView, 0, len(recipes))
	for _, recipe := range recipes {
		views = append(views, h.view(recipe, currentUser))
	}
	return utils.JSON(c, fiber.StatusOK, views)
}

func (h *RecipesHandler) Get(c *fiber.Ctx) error {
	recipeID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var recipe models.Recipe
	if err := h.DB.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "Not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading recipe")
	}

	// Non-public and soft-removed recipes are only visible to the owner
	// or a moderator.
	if !recipe.VisibleInPublicFeed() {
		currentUser := middleware.GetCurrentUser(c)
		if currentUser == nil {
			return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
		}
		if !services.CanAct(currentUser, services.ActionViewPrivateRecipe, services.OwnedBy(recipe.OwnerID)) {
			return utils.Error(c, fiber.StatusForbidden, "Not authorized")
		}
	}

	views, err := h.views([]models.Recipe{recipe})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed resolving recipe author")
	}
	return utils.JSON(c, fiber.StatusOK, views[0])
}

func (h *RecipesHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	recipeID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var recipe models.Recipe
	if err := h.DB.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "Not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading recipe")
	}

	if !services.CanAct(currentUser, services.ActionEditRecipe, services.OwnedBy(recipe.OwnerID)) {
		return utils.Error(c, fiber.StatusForbidden, "Not authorized")
	}

	if title, set := formValue(c, "title"); set {
		recipe.Title = title
	}
	if description, set := formValue(c, "description"); set {
		recipe.Description = description
	}
	if raw, set := formValue(c, "ingredients"); set {
		ingredients, err := parseIngredients(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, err.Error())
		}
		recipe.Ingredients = ingredients
	}
	if raw, set := formValue(c, "steps"); set {
		steps, err := parseSteps(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, err.Error())
		}
		recipe.Steps = steps
	}
	if raw, set := formValue(c, "isPublic"); set {
		if value, ok := parseBoolValue(raw); ok {
			recipe.IsPublic = value
		}
	}

	images := []string(recipe.Images)

	// Replace mode: the caller lists which existing URLs survive; new
	// uploads are appended after in either mode.
	if raw, set := formValue(c, "replaceImages"); set {
		if replace, ok := parseBoolValue(raw); ok && replace {
			keepRaw, _ := formValue(c, "keepImages")
			keep, err := parseSteps(keepRaw)
			if err != nil {
				return utils.Error(c, fiber.StatusBadRequest, "invalid keepImages JSON")
			}
			images = keep
		}
	}

	form, _ := c.MultipartForm()
	var uploaded []string
	cleanup := func() {
		for _, objectName := range uploaded {
			_ = h.Media.Delete(c.Context(), objectName)
		}
	}

	newImageFiles := formFiles(form, "images")
	if fileHeader := firstFormFile(form, "image"); fileHeader != nil {
		newImageFiles = append(newImageFiles, fileHeader)
	}
	for _, fileHeader := range newImageFiles {
		url, objectName, err := uploadMedia(c, h.Media, recipeImageFolder, fileHeader)
		if err != nil {
			cleanup()
			return utils.Error(c, fiber.StatusBadGateway, "failed uploading image")
		}
		images = append(images, url)
		uploaded = append(uploaded, objectName)
	}

	if fileHeader := firstFormFile(form, "video"); fileHeader != nil {
		url, objectName, err := uploadMedia(c, h.Media, recipeVideoFolder, fileHeader)
		if err != nil {
			cleanup()
			return utils.Error(c, fiber.StatusBadGateway, "failed uploading video")
		}
		recipe.VideoURL = url
		uploaded = append(uploaded, objectName)
	}

	recipe.Images = images

	if err := h.DB.Save(&recipe).Error; err != nil {
		cleanup()
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating recipe")
	}

	return utils.JSON(c, fiber.StatusOK, h.view(recipe, currentUser))
}

func (h *RecipesHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	recipeID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var recipe models.Recipe
	if err := h.DB.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "Not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading recipe")
	}

	if !services.CanAct(currentUser, services.ActionDeleteRecipe, services.OwnedBy(recipe.OwnerID)) {
		return utils.Error(c, fiber.StatusForbidden, "Not authorized")
	}

	if err := h.DB.Delete(&models.Recipe{}, "id = ?", recipeID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting recipe")
	}

	logger.InfoWithUser(currentUser.ID.String(), "recipe_deleted", map[string]interface{}{
		"recipe_id": recipeID.String(),
	})

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"message": "Deleted"})
}

// ToggleLike flips the caller's membership in the like set. The whole
// document is rewritten; concurrent togglers race last-write-wins.
func (h *RecipesHandler) ToggleLike(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	recipeID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var recipe models.Recipe
	if err := h.DB.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "Recipe not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading recipe")
	}

	count := recipe.ToggleLike(currentUser.ID)

	if err := h.DB.Model(&recipe).Update("likes", recipe.Likes).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed saving like")
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"likes": count})
}

type commentRequest struct {
	Text string `json:"text" form:"text"`
}

func (h *RecipesHandler) AddComment(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "Comment text required")
	}

	recipeID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var recipe models.Recipe
	if err := h.DB.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "Recipe not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading recipe")
	}

	recipe.Comments = append(recipe.Comments, models.Comment{
		UserID:    currentUser.ID,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	})

	if err := h.DB.Model(&recipe).Update("comments", recipe.Comments).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed saving comment")
	}

	comments, err := h.commentViews(recipe.Comments)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed resolving comment authors")
	}
	return utils.JSON(c, fiber.StatusOK, comments)
}

// ownerSummaries resolves display fields for a set of user ids in one
// query; listings never look owners up row by row.
func (h *RecipesHandler) ownerSummaries(ids []uuid.UUID) (map[uuid.UUID]ownerSummary, error) {
	out := map[uuid.UUID]ownerSummary{}
	if len(ids) == 0 {
		return out, nil
	}

	var users []models.User
	if err := h.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}

	for _, user := range users {
		summary := ownerSummary{ID: user.ID, Name: user.Name}
		if user.AvatarURL != nil {
			summary.Avatar = *user.AvatarURL
		}
		out[user.ID] = summary
	}
	return out, nil
}

func (h *RecipesHandler) views(recipes []models.Recipe) ([]recipeView, error) {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, recipe := range recipes {
		if !seen[recipe.OwnerID] {
			seen[recipe.OwnerID] = true
			ids = append(ids, recipe.OwnerID)
		}
	}

	owners, err := h.ownerSummaries(ids)
	if err != nil {
		return nil, err
	}

	views := make([]recipeView, 0, len(recipes))
	for _, recipe := range recipes {
		owner, ok := owners[recipe.OwnerID]
		if !ok {
			owner = ownerSummary{Name: "Unknown"}
		}
		views = append(views, newRecipeView(recipe, owner))
	}
	return views, nil
}

func (h *RecipesHandler) view(recipe models.Recipe, owner *models.User) recipeView {
	summary := ownerSummary{ID: owner.ID, Name: owner.Name}
	if owner.AvatarURL != nil {
		summary.Avatar = *owner.AvatarURL
	}
	return newRecipeView(recipe, summary)
}

func newRecipeView(recipe models.Recipe, owner ownerSummary) recipeView {
	view := recipeView{Recipe: recipe, User: owner}
	if len(recipe.Images) > 0 {
		view.Image = recipe.Images[0]
	}
	if view.Ingredients == nil {
		view.Ingredients = []models.Ingredient{}
	}
	if view.Steps == nil {
		view.Steps = []string{}
	}
	if view.Images == nil {
		view.Images = []string{}
	}
	return view
}

func (h *RecipesHandler) commentViews(comments []models.Comment) ([]commentView, error) {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, comment := range comments {
		if !seen[comment.UserID] {
			seen[comment.UserID] = true
			ids = append(ids, comment.UserID)
		}
	}

	authors, err := h.ownerSummaries(ids)
	if err != nil {
		return nil, err
	}

	views := make([]commentView, 0, len(comments))
	for _, comment := range comments {
		author, ok := authors[comment.UserID]
		if !ok {
			author = ownerSummary{Name: "Unknown"}
		}
		views = append(views, commentView{
			UserID:    comment.UserID,
			Text:      comment.Text,
			CreatedAt: comment.CreatedAt,
			User:      author,
		})
	}
	return views, nil
}
