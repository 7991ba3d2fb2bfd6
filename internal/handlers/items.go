package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/recipeplanner/backend/internal/middleware"
	"github.com/recipeplanner/backend/internal/models"
	"github.com/recipeplanner/backend/internal/services"
	"github.com/recipeplanner/backend/pkg/utils"
	"gorm.io/gorm"
)

type ItemsHandler struct {
	DB *gorm.DB
}

func NewItemsHandler(db *gorm.DB) *ItemsHandler {
	return &ItemsHandler{DB: db}
}

type itemRequest struct {
	Name     string `json:"name"`
	Qty      string `json:"qty"`
	Unit     string `json:"unit"`
	Obtained bool   `json:"obtained"`
}

type itemListRequest struct {
	Title string        `json:"title"`
	Items []itemRequest `json:"items"`
}

func (r itemRequest) toModel() models.ListItem {
	return models.ListItem{
		Name:     strings.TrimSpace(r.Name),
		Qty:      strings.TrimSpace(r.Qty),
		Unit:     strings.TrimSpace(r.Unit),
		Obtained: r.Obtained,
	}
}

func (h *ItemsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req itemListRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	items := make([]models.ListItem, 0, len(req.Items))
	for _, item := range req.Items {
		model := item.toModel()
		if model.Name == "" {
			continue
		}
		items = append(items, model)
	}
	if len(items) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "Provide at least one item")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Shopping List"
	}

	list := models.ItemList{
		Title:   title,
		Items:   items,
		OwnerID: currentUser.ID,
	}

	if err := h.DB.Create(&list).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating list")
	}

	return utils.JSON(c, fiber.StatusCreated, list)
}

func (h *ItemsHandler) ListMine(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var lists []models.ItemList
	if err := h.DB.
		Where("owner_id = ?", currentUser.ID).
		Order("created_at DESC").
		Find(&lists).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading lists")
	}

	return utils.JSON(c, fiber.StatusOK, lists)
}

func (h *ItemsHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	list, errStatus, errMsg := h.loadList(c, currentUser, services.ActionViewList)
	if list == nil {
		return utils.Error(c, errStatus, errMsg)
	}
	return utils.JSON(c, fiber.StatusOK, list)
}

// Update replaces title and items wholesale; the list document is the
// unit of write.
func (h *ItemsHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	list, errStatus, errMsg := h.loadList(c, currentUser, services.ActionEditList)
	if list == nil {
		return utils.Error(c, errStatus, errMsg)
	}

	var req itemListRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		list.Title = title
	}
	if req.Items != nil {
		items := make([]models.ListItem, 0, len(req.Items))
		for _, item := range req.Items {
			model := item.toModel()
			if model.Name == "" {
				continue
			}
			items = append(items, model)
		}
		if len(items) == 0 {
			return utils.Error(c, fiber.StatusBadRequest, "Provide at least one item")
		}
		list.Items = items
	}

	if err := h.DB.Save(list).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating list")
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"ok": true, "list": list})
}

func (h *ItemsHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	list, errStatus, errMsg := h.loadList(c, currentUser, services.ActionDeleteList)
	if list == nil {
		return utils.Error(c, errStatus, errMsg)
	}

	if err := h.DB.Delete(&models.ItemList{}, "id = ?", list.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting list")
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"ok": true})
}

// itemPatchRequest uses pointers so a field sent as an empty string or
// false still applies, while absent fields leave the entry alone.
type itemPatchRequest struct {
	Name     *string `json:"name"`
	Qty      *string `json:"qty"`
	Unit     *string `json:"unit"`
	Obtained *bool   `json:"obtained"`
}

// UpdateItem edits one entry in place, addressed by its position.
func (h *ItemsHandler) UpdateItem(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	list, errStatus, errMsg := h.loadList(c, currentUser, services.ActionEditList)
	if list == nil {
		return utils.Error(c, errStatus, errMsg)
	}

	index, err := c.ParamsInt("index")
	if err != nil || index < 0 || index >= len(list.Items) {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid item index")
	}

	var req itemPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	item := list.Items[index]
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Qty != nil {
		item.Qty = strings.TrimSpace(*req.Qty)
	}
	if req.Unit != nil {
		item.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.Obtained != nil {
		item.Obtained = *req.Obtained
	}
	list.Items[index] = item

	if err := h.DB.Model(list).Update("items", list.Items).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating item")
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"ok": true, "item": item, "list": list})
}

// ToggleItem flips an entry's obtained flag.
func (h *ItemsHandler) ToggleItem(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	list, errStatus, errMsg := h.loadList(c, currentUser, services.ActionEditList)
	if list == nil {
		return utils.Error(c, errStatus, errMsg)
	}

	index, err := c.ParamsInt("index")
	if err != nil || index < 0 || index >= len(list.Items) {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid item index")
	}

	list.Items[index].Obtained = !list.Items[index].Obtained

	if err := h.DB.Model(list).Update("items", list.Items).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating item")
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"ok": true, "item": list.Items[index], "list": list})
}

// DeleteItem removes one entry; later entries shift down so indexes
// stay dense.
func (h *ItemsHandler) DeleteItem(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	list, errStatus, errMsg := h.loadList(c, currentUser, services.ActionEditList)
	if list == nil {
		return utils.Error(c, errStatus, errMsg)
	}

	index, err := c.ParamsInt("index")
	if err != nil || index < 0 || index >= len(list.Items) {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid item index")
	}

	list.Items = append(list.Items[:index], list.Items[index+1:]...)

	if err := h.DB.Model(list).Update("items", list.Items).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting item")
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"ok": true, "list": list})
}

type markDoneRequest struct {
	Done bool `json:"done"`
}

// MarkDone sets the list's done flag. Setting the same value twice is a
// no-op. A bodyless call reads as done=false, matching the callers that
// send no payload.
func (h *ItemsHandler) MarkDone(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	list, errStatus, errMsg := h.loadList(c, currentUser, services.ActionEditList)
	if list == nil {
		return utils.Error(c, errStatus, errMsg)
	}

	var req markDoneRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	list.IsDone = req.Done
	if err := h.DB.Model(list).Update("is_done", list.IsDone).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating list")
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"ok": true, "list": list})
}

// loadList fetches the :id list and authorizes the action. A nil list
// means the returned status/message should be sent to the client.
func (h *ItemsHandler) loadList(c *fiber.Ctx, user *models.User, action services.Action) (*models.ItemList, int, string) {
	listID, err := parseUUID(c.Params("id"))
	if err != nil {
		return nil, fiber.StatusBadRequest, "Invalid id"
	}

	var list models.ItemList
	if err := h.DB.First(&list, "id = ?", listID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.StatusNotFound, "Not found"
		}
		return nil, fiber.StatusInternalServerError, "failed loading list"
	}

	if !services.CanAct(user, action, services.OwnedBy(list.OwnerID)) {
		return nil, fiber.StatusForbidden, "Not authorized"
	}

	return &list, 0, ""
}
