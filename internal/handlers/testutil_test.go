package handlers

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/recipeplanner/backend/internal/database"
	"github.com/recipeplanner/backend/internal/middleware"
	"github.com/recipeplanner/backend/internal/models"
	"github.com/recipeplanner/backend/pkg/logger"
	"github.com/recipeplanner/backend/pkg/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		gosqlite.MustRegisterScalarFunction("NOW", 0, func(ctx *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return time.Now().UTC(), nil
		})
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	// Media stays nil in tests; upload paths answer 502 without a store.
	authHandler := NewAuthHandler(db, nil)
	recipesHandler := NewRecipesHandler(db, nil)
	itemsHandler := NewItemsHandler(db)
	adminHandler := NewAdminHandler(db)
	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 50 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/auth/signup", authHandler.Signup)
	app.Post("/auth/login", authHandler.Login)
	app.Get("/auth/me", authMiddleware.RequireAuth, authHandler.Me)
	app.Put("/auth/me", authMiddleware.RequireAuth, authHandler.UpdateMe)
	app.Put("/auth/change-password", authMiddleware.RequireAuth, authHandler.ChangePassword)

	app.Post("/recipes", authMiddleware.RequireAuth, recipesHandler.Create)
	app.Get("/recipes/public", recipesHandler.ListPublic)
	app.Get("/recipes/mine", authMiddleware.RequireAuth, recipesHandler.ListMine)
	app.Get("/recipes/:id", authMiddleware.OptionalAuth, recipesHandler.Get)
	app.Put("/recipes/:id", authMiddleware.RequireAuth, recipesHandler.Update)
	app.Delete("/recipes/:id", authMiddleware.RequireAuth, recipesHandler.Delete)
	app.Post("/recipes/:id/like", authMiddleware.RequireAuth, recipesHandler.ToggleLike)
	app.Post("/recipes/:id/comment", authMiddleware.RequireAuth, recipesHandler.AddComment)

	app.Post("/items", authMiddleware.RequireAuth, itemsHandler.Create)
	app.Get("/items", authMiddleware.RequireAuth, itemsHandler.ListMine)
	app.Get("/items/:id", authMiddleware.RequireAuth, itemsHandler.Get)
	app.Put("/items/:id", authMiddleware.RequireAuth, itemsHandler.Update)
	app.Delete("/items/:id", authMiddleware.RequireAuth, itemsHandler.Delete)
	app.Patch("/items/:id/done", authMiddleware.RequireAuth, itemsHandler.MarkDone)
	app.Patch("/items/:id/item/:index", authMiddleware.RequireAuth, itemsHandler.UpdateItem)
	app.Patch("/items/:id/item/:index/toggle", authMiddleware.RequireAuth, itemsHandler.ToggleItem)
	app.Delete("/items/:id/item/:index", authMiddleware.RequireAuth, itemsHandler.DeleteItem)

	admin := app.Group("/admin", authMiddleware.RequireAuth, middleware.RequireModeration)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Patch("/users/:id/block", adminHandler.BlockUser)
	admin.Patch("/users/:id/role", adminHandler.ChangeRole)
	admin.Get("/posts", adminHandler.ListPosts)
	admin.Patch("/posts/:id/remove", adminHandler.RemovePost)
	admin.Delete("/posts/:id", adminHandler.DeletePost)

	return &testEnv{app: app, db: db}
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string, role models.UserRole) (*models.User, string) {
	t.Helper()

	salt, hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func createTestRecipe(t *testing.T, db *gorm.DB, owner *models.User, title string, isPublic bool) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Title:    title,
		OwnerID:  owner.ID,
		IsPublic: isPublic,
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed creating test recipe: %v", err)
	}
	return recipe
}

func createTestItemList(t *testing.T, db *gorm.DB, owner *models.User, items ...models.ListItem) *models.ItemList {
	t.Helper()

	list := &models.ItemList{
		Title:   "Shopping List",
		Items:   items,
		OwnerID: owner.ID,
	}
	if err := db.Create(list).Error; err != nil {
		t.Fatalf("failed creating test item list: %v", err)
	}
	return list
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func performFormRequest(t *testing.T, app *fiber.App, method, path string, fields map[string]string, headers map[string]string) *http.Response {
	t.Helper()

	form := url.Values{}
	for key, value := range fields {
		form.Set(key, value)
	}

	requestHeaders := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	for key, value := range headers {
		requestHeaders[key] = value
	}

	return performRequest(t, app, method, path, strings.NewReader(form.Encode()), requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func decodeJSONSlice(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload []map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON array response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
