package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/recipeplanner/backend/internal/config"
	"github.com/recipeplanner/backend/internal/database"
	"github.com/recipeplanner/backend/internal/handlers"
	"github.com/recipeplanner/backend/internal/middleware"
	"github.com/recipeplanner/backend/internal/storage"
	"github.com/recipeplanner/backend/pkg/logger"
	"github.com/recipeplanner/backend/pkg/utils"
	"gorm.io/gorm"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		logger.Error("database_connect_failed", err, nil)
		os.Exit(1)
	}

	if err := database.BootstrapSuperadmin(db, cfg.Bootstrap); err != nil {
		logger.Error("bootstrap_admin_failed", err, nil)
		os.Exit(1)
	}

	media, err := storage.NewMediaStore(cfg.Media)
	if err != nil {
		logger.Error("media_store_init_failed", err, nil)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := media.EnsureBucket(ctx); err != nil {
		logger.Error("media_bucket_check_failed", err, map[string]interface{}{
			"bucket": cfg.Media.Bucket,
		})
	}
	cancel()

	app := fiber.New(fiber.Config{
		AppName:   "recipe-planner",
		BodyLimit: 50 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fiberErr, ok := err.(*fiber.Error); ok {
				code = fiberErr.Code
			}
			return utils.Error(c, code, err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	registerRoutes(app, db, media)

	go func() {
		logger.Info("server_starting", map[string]interface{}{
			"port": cfg.Server.Port,
		})
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logger.Error("server_failed", err, nil)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server_shutting_down", nil)
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("server_shutdown_failed", err, nil)
	}
	logger.Info("server_stopped", nil)
}

func registerRoutes(app *fiber.App, db *gorm.DB, media *storage.MediaStore) {
	auth := middleware.NewAuthMiddleware(db)

	authHandler := handlers.NewAuthHandler(db, media)
	recipesHandler := handlers.NewRecipesHandler(db, media)
	itemsHandler := handlers.NewItemsHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Recipe Planner API is running")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/auth/signup", authHandler.Signup)
	app.Post("/auth/login", authHandler.Login)
	app.Get("/auth/me", auth.RequireAuth, authHandler.Me)
	app.Put("/auth/me", auth.RequireAuth, authHandler.UpdateMe)
	app.Put("/auth/change-password", auth.RequireAuth, authHandler.ChangePassword)

	app.Post("/recipes", auth.RequireAuth, recipesHandler.Create)
	app.Get("/recipes/public", recipesHandler.ListPublic)
	app.Get("/recipes/mine", auth.RequireAuth, recipesHandler.ListMine)
	app.Get("/recipes/:id", auth.OptionalAuth, recipesHandler.Get)
	app.Put("/recipes/:id", auth.RequireAuth, recipesHandler.Update)
	app.Delete("/recipes/:id", auth.RequireAuth, recipesHandler.Delete)
	app.Post("/recipes/:id/like", auth.RequireAuth, recipesHandler.ToggleLike)
	app.Post("/recipes/:id/comment", auth.RequireAuth, recipesHandler.AddComment)

	app.Post("/items", auth.RequireAuth, itemsHandler.Create)
	app.Get("/items", auth.RequireAuth, itemsHandler.ListMine)
	app.Get("/items/:id", auth.RequireAuth, itemsHandler.Get)
	app.Put("/items/:id", auth.RequireAuth, itemsHandler.Update)
	app.Delete("/items/:id", auth.RequireAuth, itemsHandler.Delete)
	app.Patch("/items/:id/done", auth.RequireAuth, itemsHandler.MarkDone)
	app.Patch("/items/:id/item/:index", auth.RequireAuth, itemsHandler.UpdateItem)
	app.Patch("/items/:id/item/:index/toggle", auth.RequireAuth, itemsHandler.ToggleItem)
	app.Delete("/items/:id/item/:index", auth.RequireAuth, itemsHandler.DeleteItem)

	admin := app.Group("/admin", auth.RequireAuth, middleware.RequireModeration)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Patch("/users/:id/block", adminHandler.BlockUser)
	admin.Patch("/users/:id/role", adminHandler.ChangeRole)
	admin.Get("/posts", adminHandler.ListPosts)
	admin.Patch("/posts/:id/remove", adminHandler.RemovePost)
	admin.Delete("/posts/:id", adminHandler.DeletePost)
}
