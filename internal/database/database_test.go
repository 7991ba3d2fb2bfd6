package database

import (
	"database/sql/driver"
	"sync"
	"testing"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/recipeplanner/backend/internal/config"
	"github.com/recipeplanner/backend/internal/models"
	"github.com/recipeplanner/backend/pkg/logger"
	"github.com/recipeplanner/backend/pkg/utils"
	"gorm.io/gorm"
)

var testSetupOnce sync.Once

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testSetupOnce.Do(func() {
		gosqlite.MustRegisterScalarFunction("NOW", 0, func(ctx *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return time.Now().UTC(), nil
		})
		logger.Init()
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
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("failed migrating: %v", err)
	}
	return db
}

func TestBootstrapSuperadmin(t *testing.T) {
	t.Run("skipped without config", func(t *testing.T) {
		db := openTestDB(t)

		if err := BootstrapSuperadmin(db, config.BootstrapConfig{}); err != nil {
			t.Fatalf("expected noop, got %v", err)
		}

		var count int64
		db.Model(&models.User{}).Count(&count)
		if count != 0 {
			t.Fatalf("expected no users created, got %d", count)
		}
	})

	t.Run("creates account once", func(t *testing.T) {
		db := openTestDB(t)
		cfg := config.BootstrapConfig{
			AdminEmail:    "root@example.com",
			AdminPassword: "bootstrap-secret",
			AdminName:     "Root",
		}

		if err := BootstrapSuperadmin(db, cfg); err != nil {
			t.Fatalf("bootstrap failed: %v", err)
		}

		var admin models.User
		if err := db.First(&admin, "email = ?", cfg.AdminEmail).Error; err != nil {
			t.Fatalf("expected superadmin created: %v", err)
		}
		if admin.Role != models.UserRoleSuperadmin {
			t.Fatalf("expected superadmin role, got %s", admin.Role)
		}
		if !utils.CheckPassword(cfg.AdminPassword, admin.Salt, admin.PasswordHash) {
			t.Fatal("expected bootstrap password to verify")
		}

		// A second startup must not create a duplicate.
		if err := BootstrapSuperadmin(db, cfg); err != nil {
			t.Fatalf("second bootstrap failed: %v", err)
		}
		var count int64
		db.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count)
		if count != 1 {
			t.Fatalf("expected exactly one superadmin, got %d", count)
		}
	})
}
