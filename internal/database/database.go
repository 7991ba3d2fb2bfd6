package database

import (
	"fmt"

	"github.com/recipeplanner/backend/internal/config"
	"github.com/recipeplanner/backend/internal/models"
	"github.com/recipeplanner/backend/pkg/logger"
	"github.com/recipeplanner/backend/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.ItemList{},
	)
}

// BootstrapSuperadmin creates the configured superadmin account once.
// A noop when the bootstrap config is incomplete or the account exists.
func BootstrapSuperadmin(db *gorm.DB, cfg config.BootstrapConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Info("bootstrap_admin_skipped", map[string]interface{}{
			"reason": "MAIN_ADMIN_EMAIL or MAIN_ADMIN_PASSWORD not set",
		})
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	salt, hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Salt:         salt,
		Role:         models.UserRoleSuperadmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("bootstrap_admin_created", map[string]interface{}{
		"email": cfg.AdminEmail,
	})
	return nil
}
