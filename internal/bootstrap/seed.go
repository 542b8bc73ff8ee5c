package bootstrap

import (
	"errors"
	"log"

	"anoa.com/portalsekolah/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Profile{},
		&entity.Class{},
		&entity.Product{},
		&entity.Order{},
		&entity.PointHistory{},
		&entity.Content{},
		&entity.Material{},
		&entity.Notification{},
	)
}

// SeedAdminUser creates the first administrator so the panel can be used on a fresh database.
func SeedAdminUser(db *gorm.DB, email, password string) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	if password == "" {
		return errors.New("admin seed password is empty")
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Email:        email,
		PasswordHash: string(hashedPasswordBytes),
		Profile: &entity.Profile{
			FullName: "Administrator",
			Role:     entity.RoleAdmin,
		},
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Printf("   Email: %s", email)

	return nil
}
