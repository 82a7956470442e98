package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/tastebook/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCategories = []string{
	"Breakfast", "Lunch", "Dinner", "Dessert", "Snack",
	"Vegetarian", "Vegan", "Soup", "Salad", "Baking",
}

// SeedDemo populates demo users, the category list and a batch of fake
// recipes. It is a no-op when users already exist.
func SeedDemo(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return nil
	}

	faker := gofakeit.New(0)

	hash, err := bcrypt.GenerateFromPassword([]byte("12345678"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := []models.User{{Name: "Admin", Email: "admin@gmail.com", Password: string(hash)}}
	for i := 0; i < 5; i++ {
		users = append(users, models.User{
			Name:     faker.Name(),
			Email:    strings.ToLower(faker.Email()),
			Password: string(hash),
		})
	}

	var categories []models.Category
	for _, name := range seedCategories {
		categories = append(categories, models.Category{Name: name})
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&users).Error; err != nil {
			return err
		}
		if err := tx.Create(&categories).Error; err != nil {
			return err
		}

		for i := 0; i < 20; i++ {
			recipe := models.Recipe{
				UserID:       users[faker.IntRange(0, len(users)-1)].ID,
				Title:        faker.Dinner(),
				Description:  faker.Paragraph(1, 3, 12, " "),
				Ingredients:  faker.Paragraph(3, 4, 10, "\n"),
				Instructions: faker.Paragraph(5, 4, 12, "\n"),
				Image:        faker.ImageURL(640, 480),
				CreatedAt:    time.Now().Add(-time.Duration(i) * time.Hour),
			}
			n := faker.IntRange(1, 3)
			start := faker.IntRange(0, len(categories)-n)
			recipe.Categories = categories[start : start+n]
			if err := tx.Create(&recipe).Error; err != nil {
				return err
			}
		}

		slog.Info("demo data seeded", "users", len(users), "categories", len(categories), "recipes", 20)
		return nil
	})
}
