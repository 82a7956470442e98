package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"github.com/tastebook/backend/internal/config"
	"github.com/tastebook/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var faker = gofakeit.New(1)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.SetupJoinTable(&models.Recipe{}, "Categories", &models.RecipeCategory{}))
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Category{},
		&models.Recipe{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,
	}
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "irrelevant",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := models.Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return &category
}

func createRecipe(t *testing.T, db *gorm.DB, owner *models.User, title string, categories ...models.Category) *models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		UserID:       owner.ID,
		Title:        title,
		Description:  faker.Paragraph(1, 2, 8, " "),
		Ingredients:  faker.Paragraph(2, 3, 6, "\n"),
		Instructions: faker.Paragraph(3, 3, 8, "\n"),
		Categories:   categories,
	}
	require.NoError(t, db.Create(&recipe).Error)
	return &recipe
}

// fakeBlobStore records uploads in memory and can be told to fail.
type fakeBlobStore struct {
	stored map[string][]byte
	fail   bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{stored: make(map[string][]byte)}
}

func (f *fakeBlobStore) Store(_ context.Context, data []byte, filename string) (string, error) {
	if f.fail {
		return "", errors.New("blob store unavailable")
	}
	path := "public/images/recipes/" + filename
	f.stored[path] = data
	return path, nil
}

func (f *fakeBlobStore) URL(path string) string {
	return "https://cdn.example.com/" + strings.TrimPrefix(path, "public/")
}

func (f *fakeBlobStore) Delete(_ context.Context, path string) error {
	if f.fail {
		return errors.New("blob store unavailable")
	}
	delete(f.stored, path)
	return nil
}

func str(s string) *string { return &s }

func categoryIDsOf(t *testing.T, db *gorm.DB, recipeID uint) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, db.Model(&models.RecipeCategory{}).
		Where("recipe_id = ?", recipeID).
		Order("category_id").
		Pluck("category_id", &ids).Error)
	return ids
}
