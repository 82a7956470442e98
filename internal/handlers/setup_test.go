package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/tastebook/backend/internal/config"
	"github.com/tastebook/backend/internal/handlers"
	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/routes"
	"github.com/tastebook/backend/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full router against an in-memory database so tests
// exercise the same middleware chain production requests pass through.
type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	cfg   *config.Config
	blobs *memBlobStore
}

func newTestEnv(t *testing.T) *testEnv {
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

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,
	}

	blobs := newMemBlobStore()
	authService := services.NewAuthService(db, cfg)
	categoryService := services.NewCategoryService(db)
	recipeService := services.NewRecipeService(db, categoryService, blobs)
	userService := services.NewUserService(db)

	app := fiber.New()
	routes.Setup(app, cfg,
		handlers.NewAuthHandler(authService),
		handlers.NewHealthHandler(),
		handlers.NewCategoryHandler(categoryService),
		handlers.NewRecipeHandler(recipeService),
		handlers.NewUserHandler(userService),
	)

	return &testEnv{app: app, db: db, cfg: cfg, blobs: blobs}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(user.ID), 10),
		"email": user.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(e.cfg.JWTAccessExpiry).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(e.cfg.JWTSecret))
	require.NoError(t, err)
	return signed
}

func (e *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "irrelevant",
	}
	require.NoError(t, e.db.Create(&user).Error)
	return &user
}

func (e *testEnv) createCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	category := models.Category{Name: name}
	require.NoError(t, e.db.Create(&category).Error)
	return &category
}

func (e *testEnv) createRecipe(t *testing.T, owner *models.User, title string) *models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		UserID:       owner.ID,
		Title:        title,
		Description:  "a dish",
		Ingredients:  "things",
		Instructions: "combine things",
	}
	require.NoError(t, e.db.Create(&recipe).Error)
	return &recipe
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// memBlobStore stands in for object storage during handler tests.
type memBlobStore struct {
	stored map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{stored: make(map[string][]byte)}
}

func (m *memBlobStore) Store(_ context.Context, data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty upload")
	}
	path := "public/images/recipes/" + filename
	m.stored[path] = data
	return path, nil
}

func (m *memBlobStore) URL(path string) string {
	return "https://cdn.example.com/" + strings.TrimPrefix(path, "public/")
}

func (m *memBlobStore) Delete(_ context.Context, path string) error {
	delete(m.stored, path)
	return nil
}
