package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/tastebook/backend/internal/dto"
	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/policy"
	"github.com/tastebook/backend/internal/search"
	"gorm.io/gorm"
)

// BlobStore is the storage collaborator recipe images are written to.
type BlobStore interface {
	Store(ctx context.Context, data []byte, filename string) (string, error)
	URL(path string) string
	Delete(ctx context.Context, path string) error
}

// RecipeInput carries a create/update payload. Optional text fields are
// pointers; nil (a JS client sends null for empty form fields) is
// normalized to "" before persistence. A nil CategoryIDs leaves
// associations untouched on update; a present empty slice clears them.
type RecipeInput struct {
	Title         string
	Description   *string
	Ingredients   *string
	Instructions  *string
	CategoryIDs   *[]uint
	Image         []byte
	ImageFilename string
}

type RecipeService struct {
	db         *gorm.DB
	policy     policy.RecipePolicy
	categories *CategoryService
	blobs      BlobStore
}

func NewRecipeService(db *gorm.DB, categories *CategoryService, blobs BlobStore) *RecipeService {
	return &RecipeService{db: db, categories: categories, blobs: blobs}
}

// Create persists a recipe owned by userID. The image (when present) is
// stored before the database transaction so a failed upload aborts the
// whole operation without a dangling path.
func (s *RecipeService) Create(ctx context.Context, userID uint, in *RecipeInput) (*models.Recipe, error) {
	if !s.policy.CanCreate(userID) {
		return nil, ErrForbidden
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	imagePath := ""
	if len(in.Image) > 0 {
		path, err := s.blobs.Store(ctx, in.Image, in.ImageFilename)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		imagePath = path
	}

	recipe := models.Recipe{
		UserID:       userID,
		Title:        in.Title,
		Description:  strVal(in.Description),
		Ingredients:  strVal(in.Ingredients),
		Instructions: strVal(in.Instructions),
		Image:        imagePath,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if in.CategoryIDs != nil && len(*in.CategoryIDs) > 0 {
			return syncCategories(tx, recipe.ID, *in.CategoryIDs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	if err := s.db.Preload("Categories").First(&recipe, recipe.ID).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Get fetches a recipe with categories attached. Servable image paths
// are rewritten to fully resolved URLs.
func (s *RecipeService) Get(id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.Preload("Categories").First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if strings.HasPrefix(recipe.Image, "public/") {
		recipe.Image = s.blobs.URL(recipe.Image)
	}
	return &recipe, nil
}

// Update rewrites the recipe's fields and replaces its category links
// wholesale when CategoryIDs is supplied.
func (s *RecipeService) Update(ctx context.Context, userID uint, id uint, in *RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if !s.policy.CanUpdate(userID, &recipe) {
		return nil, ErrForbidden
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":        in.Title,
		"description":  strVal(in.Description),
		"ingredients":  strVal(in.Ingredients),
		"instructions": strVal(in.Instructions),
	}

	if len(in.Image) > 0 {
		path, err := s.blobs.Store(ctx, in.Image, in.ImageFilename)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		updates["image"] = path
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}
		if in.CategoryIDs != nil {
			return syncCategories(tx, recipe.ID, *in.CategoryIDs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	if err := s.db.Preload("Categories").First(&recipe, recipe.ID).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Delete removes the recipe and its association rows, then reclaims the
// stored image. A failed blob delete does not undo the row delete.
func (s *RecipeService) Delete(ctx context.Context, userID uint, id uint) error {
	var recipe models.Recipe
	if err := s.db.First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	if !s.policy.CanDelete(userID, &recipe) {
		return ErrForbidden
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return err
	}

	if strings.HasPrefix(recipe.Image, "public/") {
		if err := s.blobs.Delete(ctx, recipe.Image); err != nil {
			slog.Warn("failed to delete recipe image", "recipe_id", recipe.ID, "path", recipe.Image, "error", err)
		}
	}
	return nil
}

// Search returns one page of recipes matching the filter, newest first.
func (s *RecipeService) Search(f search.Filter, page int) (*dto.PaginatedRecipes, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := s.db.Model(&models.Recipe{}).Scopes(f.Scope()).Count(&total).Error; err != nil {
		return nil, err
	}

	recipes := make([]models.Recipe, 0, search.PageSize)
	err := s.db.Model(&models.Recipe{}).
		Scopes(f.Scope()).
		Preload("Categories").
		Order("created_at DESC").
		Limit(search.PageSize).
		Offset((page - 1) * search.PageSize).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	lastPage := int((total + search.PageSize - 1) / search.PageSize)
	if lastPage < 1 {
		lastPage = 1
	}

	return &dto.PaginatedRecipes{
		Data:        recipes,
		CurrentPage: page,
		PerPage:     search.PageSize,
		Total:       total,
		LastPage:    lastPage,
	}, nil
}

func (s *RecipeService) validate(in *RecipeInput) error {
	fields := map[string]string{}

	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "The title field is required."
	} else if utf8.RuneCountInString(in.Title) > 255 {
		fields["title"] = "The title must not be greater than 255 characters."
	}

	if in.CategoryIDs != nil {
		if err := s.categories.ValidateIDs(*in.CategoryIDs); err != nil {
			var ve *ValidationError
			if !errors.As(err, &ve) {
				return err
			}
			for k, v := range ve.Fields {
				fields[k] = v
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// syncCategories replaces the recipe's category links with exactly the
// supplied set: current links are diffed against the target, removed
// ones deleted and missing ones inserted, all inside the caller's
// transaction.
func syncCategories(tx *gorm.DB, recipeID uint, want []uint) error {
	var current []uint
	if err := tx.Model(&models.RecipeCategory{}).
		Where("recipe_id = ?", recipeID).
		Pluck("category_id", &current).Error; err != nil {
		return err
	}

	wantSet := make(map[uint]struct{}, len(want))
	for _, id := range want {
		wantSet[id] = struct{}{}
	}
	currentSet := make(map[uint]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}

	var toRemove []uint
	for _, id := range current {
		if _, ok := wantSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	var toAdd []models.RecipeCategory
	for id := range wantSet {
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, models.RecipeCategory{RecipeID: recipeID, CategoryID: id})
		}
	}

	if len(toRemove) > 0 {
		if err := tx.Where("recipe_id = ? AND category_id IN ?", recipeID, toRemove).
			Delete(&models.RecipeCategory{}).Error; err != nil {
			return err
		}
	}
	if len(toAdd) > 0 {
		if err := tx.Create(&toAdd).Error; err != nil {
			return err
		}
	}
	return nil
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
