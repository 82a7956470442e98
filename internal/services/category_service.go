package services

import (
	"github.com/tastebook/backend/internal/models"
	"gorm.io/gorm"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// List returns all categories ordered ascending by name.
func (s *CategoryService) List() ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// ValidateIDs rejects any id that does not reference an existing
// category. Used before persisting recipe associations.
func (s *CategoryService) ValidateIDs(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return validationError("category_ids", "The selected category_ids is invalid.")
		}
		unique[id] = struct{}{}
	}

	distinct := make([]uint, 0, len(unique))
	for id := range unique {
		distinct = append(distinct, id)
	}

	var count int64
	if err := s.db.Model(&models.Category{}).Where("id IN ?", distinct).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(distinct)) {
		return validationError("category_ids", "The selected category_ids is invalid.")
	}
	return nil
}
