package services

import (
	"errors"

	"github.com/tastebook/backend/internal/dto"
	"github.com/tastebook/backend/internal/models"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Profile assembles a user's profile plus their recipes, newest first.
// The full user record is shown only when the authenticated viewer is
// the profile owner; everyone else gets the name. Recipes are returned
// in full either way.
func (s *UserService) Profile(viewerID uint, targetID uint) (*dto.ProfileResponse, error) {
	var user models.User
	if err := s.db.First(&user, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	recipes := make([]models.Recipe, 0)
	if err := s.db.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&recipes).Error; err != nil {
		return nil, err
	}

	resp := &dto.ProfileResponse{Recipes: recipes}
	if viewerID != 0 && viewerID == user.ID {
		resp.User = user
	} else {
		resp.User = dto.PublicUser{Name: user.Name}
	}
	return resp, nil
}
