package dto

import "github.com/tastebook/backend/internal/models"

// ProfileResponse carries a user's profile plus their recipes. User is
// the full record when the viewer is the profile owner and a name-only
// projection otherwise; recipes are never redacted.
type ProfileResponse struct {
	User    interface{}     `json:"user"`
	Recipes []models.Recipe `json:"recipes"`
}

// PublicUser is the non-owner projection of a profile.
type PublicUser struct {
	Name string `json:"name"`
}
