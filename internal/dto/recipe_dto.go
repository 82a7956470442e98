package dto

import "github.com/tastebook/backend/internal/models"

// RecipeRequest is the JSON body of create/update. Optional text fields
// are pointers so a client-sent null survives decoding; the service
// normalizes nil to "". CategoryIDs distinguishes "absent" (nil, leave
// associations untouched on update) from "deliberately empty" (clear).
type RecipeRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Ingredients  *string `json:"ingredients"`
	Instructions *string `json:"instructions"`
	CategoryIDs  *[]uint `json:"category_ids"`
}

// PaginatedRecipes mirrors the paginator envelope the SPA consumes.
type PaginatedRecipes struct {
	Data        []models.Recipe `json:"data"`
	CurrentPage int             `json:"current_page"`
	PerPage     int             `json:"per_page"`
	Total       int64           `json:"total"`
	LastPage    int             `json:"last_page"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
