package models

import "time"

// Recipe is owned by exactly one user; ownership never transfers.
// The optional text columns are never null: absent input is normalized
// to "" at the service boundary before the row is written.
type Recipe struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	Ingredients  string     `gorm:"type:text;not null" json:"ingredients"`
	Instructions string     `gorm:"type:text;not null" json:"instructions"`
	Image        string     `gorm:"size:512;not null" json:"image"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Categories   []Category `gorm:"many2many:category_recipe" json:"categories"`
}

// RecipeCategory is the join row behind the Categories association.
// The composite primary key enforces uniqueness of (recipe_id, category_id).
type RecipeCategory struct {
	RecipeID   uint `gorm:"primaryKey"`
	CategoryID uint `gorm:"primaryKey"`
}

func (RecipeCategory) TableName() string { return "category_recipe" }
