// Package policy holds the ownership predicates gating recipe mutations.
package policy

import "github.com/tastebook/backend/internal/models"

// RecipePolicy decides whether a user may create, update or delete a
// recipe. A false result is an authorization failure, distinct from a
// not-found condition; callers must keep the two apart.
type RecipePolicy struct{}

// CanCreate allows any authenticated user.
func (RecipePolicy) CanCreate(userID uint) bool {
	return userID != 0
}

// CanUpdate allows only the owner.
func (RecipePolicy) CanUpdate(userID uint, recipe *models.Recipe) bool {
	return userID != 0 && userID == recipe.UserID
}

// CanDelete allows only the owner.
func (RecipePolicy) CanDelete(userID uint, recipe *models.Recipe) bool {
	return userID != 0 && userID == recipe.UserID
}
