// Package search builds recipe list predicates from the keyword,
// search-type and category query inputs.
package search

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Type selects which recipe columns a keyword is matched against.
type Type string

const (
	TypeSimple          Type = "simple"
	TypeWithIngredients Type = "with_ingredients"
	TypeDeep            Type = "deep"
)

var ErrInvalidType = errors.New("invalid search type")

// ParseType maps a query-string value to a Type. Empty input falls back
// to TypeSimple; any other unknown value is rejected, never coerced.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case "", TypeSimple:
		return TypeSimple, nil
	case TypeWithIngredients:
		return TypeWithIngredients, nil
	case TypeDeep:
		return TypeDeep, nil
	}
	return "", ErrInvalidType
}

// Types returns all valid search types, in the order shown by the filter UI.
func Types() []Type {
	return []Type{TypeSimple, TypeWithIngredients, TypeDeep}
}

// PageSize is the fixed page size of recipe listings. Contract, not config.
const PageSize = 10

// Filter is the opaque specification handed to the persistence layer.
// Keyword and CategoryIDs are independent groups combined with AND; an
// empty group applies no predicate.
type Filter struct {
	Keyword     string
	Type        Type
	CategoryIDs []uint
}

// Scope returns a GORM scope applying the filter to a recipes query.
// Keyword matching is case-insensitive substring containment, OR-ed over
// the columns selected by Type. The category group matches recipes that
// hold at least one of the requested ids.
func (f Filter) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Keyword != "" {
			pattern := "%" + strings.ToLower(f.Keyword) + "%"
			switch f.Type {
			case TypeWithIngredients:
				db = db.Where(
					"(LOWER(title) LIKE ? OR LOWER(ingredients) LIKE ?)",
					pattern, pattern,
				)
			case TypeDeep:
				db = db.Where(
					"(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(ingredients) LIKE ? OR LOWER(instructions) LIKE ?)",
					pattern, pattern, pattern, pattern,
				)
			default:
				db = db.Where("LOWER(title) LIKE ?", pattern)
			}
		}

		if len(f.CategoryIDs) > 0 {
			db = db.Where(
				"EXISTS (SELECT 1 FROM category_recipe cr WHERE cr.recipe_id = recipes.id AND cr.category_id IN ?)",
				f.CategoryIDs,
			)
		}

		return db
	}
}
