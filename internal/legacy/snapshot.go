package legacy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pageza/recipebox/backend/internal/models"
)

// SnapshotVersion is bumped whenever the snapshot layout changes incompatibly.
const SnapshotVersion = 1

// Snapshot is a full point-in-time copy of the legacy tables.
type Snapshot struct {
	Version        int            `json:"version" yaml:"version"`
	ExtractedAt    time.Time      `json:"extracted_at" yaml:"extracted_at"`
	SourceDatabase string         `json:"source_database" yaml:"source_database"`
	Counts         map[string]int `json:"counts" yaml:"counts"`

	Classifications    []LookupRow            `json:"classifications" yaml:"classifications" validate:"dive"`
	Sources            []LookupRow            `json:"sources" yaml:"sources" validate:"dive"`
	Meals              []LookupRow            `json:"meals" yaml:"meals" validate:"dive"`
	Courses            []LookupRow            `json:"courses" yaml:"courses" validate:"dive"`
	Preparations       []LookupRow            `json:"preparations" yaml:"preparations" validate:"dive"`
	Recipes            []RecipeRow            `json:"recipes" yaml:"recipes" validate:"dive"`
	RecipeMeals        []RecipeMealRow        `json:"recipe_meals" yaml:"recipe_meals" validate:"dive"`
	RecipeCourses      []RecipeCourseRow      `json:"recipe_courses" yaml:"recipe_courses" validate:"dive"`
	RecipePreparations []RecipePreparationRow `json:"recipe_preparations" yaml:"recipe_preparations" validate:"dive"`
	Cookbooks          []CookbookRow          `json:"cookbooks" yaml:"cookbooks" validate:"dive"`
	CookbookRecipes    []CookbookRecipeRow    `json:"cookbook_recipes" yaml:"cookbook_recipes" validate:"dive"`
}

// LookupRow is a row of classifications, sources, meals, courses or preparations.
// Legacy preparations only carry a description.
type LookupRow struct {
	ID          string                 `db:"id" json:"id" yaml:"id" validate:"required"`
	Name        *string                `db:"name" json:"name" yaml:"name" validate:"required_without=Description"`
	Description *string                `db:"description" json:"description" yaml:"description"`
	CreatedAt   *time.Time             `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt   *time.Time             `db:"updated_at" json:"updated_at" yaml:"updated_at"`
	Extra       map[string]interface{} `db:",remain" json:"extra,omitempty" yaml:"extra,omitempty"`
}

// DisplayName is the name, falling back to the description.
func (r LookupRow) DisplayName() string {
	if r.Name != nil && *r.Name != "" {
		return *r.Name
	}
	if r.Description != nil {
		return *r.Description
	}
	return ""
}

type RecipeRow struct {
	ID               string                 `db:"id" json:"id" yaml:"id" validate:"required"`
	Name             string                 `db:"name" json:"name" yaml:"name" validate:"required"`
	Ingredients      string                 `db:"ingredients" json:"ingredients" yaml:"ingredients"`
	Instructions     string                 `db:"instructions" json:"instructions" yaml:"instructions"`
	Notes            *string                `db:"notes" json:"notes" yaml:"notes"`
	Servings         *int                   `db:"servings" json:"servings" yaml:"servings"`
	SourceID         *string                `db:"source_id" json:"source_id" yaml:"source_id"`
	ClassificationID *string                `db:"classification_id" json:"classification_id" yaml:"classification_id"`
	DateAdded        *time.Time             `db:"date_added" json:"date_added" yaml:"date_added"`
	Calories         *float64               `db:"calories" json:"calories" yaml:"calories"`
	Fat              *float64               `db:"fat" json:"fat" yaml:"fat"`
	Cholesterol      *float64               `db:"cholesterol" json:"cholesterol" yaml:"cholesterol"`
	Sodium           *float64               `db:"sodium" json:"sodium" yaml:"sodium"`
	Protein          *float64               `db:"protein" json:"protein" yaml:"protein"`
	Marked           models.TriState        `db:"marked" json:"marked" yaml:"marked"`
	Tags             models.StringList      `db:"tags" json:"tags" yaml:"tags"`
	CreatedAt        *time.Time             `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt        *time.Time             `db:"updated_at" json:"updated_at" yaml:"updated_at"`
	Extra            map[string]interface{} `db:",remain" json:"extra,omitempty" yaml:"extra,omitempty"`
}

type RecipeMealRow struct {
	ID        string                 `db:"id" json:"id" yaml:"id" validate:"required"`
	RecipeID  string                 `db:"recipe_id" json:"recipe_id" yaml:"recipe_id" validate:"required"`
	MealID    string                 `db:"meal_id" json:"meal_id" yaml:"meal_id" validate:"required"`
	CreatedAt *time.Time             `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt *time.Time             `db:"updated_at" json:"updated_at" yaml:"updated_at"`
	Extra     map[string]interface{} `db:",remain" json:"extra,omitempty" yaml:"extra,omitempty"`
}

type RecipeCourseRow struct {
	ID        string                 `db:"id" json:"id" yaml:"id" validate:"required"`
	RecipeID  string                 `db:"recipe_id" json:"recipe_id" yaml:"recipe_id" validate:"required"`
	CourseID  string                 `db:"course_id" json:"course_id" yaml:"course_id" validate:"required"`
	CreatedAt *time.Time             `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt *time.Time             `db:"updated_at" json:"updated_at" yaml:"updated_at"`
	Extra     map[string]interface{} `db:",remain" json:"extra,omitempty" yaml:"extra,omitempty"`
}

type RecipePreparationRow struct {
	ID            string                 `db:"id" json:"id" yaml:"id" validate:"required"`
	RecipeID      string                 `db:"recipe_id" json:"recipe_id" yaml:"recipe_id" validate:"required"`
	PreparationID string                 `db:"preparation_id" json:"preparation_id" yaml:"preparation_id" validate:"required"`
	CreatedAt     *time.Time             `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt     *time.Time             `db:"updated_at" json:"updated_at" yaml:"updated_at"`
	Extra         map[string]interface{} `db:",remain" json:"extra,omitempty" yaml:"extra,omitempty"`
}

type CookbookRow struct {
	ID          string                 `db:"id" json:"id" yaml:"id" validate:"required"`
	Name        string                 `db:"name" json:"name" yaml:"name" validate:"required"`
	Description *string                `db:"description" json:"description" yaml:"description"`
	CreatedAt   *time.Time             `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt   *time.Time             `db:"updated_at" json:"updated_at" yaml:"updated_at"`
	Extra       map[string]interface{} `db:",remain" json:"extra,omitempty" yaml:"extra,omitempty"`
}

// CookbookRecipeRow links a cookbook to a recipe. Order is absent when the
// legacy table had no ordering column.
type CookbookRecipeRow struct {
	ID         string                 `db:"id" json:"id" yaml:"id" validate:"required"`
	CookbookID string                 `db:"cookbook_id" json:"cookbook_id" yaml:"cookbook_id" validate:"required"`
	RecipeID   string                 `db:"recipe_id" json:"recipe_id" yaml:"recipe_id" validate:"required"`
	Order      *int                   `db:"order" json:"order" yaml:"order"`
	CreatedAt  *time.Time             `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt  *time.Time             `db:"updated_at" json:"updated_at" yaml:"updated_at"`
	Extra      map[string]interface{} `db:",remain" json:"extra,omitempty" yaml:"extra,omitempty"`
}

// RowCounts counts the rows currently held per table.
func (s *Snapshot) RowCounts() map[string]int {
	return map[string]int{
		TableClassifications:    len(s.Classifications),
		TableSources:            len(s.Sources),
		TableMeals:              len(s.Meals),
		TableCourses:            len(s.Courses),
		TablePreparations:       len(s.Preparations),
		TableRecipes:            len(s.Recipes),
		TableRecipeMeals:        len(s.RecipeMeals),
		TableRecipeCourses:      len(s.RecipeCourses),
		TableRecipePreparations: len(s.RecipePreparations),
		TableCookbooks:          len(s.Cookbooks),
		TableCookbookRecipes:    len(s.CookbookRecipes),
	}
}

var validate = validator.New()

// Validate checks required fields, duplicate ids and that every reference
// inside the snapshot resolves to a row of the snapshot.
func (s *Snapshot) Validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d (want %d)", s.Version, SnapshotVersion)
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	var problems []string
	ids := map[string]map[string]bool{}
	index := func(table string, id string) {
		if ids[table] == nil {
			ids[table] = map[string]bool{}
		}
		if ids[table][id] {
			problems = append(problems, fmt.Sprintf("%s: duplicate id %s", table, id))
		}
		ids[table][id] = true
	}
	for _, r := range s.Classifications {
		index(TableClassifications, r.ID)
	}
	for _, r := range s.Sources {
		index(TableSources, r.ID)
	}
	for _, r := range s.Meals {
		index(TableMeals, r.ID)
	}
	for _, r := range s.Courses {
		index(TableCourses, r.ID)
	}
	for _, r := range s.Preparations {
		index(TablePreparations, r.ID)
	}
	for _, r := range s.Recipes {
		index(TableRecipes, r.ID)
	}
	for _, r := range s.RecipeMeals {
		index(TableRecipeMeals, r.ID)
	}
	for _, r := range s.RecipeCourses {
		index(TableRecipeCourses, r.ID)
	}
	for _, r := range s.RecipePreparations {
		index(TableRecipePreparations, r.ID)
	}
	for _, r := range s.Cookbooks {
		index(TableCookbooks, r.ID)
	}
	for _, r := range s.CookbookRecipes {
		index(TableCookbookRecipes, r.ID)
	}

	ref := func(table, id, column, target string, value *string) {
		if value == nil {
			return
		}
		if !ids[target][*value] {
			problems = append(problems, fmt.Sprintf("%s %s: %s %s not found in %s", table, id, column, *value, target))
		}
	}
	for _, r := range s.Recipes {
		ref(TableRecipes, r.ID, "source_id", TableSources, r.SourceID)
		ref(TableRecipes, r.ID, "classification_id", TableClassifications, r.ClassificationID)
	}
	for _, r := range s.RecipeMeals {
		ref(TableRecipeMeals, r.ID, "recipe_id", TableRecipes, &r.RecipeID)
		ref(TableRecipeMeals, r.ID, "meal_id", TableMeals, &r.MealID)
	}
	for _, r := range s.RecipeCourses {
		ref(TableRecipeCourses, r.ID, "recipe_id", TableRecipes, &r.RecipeID)
		ref(TableRecipeCourses, r.ID, "course_id", TableCourses, &r.CourseID)
	}
	for _, r := range s.RecipePreparations {
		ref(TableRecipePreparations, r.ID, "recipe_id", TableRecipes, &r.RecipeID)
		ref(TableRecipePreparations, r.ID, "preparation_id", TablePreparations, &r.PreparationID)
	}
	for _, r := range s.CookbookRecipes {
		ref(TableCookbookRecipes, r.ID, "cookbook_id", TableCookbooks, &r.CookbookID)
		ref(TableCookbookRecipes, r.ID, "recipe_id", TableRecipes, &r.RecipeID)
	}

	pairs := map[string]map[[2]string]string{}
	pair := func(table, id, left, right string) {
		if pairs[table] == nil {
			pairs[table] = map[[2]string]string{}
		}
		key := [2]string{left, right}
		if first, ok := pairs[table][key]; ok {
			problems = append(problems, fmt.Sprintf("%s %s: links %s and %s again (already linked by id %s)", table, id, left, right, first))
			return
		}
		pairs[table][key] = id
	}
	for _, r := range s.RecipeMeals {
		pair(TableRecipeMeals, r.ID, r.RecipeID, r.MealID)
	}
	for _, r := range s.RecipeCourses {
		pair(TableRecipeCourses, r.ID, r.RecipeID, r.CourseID)
	}
	for _, r := range s.RecipePreparations {
		pair(TableRecipePreparations, r.ID, r.RecipeID, r.PreparationID)
	}
	for _, r := range s.CookbookRecipes {
		pair(TableCookbookRecipes, r.ID, r.CookbookID, r.RecipeID)
	}

	if len(problems) > 0 {
		return errors.New("invalid snapshot:\n" + strings.Join(problems, "\n"))
	}
	return nil
}
