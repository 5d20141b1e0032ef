package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
)

// RecipeInput holds the fields of a new recipe.
type RecipeInput struct {
	UserID           string
	Name             string
	Ingredients      string
	Instructions     string
	Notes            *string
	Servings         int
	SourceID         *string
	ClassificationID *string
	DateAdded        *time.Time
	Calories         *int
	Fat              *float64
	Cholesterol      *float64
	Sodium           *float64
	Protein          *float64
	Marked           models.TriState
	Tags             []string
	IsPrivate        bool
	MealIDs          []string
	CourseIDs        []string
	PreparationIDs   []string
}

// RecipeUpdate changes the non-nil fields. Non-nil id slices replace the
// recipe's links.
type RecipeUpdate struct {
	Name             *string
	Ingredients      *string
	Instructions     *string
	Notes            *string
	Servings         *int
	SourceID         *string
	ClassificationID *string
	Calories         *int
	Fat              *float64
	Cholesterol      *float64
	Sodium           *float64
	Protein          *float64
	Marked           *models.TriState
	Tags             *[]string
	IsPrivate        *bool
	MealIDs          *[]string
	CourseIDs        *[]string
	PreparationIDs   *[]string
}

// RecipeFilter narrows List. Query matches name, ingredients, instructions or
// tags, or the name of the recipe's owner, source or classification.
type RecipeFilter struct {
	Query            string
	ClassificationID string
	SourceID         string
	UserID           string
	PublicOnly       bool
	Limit            int
	Offset           int
}

const recipeSearch = `(LOWER(recipes.name) LIKE @q
	OR LOWER(recipes.ingredients) LIKE @q
	OR LOWER(recipes.instructions) LIKE @q
	OR LOWER(recipes.tags) LIKE @q
	OR EXISTS (SELECT 1 FROM users WHERE users.id = recipes.user_id AND LOWER(users.name) LIKE @q)
	OR EXISTS (SELECT 1 FROM sources WHERE sources.id = recipes.source_id AND LOWER(sources.name) LIKE @q)
	OR EXISTS (SELECT 1 FROM classifications WHERE classifications.id = recipes.classification_id AND LOWER(classifications.name) LIKE @q))`

const (
	defaultLimit = 20
	maxLimit     = 100
)

// RecipeService handles recipe operations
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Source").
		Preload("Classification").
		Preload("Meals.Meal").
		Preload("Courses.Course").
		Preload("Preparations.Preparation")
}

// CreateRecipe stores a recipe and its meal, course and preparation links.
func (s *RecipeService) CreateRecipe(ctx context.Context, in RecipeInput) (*models.Recipe, error) {
	if err := s.checkExists(ctx, "users", "user", in.UserID); err != nil {
		return nil, err
	}
	if in.Servings < 1 {
		in.Servings = 1
	}
	now := time.Now().UTC()
	if in.DateAdded == nil {
		in.DateAdded = &now
	}
	recipe := &models.Recipe{
		ID:               uuid.New().String(),
		UserID:           in.UserID,
		Name:             strings.TrimSpace(in.Name),
		Ingredients:      in.Ingredients,
		Instructions:     in.Instructions,
		Notes:            in.Notes,
		Servings:         in.Servings,
		SourceID:         emptyToNil(in.SourceID),
		ClassificationID: emptyToNil(in.ClassificationID),
		DateAdded:        in.DateAdded,
		Calories:         in.Calories,
		Fat:              in.Fat,
		Cholesterol:      in.Cholesterol,
		Sodium:           in.Sodium,
		Protein:          in.Protein,
		Marked:           in.Marked,
		Tags:             models.StringList(in.Tags),
		IsPrivate:        in.IsPrivate,
	}
	if recipe.Tags == nil {
		recipe.Tags = models.StringList{}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Meals", "Courses", "Preparations").Create(recipe).Error; err != nil {
			return err
		}
		return replaceLinks(tx, recipe.ID, &in.MealIDs, &in.CourseIDs, &in.PreparationIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, recipe.ID)
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadRecipe(s.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "recipe", id)
	}
	return &recipe, nil
}

// UpdateRecipe applies the non-nil fields of the update.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, in RecipeUpdate) (*models.Recipe, error) {
	if _, err := s.GetRecipe(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	set := func(column string, present bool, value interface{}) {
		if present {
			updates[column] = value
		}
	}
	set("name", in.Name != nil, deref(in.Name))
	set("ingredients", in.Ingredients != nil, deref(in.Ingredients))
	set("instructions", in.Instructions != nil, deref(in.Instructions))
	set("notes", in.Notes != nil, in.Notes)
	set("servings", in.Servings != nil, derefInt(in.Servings))
	set("source_id", in.SourceID != nil, emptyToNil(in.SourceID))
	set("classification_id", in.ClassificationID != nil, emptyToNil(in.ClassificationID))
	set("calories", in.Calories != nil, in.Calories)
	set("fat", in.Fat != nil, in.Fat)
	set("cholesterol", in.Cholesterol != nil, in.Cholesterol)
	set("sodium", in.Sodium != nil, in.Sodium)
	set("protein", in.Protein != nil, in.Protein)
	if in.Marked != nil {
		updates["marked"] = *in.Marked
	}
	if in.Tags != nil {
		updates["tags"] = models.StringList(*in.Tags)
	}
	if in.IsPrivate != nil {
		updates["is_private"] = *in.IsPrivate
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{ID: id}).Updates(updates).Error; err != nil {
				return err
			}
		}
		return replaceLinks(tx, id, in.MealIDs, in.CourseIDs, in.PreparationIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, id)
}

// DeleteRecipe deletes a recipe and renumbers every cookbook that held it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) error {
	if _, err := s.GetRecipe(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cookbookIDs []string
		if err := tx.Model(&models.CookbookRecipe{}).Where("recipe_id = ?", id).Distinct().Pluck("cookbook_id", &cookbookIDs).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&models.CookbookRecipe{}, &models.RecipeMeal{}, &models.RecipeCourse{}, &models.RecipePreparation{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Recipe{ID: id}).Error; err != nil {
			return err
		}
		for _, cookbookID := range cookbookIDs {
			if err := renumber(tx, cookbookID, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListRecipes returns one page of matching recipes and the total match count.
func (s *RecipeService) ListRecipes(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})
	if q := strings.TrimSpace(f.Query); q != "" {
		query = query.Where(recipeSearch, sql.Named("q", "%"+strings.ToLower(q)+"%"))
	}
	if f.ClassificationID != "" {
		query = query.Where("classification_id = ?", f.ClassificationID)
	}
	if f.SourceID != "" {
		query = query.Where("source_id = ?", f.SourceID)
	}
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.PublicOnly {
		query = query.Where("is_private = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var recipes []models.Recipe
	err := preloadRecipe(query).
		Order("created_at DESC").Order("id").
		Limit(limit).Offset(offset).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (s *RecipeService) checkExists(ctx context.Context, table, what, id string) error {
	if id == "" {
		return fmt.Errorf("%s id is required: %w", what, ErrInvalid)
	}
	var n int64
	if err := s.db.WithContext(ctx).Table(table).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

// replaceLinks rewrites the join rows for each non-nil id list.
func replaceLinks(tx *gorm.DB, recipeID string, meals, courses, preparations *[]string) error {
	if meals != nil {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeMeal{}).Error; err != nil {
			return err
		}
		for _, id := range unique(*meals) {
			if err := tx.Create(&models.RecipeMeal{ID: uuid.New().String(), RecipeID: recipeID, MealID: id}).Error; err != nil {
				return fmt.Errorf("link meal %s: %w", id, err)
			}
		}
	}
	if courses != nil {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeCourse{}).Error; err != nil {
			return err
		}
		for _, id := range unique(*courses) {
			if err := tx.Create(&models.RecipeCourse{ID: uuid.New().String(), RecipeID: recipeID, CourseID: id}).Error; err != nil {
				return fmt.Errorf("link course %s: %w", id, err)
			}
		}
	}
	if preparations != nil {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipePreparation{}).Error; err != nil {
			return err
		}
		for _, id := range unique(*preparations) {
			if err := tx.Create(&models.RecipePreparation{ID: uuid.New().String(), RecipeID: recipeID, PreparationID: id}).Error; err != nil {
				return fmt.Errorf("link preparation %s: %w", id, err)
			}
		}
	}
	return nil
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
