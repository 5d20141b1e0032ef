package seed

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipebox/backend/internal/legacy"
	"github.com/pageza/recipebox/backend/internal/models"
)

// TableUsers holds the owner of every migrated recipe and cookbook.
const TableUsers = "users"

// Table declares one upsert pass.
type Table struct {
	Name        string
	ForeignKeys []ForeignKey

	count func(s *legacy.Snapshot) int
	write func(ctx context.Context, w *writer, s *legacy.Snapshot) (int, error)
}

// Rows is the number of snapshot rows the pass will write.
func (t Table) Rows(s *legacy.Snapshot) int {
	if t.count == nil || s == nil {
		return 0
	}
	return t.count(s)
}

var (
	lookupColumns   = []string{"name", "description", "updated_at"}
	recipeColumns   = []string{"name", "ingredients", "instructions", "notes", "servings", "source_id", "classification_id", "date_added", "calories", "fat", "cholesterol", "sodium", "protein", "marked", "tags", "updated_at"}
	cookbookColumns = []string{"name", "description", "updated_at"}
)

// DefaultTables declares the target tables and their foreign keys.
func DefaultTables() []Table {
	return []Table{
		{
			Name:  TableUsers,
			count: func(*legacy.Snapshot) int { return 1 },
			write: writeOwner,
		},
		lookupTable(legacy.TableClassifications, func(s *legacy.Snapshot) []legacy.LookupRow { return s.Classifications }, func(l models.Lookup) interface{} { return &models.Classification{Lookup: l} }),
		lookupTable(legacy.TableSources, func(s *legacy.Snapshot) []legacy.LookupRow { return s.Sources }, func(l models.Lookup) interface{} { return &models.Source{Lookup: l} }),
		lookupTable(legacy.TableMeals, func(s *legacy.Snapshot) []legacy.LookupRow { return s.Meals }, func(l models.Lookup) interface{} { return &models.Meal{Lookup: l} }),
		lookupTable(legacy.TableCourses, func(s *legacy.Snapshot) []legacy.LookupRow { return s.Courses }, func(l models.Lookup) interface{} { return &models.Course{Lookup: l} }),
		lookupTable(legacy.TablePreparations, func(s *legacy.Snapshot) []legacy.LookupRow { return s.Preparations }, func(l models.Lookup) interface{} { return &models.Preparation{Lookup: l} }),
		{
			Name: legacy.TableRecipes,
			ForeignKeys: []ForeignKey{
				{Column: "user_id", References: TableUsers},
				{Column: "source_id", References: legacy.TableSources},
				{Column: "classification_id", References: legacy.TableClassifications},
			},
			count: func(s *legacy.Snapshot) int { return len(s.Recipes) },
			write: writeRecipes,
		},
		{
			Name:        legacy.TableCookbooks,
			ForeignKeys: []ForeignKey{{Column: "user_id", References: TableUsers}},
			count:       func(s *legacy.Snapshot) int { return len(s.Cookbooks) },
			write:       writeCookbooks,
		},
		{
			Name: legacy.TableRecipeMeals,
			ForeignKeys: []ForeignKey{
				{Column: "recipe_id", References: legacy.TableRecipes},
				{Column: "meal_id", References: legacy.TableMeals},
			},
			count: func(s *legacy.Snapshot) int { return len(s.RecipeMeals) },
			write: func(ctx context.Context, w *writer, s *legacy.Snapshot) (int, error) {
				for _, r := range s.RecipeMeals {
					created, updated := w.stamp(r.CreatedAt, r.UpdatedAt)
					row := &models.RecipeMeal{ID: r.ID, CreatedAt: created, UpdatedAt: updated, RecipeID: r.RecipeID, MealID: r.MealID}
					if err := w.upsert(ctx, legacy.TableRecipeMeals, r.ID, row, []string{"recipe_id", "meal_id", "updated_at"}); err != nil {
						return 0, err
					}
				}
				return len(s.RecipeMeals), nil
			},
		},
		{
			Name: legacy.TableRecipeCourses,
			ForeignKeys: []ForeignKey{
				{Column: "recipe_id", References: legacy.TableRecipes},
				{Column: "course_id", References: legacy.TableCourses},
			},
			count: func(s *legacy.Snapshot) int { return len(s.RecipeCourses) },
			write: func(ctx context.Context, w *writer, s *legacy.Snapshot) (int, error) {
				for _, r := range s.RecipeCourses {
					created, updated := w.stamp(r.CreatedAt, r.UpdatedAt)
					row := &models.RecipeCourse{ID: r.ID, CreatedAt: created, UpdatedAt: updated, RecipeID: r.RecipeID, CourseID: r.CourseID}
					if err := w.upsert(ctx, legacy.TableRecipeCourses, r.ID, row, []string{"recipe_id", "course_id", "updated_at"}); err != nil {
						return 0, err
					}
				}
				return len(s.RecipeCourses), nil
			},
		},
		{
			Name: legacy.TableRecipePreparations,
			ForeignKeys: []ForeignKey{
				{Column: "recipe_id", References: legacy.TableRecipes},
				{Column: "preparation_id", References: legacy.TablePreparations},
			},
			count: func(s *legacy.Snapshot) int { return len(s.RecipePreparations) },
			write: func(ctx context.Context, w *writer, s *legacy.Snapshot) (int, error) {
				for _, r := range s.RecipePreparations {
					created, updated := w.stamp(r.CreatedAt, r.UpdatedAt)
					row := &models.RecipePreparation{ID: r.ID, CreatedAt: created, UpdatedAt: updated, RecipeID: r.RecipeID, PreparationID: r.PreparationID}
					if err := w.upsert(ctx, legacy.TableRecipePreparations, r.ID, row, []string{"recipe_id", "preparation_id", "updated_at"}); err != nil {
						return 0, err
					}
				}
				return len(s.RecipePreparations), nil
			},
		},
		{
			Name: legacy.TableCookbookRecipes,
			ForeignKeys: []ForeignKey{
				{Column: "cookbook_id", References: legacy.TableCookbooks},
				{Column: "recipe_id", References: legacy.TableRecipes},
			},
			count: func(s *legacy.Snapshot) int { return len(s.CookbookRecipes) },
			write: writeCookbookRecipes,
		},
	}
}

func lookupTable(name string, rows func(*legacy.Snapshot) []legacy.LookupRow, wrap func(models.Lookup) interface{}) Table {
	return Table{
		Name:  name,
		count: func(s *legacy.Snapshot) int { return len(rows(s)) },
		write: func(ctx context.Context, w *writer, s *legacy.Snapshot) (int, error) {
			list := rows(s)
			for _, r := range list {
				created, updated := w.stamp(r.CreatedAt, r.UpdatedAt)
				l := models.Lookup{
					ID:          r.ID,
					CreatedAt:   created,
					UpdatedAt:   updated,
					Name:        r.DisplayName(),
					Description: r.Description,
				}
				if err := w.upsert(ctx, name, r.ID, wrap(l), lookupColumns); err != nil {
					return 0, err
				}
			}
			return len(list), nil
		},
	}
}

func writeOwner(ctx context.Context, w *writer, _ *legacy.Snapshot) (int, error) {
	owner := w.owner
	var existing models.User
	err := w.db.WithContext(ctx).Select("id").Where("email = ?", owner.Email).Take(&existing).Error
	switch {
	case err == nil && existing.ID != owner.ID:
		return 0, &OwnerConflictError{Email: owner.Email, OwnerID: owner.ID, ExistingID: existing.ID}
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, &UpsertError{Table: TableUsers, ID: owner.ID, Err: err}
	}

	now := w.now()
	owner.CreatedAt, owner.UpdatedAt = now, now
	if err := w.upsert(ctx, TableUsers, owner.ID, &owner, []string{"name", "updated_at"}); err != nil {
		return 0, err
	}
	return 1, nil
}

func writeRecipes(ctx context.Context, w *writer, s *legacy.Snapshot) (int, error) {
	for _, r := range s.Recipes {
		created, updated := w.stamp(r.CreatedAt, r.UpdatedAt)
		servings := 1
		if r.Servings != nil && *r.Servings > 0 {
			servings = *r.Servings
		}
		tags := r.Tags
		if tags == nil {
			tags = models.StringList{}
		}
		row := &models.Recipe{
			ID:               r.ID,
			CreatedAt:        created,
			UpdatedAt:        updated,
			UserID:           w.owner.ID,
			Name:             r.Name,
			Ingredients:      r.Ingredients,
			Instructions:     r.Instructions,
			Notes:            r.Notes,
			Servings:         servings,
			SourceID:         r.SourceID,
			ClassificationID: r.ClassificationID,
			DateAdded:        r.DateAdded,
			Calories:         roundCalories(r.Calories),
			Fat:              r.Fat,
			Cholesterol:      r.Cholesterol,
			Sodium:           r.Sodium,
			Protein:          r.Protein,
			Marked:           r.Marked,
			Tags:             tags,
		}
		if err := w.upsert(ctx, legacy.TableRecipes, r.ID, row, recipeColumns); err != nil {
			return 0, err
		}
	}
	return len(s.Recipes), nil
}

func writeCookbooks(ctx context.Context, w *writer, s *legacy.Snapshot) (int, error) {
	for _, r := range s.Cookbooks {
		created, updated := w.stamp(r.CreatedAt, r.UpdatedAt)
		row := &models.Cookbook{
			ID:          r.ID,
			CreatedAt:   created,
			UpdatedAt:   updated,
			UserID:      w.owner.ID,
			Name:        r.Name,
			Description: r.Description,
		}
		if err := w.upsert(ctx, legacy.TableCookbooks, r.ID, row, cookbookColumns); err != nil {
			return 0, err
		}
	}
	return len(s.Cookbooks), nil
}

func writeCookbookRecipes(ctx context.Context, w *writer, s *legacy.Snapshot) (int, error) {
	rows := AssignCookbookOrder(s.CookbookRecipes, w.now())
	for i := range rows {
		if err := w.upsert(ctx, legacy.TableCookbookRecipes, rows[i].ID, &rows[i], []string{"cookbook_id", "recipe_id", "order", "updated_at"}); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func roundCalories(v *float64) *int {
	if v == nil {
		return nil
	}
	n := int(math.Round(*v))
	return &n
}

// writer performs single-row upserts keyed by id.
type writer struct {
	db    *gorm.DB
	owner models.User
	now   func() time.Time
}

func (w *writer) upsert(ctx context.Context, table, id string, value interface{}, columns []string) error {
	err := w.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(value).Error
	if err != nil {
		return &UpsertError{Table: table, ID: id, Err: err}
	}
	return nil
}

// stamp keeps legacy timestamps and fills missing ones with the run time.
func (w *writer) stamp(created, updated *time.Time) (time.Time, time.Time) {
	now := w.now()
	c, u := now, now
	if created != nil && !created.IsZero() {
		c = *created
		u = c
	}
	if updated != nil && !updated.IsZero() {
		u = *updated
	}
	return c, u
}
