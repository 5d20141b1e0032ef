package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
)

// LookupModel is a pointer to one of the lookup models.
type LookupModel[T any] interface {
	*T
	LookupFields() *models.Lookup
}

// Reference is a column elsewhere that points at a lookup row.
type Reference struct {
	Table  string
	Column string
}

// LookupService is CRUD over one lookup table. Rows still referenced cannot
// be deleted.
type LookupService[T any, P LookupModel[T]] struct {
	db   *gorm.DB
	name string
	refs []Reference
}

// NewLookupService creates a LookupService. name is used in error messages.
func NewLookupService[T any, P LookupModel[T]](db *gorm.DB, name string, refs ...Reference) *LookupService[T, P] {
	return &LookupService[T, P]{db: db, name: name, refs: refs}
}

func NewClassificationService(db *gorm.DB) *LookupService[models.Classification, *models.Classification] {
	return NewLookupService[models.Classification](db, "classification", Reference{Table: "recipes", Column: "classification_id"})
}

func NewSourceService(db *gorm.DB) *LookupService[models.Source, *models.Source] {
	return NewLookupService[models.Source](db, "source", Reference{Table: "recipes", Column: "source_id"})
}

func NewMealService(db *gorm.DB) *LookupService[models.Meal, *models.Meal] {
	return NewLookupService[models.Meal](db, "meal", Reference{Table: "recipe_meals", Column: "meal_id"})
}

func NewCourseService(db *gorm.DB) *LookupService[models.Course, *models.Course] {
	return NewLookupService[models.Course](db, "course", Reference{Table: "recipe_courses", Column: "course_id"})
}

func NewPreparationService(db *gorm.DB) *LookupService[models.Preparation, *models.Preparation] {
	return NewLookupService[models.Preparation](db, "preparation", Reference{Table: "recipe_preparations", Column: "preparation_id"})
}

// List returns every row ordered by name.
func (s *LookupService[T, P]) List(ctx context.Context) ([]T, error) {
	var rows []T
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *LookupService[T, P]) Get(ctx context.Context, id string) (*T, error) {
	var row T
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err, s.name, id)
	}
	return &row, nil
}

func (s *LookupService[T, P]) Create(ctx context.Context, name string, description *string) (*T, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s name is required: %w", s.name, ErrInvalid)
	}
	var row T
	fields := P(&row).LookupFields()
	fields.ID = uuid.New().String()
	fields.Name = name
	fields.Description = description
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Update changes the fields that are non-nil.
func (s *LookupService[T, P]) Update(ctx context.Context, id string, name, description *string) (*T, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, fmt.Errorf("%s name is required: %w", s.name, ErrInvalid)
		}
		updates["name"] = strings.TrimSpace(*name)
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) == 0 {
		return row, nil
	}
	if err := s.db.WithContext(ctx).Model(P(row)).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a row unless a recipe still references it.
func (s *LookupService[T, P]) Delete(ctx context.Context, id string) error {
	row, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	for _, ref := range s.refs {
		var n int64
		if err := db.Table(ref.Table).Where(ref.Column+" = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%s %s is used by %d recipe(s): %w", s.name, id, n, ErrInUse)
		}
	}
	return db.Delete(P(row)).Error
}
