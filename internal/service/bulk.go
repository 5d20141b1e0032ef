package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
)

// Bulk actions.
const (
	BulkDeleteAction = "delete"
	BulkUpdateAction = "update"
)

// InUseRow is a row a bulk delete refused to remove, with what still points at it.
type InUseRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Recipes   int64  `json:"recipes"`
	Cookbooks int64  `json:"cookbooks,omitempty"`
}

// InUseError lists the rows that block a bulk delete. Nothing is deleted.
type InUseError struct {
	Entity string
	Rows   []InUseRow
}

func (e *InUseError) Error() string {
	ids := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		ids[i] = r.ID
	}
	return fmt.Sprintf("%s still in use: %s", e.Entity, strings.Join(ids, ", "))
}

func (e *InUseError) Unwrap() error { return ErrInUse }

type fieldKind int

const (
	textField fieldKind = iota
	optionalTextField
	boolField
	triStateField
	countField
	refField
)

type bulkField struct {
	kind  fieldKind
	table string
	min   float64
}

// bulkFields are the columns a bulk update may set, per entity.
var bulkFields = map[string]map[string]bulkField{
	"recipes": {
		"name":              {kind: textField},
		"notes":             {kind: optionalTextField},
		"servings":          {kind: countField, min: 1},
		"marked":            {kind: triStateField},
		"is_private":        {kind: boolField},
		"user_id":           {kind: refField, table: "users"},
		"source_id":         {kind: refField, table: "sources"},
		"classification_id": {kind: refField, table: "classifications"},
	},
	"cookbooks": {
		"name":        {kind: textField},
		"description": {kind: optionalTextField},
		"is_private":  {kind: boolField},
		"user_id":     {kind: refField, table: "users"},
	},
	"users": {
		"name":                {kind: textField},
		"subscription_tier":   {kind: countField},
		"subscription_status": {kind: textField},
		"admin_override":      {kind: boolField},
	},
}

type lookupTable struct {
	model interface{}
	ref   Reference
}

// lookupTables maps each lookup table to its model and where it is referenced from.
var lookupTables = map[string]lookupTable{
	"classifications": {&models.Classification{}, Reference{Table: "recipes", Column: "classification_id"}},
	"sources":         {&models.Source{}, Reference{Table: "recipes", Column: "source_id"}},
	"meals":           {&models.Meal{}, Reference{Table: "recipe_meals", Column: "meal_id"}},
	"courses":         {&models.Course{}, Reference{Table: "recipe_courses", Column: "course_id"}},
	"preparations":    {&models.Preparation{}, Reference{Table: "recipe_preparations", Column: "preparation_id"}},
}

// BulkService applies one delete or update to many rows of an entity at once.
type BulkService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBulkService(db *gorm.DB) *BulkService {
	return &BulkService{db: db, now: time.Now}
}

// BulkDelete removes the rows with the given ids and returns how many were
// deleted. Unknown ids are skipped. Users that own recipes or cookbooks and
// lookups still referenced block the whole delete with an InUseError.
func (s *BulkService) BulkDelete(ctx context.Context, entity string, ids []string) (int64, error) {
	ids = unique(ids)
	if len(ids) == 0 {
		return 0, fmt.Errorf("at least one id is required: %w", ErrInvalid)
	}

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		switch entity {
		case "recipes":
			deleted, err = deleteRecipes(tx, ids)
		case "cookbooks":
			deleted, err = deleteCookbooks(tx, ids)
		case "users":
			deleted, err = deleteUsers(tx, ids)
		default:
			lookup, ok := lookupTables[entity]
			if !ok {
				return fmt.Errorf("cannot bulk delete %q: %w", entity, ErrInvalid)
			}
			deleted, err = deleteLookups(tx, entity, lookup, ids)
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func deleteRecipes(tx *gorm.DB, ids []string) (int64, error) {
	var cookbookIDs []string
	if err := tx.Model(&models.CookbookRecipe{}).Where("recipe_id IN ?", ids).Distinct().Pluck("cookbook_id", &cookbookIDs).Error; err != nil {
		return 0, err
	}
	for _, model := range []interface{}{&models.CookbookRecipe{}, &models.RecipeMeal{}, &models.RecipeCourse{}, &models.RecipePreparation{}} {
		if err := tx.Where("recipe_id IN ?", ids).Delete(model).Error; err != nil {
			return 0, err
		}
	}
	res := tx.Where("id IN ?", ids).Delete(&models.Recipe{})
	if res.Error != nil {
		return 0, res.Error
	}
	for _, cookbookID := range cookbookIDs {
		if err := renumber(tx, cookbookID, nil); err != nil {
			return 0, err
		}
	}
	return res.RowsAffected, nil
}

func deleteCookbooks(tx *gorm.DB, ids []string) (int64, error) {
	if err := tx.Where("cookbook_id IN ?", ids).Delete(&models.CookbookRecipe{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("id IN ?", ids).Delete(&models.Cookbook{})
	return res.RowsAffected, res.Error
}

func deleteUsers(tx *gorm.DB, ids []string) (int64, error) {
	recipes, err := countBy(tx, "recipes", "user_id", ids)
	if err != nil {
		return 0, err
	}
	cookbooks, err := countBy(tx, "cookbooks", "user_id", ids)
	if err != nil {
		return 0, err
	}
	if len(recipes)+len(cookbooks) > 0 {
		rows, err := inUseRows(tx, "users", ids, recipes, cookbooks)
		if err != nil {
			return 0, err
		}
		return 0, &InUseError{Entity: "users", Rows: rows}
	}
	res := tx.Where("id IN ?", ids).Delete(&models.User{})
	return res.RowsAffected, res.Error
}

func deleteLookups(tx *gorm.DB, table string, lookup lookupTable, ids []string) (int64, error) {
	used, err := countBy(tx, lookup.ref.Table, lookup.ref.Column, ids)
	if err != nil {
		return 0, err
	}
	if len(used) > 0 {
		rows, err := inUseRows(tx, table, ids, used, nil)
		if err != nil {
			return 0, err
		}
		return 0, &InUseError{Entity: table, Rows: rows}
	}
	res := tx.Where("id IN ?", ids).Delete(lookup.model)
	return res.RowsAffected, res.Error
}

// countBy counts the rows of table per value of column, for the given values.
func countBy(tx *gorm.DB, table, column string, ids []string) (map[string]int64, error) {
	var rows []struct {
		ID string
		N  int64
	}
	err := tx.Table(table).
		Select(column+" AS id, COUNT(*) AS n").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.N
	}
	return out, nil
}

func inUseRows(tx *gorm.DB, table string, ids []string, recipes, cookbooks map[string]int64) ([]InUseRow, error) {
	var named []struct {
		ID   string
		Name string
	}
	if err := tx.Table(table).Select("id, name").Where("id IN ?", ids).Order("id").Scan(&named).Error; err != nil {
		return nil, err
	}
	var rows []InUseRow
	for _, n := range named {
		if recipes[n.ID] == 0 && cookbooks[n.ID] == 0 {
			continue
		}
		rows = append(rows, InUseRow{ID: n.ID, Name: n.Name, Recipes: recipes[n.ID], Cookbooks: cookbooks[n.ID]})
	}
	return rows, nil
}

// BulkUpdate sets the same fields on every row with the given ids and
// returns how many rows were updated. Only recipes, cookbooks and users
// support it, and only the fields in bulkFields.
func (s *BulkService) BulkUpdate(ctx context.Context, entity string, ids []string, data map[string]interface{}) (int64, error) {
	fields, ok := bulkFields[entity]
	if !ok {
		return 0, fmt.Errorf("cannot bulk update %q: %w", entity, ErrInvalid)
	}
	ids = unique(ids)
	if len(ids) == 0 {
		return 0, fmt.Errorf("at least one id is required: %w", ErrInvalid)
	}
	if len(data) == 0 {
		return 0, fmt.Errorf("nothing to update: %w", ErrInvalid)
	}

	db := s.db.WithContext(ctx)
	updates := make(map[string]interface{}, len(data)+1)
	columns := make([]string, 0, len(data))
	for column := range data {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	for _, column := range columns {
		field, ok := fields[column]
		if !ok {
			return 0, fmt.Errorf("%s.%s cannot be bulk updated: %w", entity, column, ErrInvalid)
		}
		value, err := field.convert(column, data[column])
		if err != nil {
			return 0, err
		}
		if field.kind == refField {
			if err := checkRef(db, field.table, value.(string)); err != nil {
				return 0, err
			}
		}
		updates[column] = value
	}
	updates["updated_at"] = s.now().UTC()

	res := db.Table(entity).Where("id IN ?", ids).Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (f bulkField) convert(column string, v interface{}) (interface{}, error) {
	invalid := func(want string) error {
		return fmt.Errorf("%s must be %s: %w", column, want, ErrInvalid)
	}
	switch f.kind {
	case textField, refField:
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, invalid("a non-empty string")
		}
		return strings.TrimSpace(s), nil
	case optionalTextField:
		if v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, invalid("a string or null")
		}
		return s, nil
	case boolField:
		b, ok := v.(bool)
		if !ok {
			return nil, invalid("a boolean")
		}
		return b, nil
	case triStateField:
		if v == nil {
			return models.Unknown, nil
		}
		b, ok := v.(bool)
		if !ok {
			return nil, invalid("true, false or null")
		}
		return models.TriStateOf(b), nil
	case countField:
		n, ok := v.(float64)
		if !ok || n < f.min || n != math.Trunc(n) || n > math.MaxInt32 {
			return nil, invalid(fmt.Sprintf("an integer of at least %d", int(f.min)))
		}
		return int(n), nil
	}
	return nil, invalid("known")
}

func checkRef(db *gorm.DB, table, id string) error {
	var n int64
	if err := db.Table(table).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", strings.TrimSuffix(table, "s"), id, ErrNotFound)
	}
	return nil
}
