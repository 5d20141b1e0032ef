package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
)

// CookbookInput holds the fields of a new cookbook.
type CookbookInput struct {
	UserID      string
	Name        string
	Description *string
	CoverImage  *string
	IsPrivate   bool
}

// CookbookUpdate changes the non-nil fields.
type CookbookUpdate struct {
	Name        *string
	Description *string
	CoverImage  *string
	IsPrivate   *bool
}

// CookbookService manages cookbooks and the order of the recipes in them.
// Recipe positions in a cookbook are always 1..N.
type CookbookService struct {
	db *gorm.DB
}

func NewCookbookService(db *gorm.DB) *CookbookService {
	return &CookbookService{db: db}
}

func (s *CookbookService) ListCookbooks(ctx context.Context, userID string) ([]models.Cookbook, error) {
	query := s.db.WithContext(ctx).Order("name")
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	var cookbooks []models.Cookbook
	if err := query.Find(&cookbooks).Error; err != nil {
		return nil, err
	}
	return cookbooks, nil
}

// GetCookbook loads a cookbook with its recipes in order.
func (s *CookbookService) GetCookbook(ctx context.Context, id string) (*models.Cookbook, error) {
	var cookbook models.Cookbook
	err := s.db.WithContext(ctx).
		Preload("Recipes", func(db *gorm.DB) *gorm.DB { return db.Order(`"order"`) }).
		Preload("Recipes.Recipe").
		First(&cookbook, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "cookbook", id)
	}
	return &cookbook, nil
}

func (s *CookbookService) CreateCookbook(ctx context.Context, in CookbookInput) (*models.Cookbook, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", in.UserID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("user %s: %w", in.UserID, ErrNotFound)
	}
	cookbook := &models.Cookbook{
		ID:          uuid.New().String(),
		UserID:      in.UserID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CoverImage:  emptyToNil(in.CoverImage),
		IsPrivate:   in.IsPrivate,
	}
	if err := s.db.WithContext(ctx).Omit("Recipes").Create(cookbook).Error; err != nil {
		return nil, err
	}
	return s.GetCookbook(ctx, cookbook.ID)
}

func (s *CookbookService) UpdateCookbook(ctx context.Context, id string, in CookbookUpdate) (*models.Cookbook, error) {
	if _, err := s.GetCookbook(ctx, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		updates["description"] = in.Description
	}
	if in.CoverImage != nil {
		updates["cover_image"] = emptyToNil(in.CoverImage)
	}
	if in.IsPrivate != nil {
		updates["is_private"] = *in.IsPrivate
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Cookbook{ID: id}).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetCookbook(ctx, id)
}

func (s *CookbookService) DeleteCookbook(ctx context.Context, id string) error {
	if _, err := s.GetCookbook(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cookbook_id = ?", id).Delete(&models.CookbookRecipe{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cookbook{ID: id}).Error
	})
}

// ListRecipes returns the cookbook entries in order.
func (s *CookbookService) ListRecipes(ctx context.Context, cookbookID string) ([]models.CookbookRecipe, error) {
	if _, err := s.GetCookbook(ctx, cookbookID); err != nil {
		return nil, err
	}
	return entries(s.db.WithContext(ctx), cookbookID)
}

// AddRecipes appends the recipes not yet in the cookbook after the current
// last position. Every id must name an existing recipe.
func (s *CookbookService) AddRecipes(ctx context.Context, cookbookID string, recipeIDs []string) (added, skipped int, err error) {
	ids := unique(recipeIDs)
	if len(ids) == 0 {
		return 0, 0, fmt.Errorf("at least one recipe id is required: %w", ErrInvalid)
	}
	if _, err := s.GetCookbook(ctx, cookbookID); err != nil {
		return 0, 0, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found int64
		if err := tx.Model(&models.Recipe{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			return err
		}
		if int(found) != len(ids) {
			return fmt.Errorf("one or more recipes: %w", ErrNotFound)
		}

		current, err := entries(tx, cookbookID)
		if err != nil {
			return err
		}
		present := make(map[string]bool, len(current))
		next := 1
		for _, e := range current {
			present[e.RecipeID] = true
			if e.Order >= next {
				next = e.Order + 1
			}
		}

		for _, id := range ids {
			if present[id] {
				skipped++
				continue
			}
			entry := &models.CookbookRecipe{ID: uuid.New().String(), CookbookID: cookbookID, RecipeID: id, Order: next}
			if err := tx.Omit("Recipe").Create(entry).Error; err != nil {
				return err
			}
			next++
			added++
		}
		if added == 0 {
			return ErrAlreadyInCookbook
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return added, skipped, nil
}

// ReorderRecipes moves the given recipes to the requested positions and
// renumbers the cookbook 1..N. On equal positions a moved recipe goes before
// one that was not moved; otherwise the previous relative order is kept.
func (s *CookbookService) ReorderRecipes(ctx context.Context, cookbookID string, order map[string]int) error {
	if len(order) == 0 {
		return fmt.Errorf("no positions given: %w", ErrInvalidOrder)
	}
	for id, pos := range order {
		if pos < 0 {
			return fmt.Errorf("recipe %s position %d: %w", id, pos, ErrInvalidOrder)
		}
	}
	if _, err := s.GetCookbook(ctx, cookbookID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := entries(tx, cookbookID)
		if err != nil {
			return err
		}
		present := make(map[string]bool, len(current))
		for _, e := range current {
			present[e.RecipeID] = true
		}
		var missing []string
		for id := range order {
			if !present[id] {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return fmt.Errorf("%s: %w", strings.Join(missing, ", "), ErrNotInCookbook)
		}
		return renumber(tx, cookbookID, order)
	})
}

// RemoveRecipe takes a recipe out of the cookbook and closes the gap.
func (s *CookbookService) RemoveRecipe(ctx context.Context, cookbookID, recipeID string) error {
	if _, err := s.GetCookbook(ctx, cookbookID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("cookbook_id = ? AND recipe_id = ?", cookbookID, recipeID).Delete(&models.CookbookRecipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("recipe %s: %w", recipeID, ErrNotInCookbook)
		}
		return renumber(tx, cookbookID, nil)
	})
}

func entries(db *gorm.DB, cookbookID string) ([]models.CookbookRecipe, error) {
	var list []models.CookbookRecipe
	err := db.Where("cookbook_id = ?", cookbookID).Order(`"order"`).Order("created_at").Order("id").Find(&list).Error
	return list, err
}

// renumber rewrites positions to 1..N. Requested positions override the
// stored ones before sorting.
func renumber(tx *gorm.DB, cookbookID string, requested map[string]int) error {
	list, err := entries(tx, cookbookID)
	if err != nil {
		return err
	}
	key := make([]int, len(list))
	moved := make([]bool, len(list))
	for i, e := range list {
		key[i] = e.Order
		if pos, ok := requested[e.RecipeID]; ok {
			key[i], moved[i] = pos, true
		}
	}
	idx := make([]int, len(list))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := key[idx[a]], key[idx[b]]
		if ka != kb {
			return ka < kb
		}
		return moved[idx[a]] && !moved[idx[b]]
	})

	for n, i := range idx {
		if list[i].Order == n+1 {
			continue
		}
		if err := tx.Model(&models.CookbookRecipe{}).Where("id = ?", list[i].ID).Update("order", n+1).Error; err != nil {
			return err
		}
	}
	return nil
}
