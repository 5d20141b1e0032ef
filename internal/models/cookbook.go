package models

import (
	"time"
)

type Cookbook struct {
	ID          string           `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	UserID      string           `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name        string           `gorm:"size:255;not null" json:"name"`
	Description *string          `gorm:"type:text" json:"description"`
	CoverImage  *string          `gorm:"size:255" json:"cover_image"`
	IsPrivate   bool             `gorm:"not null;default:false" json:"is_private"`
	User        *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Recipes     []CookbookRecipe `gorm:"foreignKey:CookbookID;constraint:OnDelete:CASCADE" json:"recipes,omitempty"`
}

func (Cookbook) TableName() string {
	return "cookbooks"
}

// CookbookRecipe places a recipe in a cookbook. Order is 1..N within a cookbook.
type CookbookRecipe struct {
	ID         string    `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CookbookID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cookbook_recipe;index:idx_cookbook_order" json:"cookbook_id"`
	RecipeID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cookbook_recipe" json:"recipe_id"`
	Order      int       `gorm:"column:order;not null;index:idx_cookbook_order" json:"order"`
	Recipe     *Recipe   `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"recipe,omitempty"`
}

func (CookbookRecipe) TableName() string {
	return "cookbook_recipes"
}
