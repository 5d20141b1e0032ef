package models

import (
	"time"
)

type Recipe struct {
	ID               string     `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	UserID           string     `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name             string     `gorm:"size:255;not null" json:"name"`
	Ingredients      string     `gorm:"type:text;not null" json:"ingredients"`
	Instructions     string     `gorm:"type:text;not null" json:"instructions"`
	Notes            *string    `gorm:"type:text" json:"notes"`
	Servings         int        `gorm:"not null;default:1" json:"servings"`
	SourceID         *string    `gorm:"type:varchar(36);index" json:"source_id"`
	ClassificationID *string    `gorm:"type:varchar(36);index" json:"classification_id"`
	DateAdded        *time.Time `json:"date_added"`
	Calories         *int       `json:"calories"`
	Fat              *float64   `json:"fat"`
	Cholesterol      *float64   `json:"cholesterol"`
	Sodium           *float64   `json:"sodium"`
	Protein          *float64   `json:"protein"`
	Marked           TriState   `gorm:"type:boolean" json:"marked"`
	Tags             StringList `gorm:"type:text;not null;default:'[]'" json:"tags"`
	IsPrivate        bool       `gorm:"not null;default:false" json:"is_private"`

	User           *User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Source         *Source             `gorm:"foreignKey:SourceID" json:"source,omitempty"`
	Classification *Classification     `gorm:"foreignKey:ClassificationID" json:"classification,omitempty"`
	Meals          []RecipeMeal        `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"meals,omitempty"`
	Courses        []RecipeCourse      `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"courses,omitempty"`
	Preparations   []RecipePreparation `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"preparations,omitempty"`
}

func (Recipe) TableName() string {
	return "recipes"
}

type RecipeMeal struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	RecipeID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_meal" json:"recipe_id"`
	MealID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_meal" json:"meal_id"`
	Meal      *Meal     `gorm:"foreignKey:MealID" json:"meal,omitempty"`
}

func (RecipeMeal) TableName() string {
	return "recipe_meals"
}

type RecipeCourse struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	RecipeID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_course" json:"recipe_id"`
	CourseID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_course" json:"course_id"`
	Course    *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (RecipeCourse) TableName() string {
	return "recipe_courses"
}

type RecipePreparation struct {
	ID            string       `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	RecipeID      string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_preparation" json:"recipe_id"`
	PreparationID string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_preparation" json:"preparation_id"`
	Preparation   *Preparation `gorm:"foreignKey:PreparationID" json:"preparation,omitempty"`
}

func (RecipePreparation) TableName() string {
	return "recipe_preparations"
}
