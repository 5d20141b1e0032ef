package models

// All returns every target model in an order AutoMigrate can create.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Classification{},
		&Source{},
		&Meal{},
		&Course{},
		&Preparation{},
		&Recipe{},
		&RecipeMeal{},
		&RecipeCourse{},
		&RecipePreparation{},
		&Cookbook{},
		&CookbookRecipe{},
	}
}
