// Package legacy holds the snapshot of the legacy recipe database: the raw rows
// read from the source, the normalization applied to them, and the typed,
// serializable snapshot the seeder replays.
package legacy

const (
	TableClassifications    = "classifications"
	TableSources            = "sources"
	TableMeals              = "meals"
	TableCourses            = "courses"
	TablePreparations       = "preparations"
	TableRecipes            = "recipes"
	TableRecipeMeals        = "recipe_meals"
	TableRecipeCourses      = "recipe_courses"
	TableRecipePreparations = "recipe_preparations"
	TableCookbooks          = "cookbooks"
	TableCookbookRecipes    = "cookbook_recipes"
)

// Tables lists the extracted tables in extraction order.
var Tables = []string{
	TableClassifications,
	TableSources,
	TableMeals,
	TableCourses,
	TablePreparations,
	TableRecipes,
	TableRecipeMeals,
	TableRecipeCourses,
	TableRecipePreparations,
	TableCookbooks,
	TableCookbookRecipes,
}

// RawRow is one source row keyed by column name.
type RawRow map[string]interface{}

// RawDataset holds every extracted table. It is only built when all tables
// were read successfully.
type RawDataset map[string][]RawRow

// Counts returns the number of rows per table.
func (d RawDataset) Counts() map[string]int {
	counts := make(map[string]int, len(Tables))
	for _, table := range Tables {
		counts[table] = len(d[table])
	}
	return counts
}
