package legacy

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/pageza/recipebox/backend/internal/models"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	stringListType = reflect.TypeOf(models.StringList{})
	triStateType   = reflect.TypeOf(models.Unknown)
)

// stringToTimeHook parses the textual date forms MySQL returns when parseTime
// is off. The zero date is treated as absent.
func stringToTimeHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String || t != timeType {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if isAbsentDate(s) {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", s)
}

func stringListHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if t != stringListType || f.Kind() != reflect.String {
		return data, nil
	}
	var list models.StringList
	if err := models.ParseStringList(data.(string), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func triStateHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if t != triStateType || f == triStateType {
		return data, nil
	}
	return NormalizeMarked(data)
}

func newDecoder(result interface{}) (*mapstructure.Decoder, error) {
	return mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "db",
		WeaklyTypedInput: true,
		Result:           result,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToTimeHook,
			stringListHook,
			triStateHook,
		),
	})
}

// dateColumns lists the db columns of a row type that hold dates.
func dateColumns(rowType reflect.Type) map[string]bool {
	cols := make(map[string]bool)
	for i := 0; i < rowType.NumField(); i++ {
		field := rowType.Field(i)
		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft != timeType {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if name != "" {
			cols[name] = true
		}
	}
	return cols
}

// isAbsentDate reports whether a textual date means no date at all.
func isAbsentDate(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.HasPrefix(s, "0000-00-00")
}

// cleanRow turns driver bytes into strings, and zero or blank dates into NULL.
func cleanRow(row RawRow, dates map[string]bool) map[string]interface{} {
	out := make(map[string]interface{}, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		switch val := v.(type) {
		case time.Time:
			if val.IsZero() {
				out[k] = nil
			} else {
				out[k] = val.UTC()
			}
		case string:
			if strings.HasPrefix(val, "0000-00-00") || (dates[k] && isAbsentDate(val)) {
				out[k] = nil
			} else {
				out[k] = val
			}
		default:
			out[k] = v
		}
	}
	return out
}

func decodeRows[T any](table string, rows []RawRow) ([]T, error) {
	out := make([]T, 0, len(rows))
	dates := dateColumns(reflect.TypeOf((*T)(nil)).Elem())
	for _, row := range rows {
		var item T
		dec, err := newDecoder(&item)
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(cleanRow(row, dates)); err != nil {
			return nil, &NormalizationError{Table: table, RowID: rowID(row), Err: err}
		}
		out = append(out, item)
	}
	return out, nil
}

// Decode maps raw rows into the typed snapshot tables. The header fields are
// left for the caller.
func Decode(ds RawDataset) (*Snapshot, error) {
	var (
		s   = &Snapshot{Version: SnapshotVersion}
		err error
	)
	if s.Classifications, err = decodeRows[LookupRow](TableClassifications, ds[TableClassifications]); err != nil {
		return nil, err
	}
	if s.Sources, err = decodeRows[LookupRow](TableSources, ds[TableSources]); err != nil {
		return nil, err
	}
	if s.Meals, err = decodeRows[LookupRow](TableMeals, ds[TableMeals]); err != nil {
		return nil, err
	}
	if s.Courses, err = decodeRows[LookupRow](TableCourses, ds[TableCourses]); err != nil {
		return nil, err
	}
	if s.Preparations, err = decodeRows[LookupRow](TablePreparations, ds[TablePreparations]); err != nil {
		return nil, err
	}
	if s.Recipes, err = decodeRows[RecipeRow](TableRecipes, ds[TableRecipes]); err != nil {
		return nil, err
	}
	if s.RecipeMeals, err = decodeRows[RecipeMealRow](TableRecipeMeals, ds[TableRecipeMeals]); err != nil {
		return nil, err
	}
	if s.RecipeCourses, err = decodeRows[RecipeCourseRow](TableRecipeCourses, ds[TableRecipeCourses]); err != nil {
		return nil, err
	}
	if s.RecipePreparations, err = decodeRows[RecipePreparationRow](TableRecipePreparations, ds[TableRecipePreparations]); err != nil {
		return nil, err
	}
	if s.Cookbooks, err = decodeRows[CookbookRow](TableCookbooks, ds[TableCookbooks]); err != nil {
		return nil, err
	}
	if s.CookbookRecipes, err = decodeRows[CookbookRecipeRow](TableCookbookRecipes, ds[TableCookbookRecipes]); err != nil {
		return nil, err
	}
	s.Counts = s.RowCounts()
	return s, nil
}

// BuildSnapshot normalizes and decodes an extracted dataset and stamps the header.
func BuildSnapshot(ds RawDataset, database string, extractedAt time.Time) (*Snapshot, error) {
	normalized, err := NormalizeDataset(ds)
	if err != nil {
		return nil, err
	}
	s, err := Decode(normalized)
	if err != nil {
		return nil, err
	}
	s.SourceDatabase = database
	s.ExtractedAt = extractedAt.UTC()
	return s, nil
}
