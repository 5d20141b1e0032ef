package legacy

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/pageza/recipebox/backend/internal/models"
)

const markedColumn = "marked"

// NormalizeMarked maps the legacy marked encoding: integer 1 is true, integer 0
// is false, anything else is unknown. Values whose type cannot be inspected as
// a scalar are rejected.
func NormalizeMarked(value interface{}) (models.TriState, error) {
	switch v := value.(type) {
	case nil:
		return models.Unknown, nil
	case models.TriState:
		return v, nil
	case int64:
		return triStateFromInt(v), nil
	case int:
		return triStateFromInt(int64(v)), nil
	case int32:
		return triStateFromInt(int64(v)), nil
	case int16:
		return triStateFromInt(int64(v)), nil
	case int8:
		return triStateFromInt(int64(v)), nil
	case uint64:
		if v > 1 {
			return models.Unknown, nil
		}
		return triStateFromInt(int64(v)), nil
	case uint:
		return NormalizeMarked(uint64(v))
	case uint32:
		return NormalizeMarked(uint64(v))
	case uint16:
		return NormalizeMarked(uint64(v))
	case uint8:
		return NormalizeMarked(uint64(v))
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return models.Unknown, nil
		}
		return triStateFromInt(int64(v)), nil
	case float32:
		return NormalizeMarked(float64(v))
	case bool:
		return models.Unknown, nil
	case []byte:
		return NormalizeMarked(string(v))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return models.Unknown, nil
		}
		return triStateFromInt(n), nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return models.Unknown, nil
		}
		return NormalizeMarked(rv.Elem().Interface())
	}
	return models.Unknown, fmt.Errorf("unsupported value of type %T", value)
}

func triStateFromInt(n int64) models.TriState {
	switch n {
	case 1:
		return models.True
	case 0:
		return models.False
	default:
		return models.Unknown
	}
}

// NormalizeRecipeRow returns a copy of a recipes row whose marked field holds
// a models.TriState. A missing marked column becomes Unknown.
func NormalizeRecipeRow(row RawRow) (RawRow, error) {
	state, err := NormalizeMarked(row[markedColumn])
	if err != nil {
		return nil, &NormalizationError{
			Table: TableRecipes,
			RowID: rowID(row),
			Field: markedColumn,
			Err:   err,
		}
	}

	out := make(RawRow, len(row)+1)
	for k, v := range row {
		out[k] = v
	}
	out[markedColumn] = state
	return out, nil
}

// NormalizeDataset applies the recipe normalization to the recipes table and
// leaves every other table untouched.
func NormalizeDataset(ds RawDataset) (RawDataset, error) {
	out := make(RawDataset, len(ds))
	for table, rows := range ds {
		if table != TableRecipes {
			out[table] = rows
			continue
		}
		normalized := make([]RawRow, 0, len(rows))
		for _, row := range rows {
			n, err := NormalizeRecipeRow(row)
			if err != nil {
				return nil, err
			}
			normalized = append(normalized, n)
		}
		out[table] = normalized
	}
	return out, nil
}

func rowID(row RawRow) string {
	id, ok := row["id"]
	if !ok || id == nil {
		return "?"
	}
	if b, ok := id.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(id)
}
