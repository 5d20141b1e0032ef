package legacy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
)

func TestNormalizeMarked(t *testing.T) {
	one := int64(1)
	tests := []struct {
		name  string
		value interface{}
		want  models.TriState
	}{
		{"int one", int64(1), models.True},
		{"int zero", int64(0), models.False},
		{"int two", int64(2), models.Unknown},
		{"negative", int64(-1), models.Unknown},
		{"plain int", 1, models.True},
		{"uint8 zero", uint8(0), models.False},
		{"large uint", uint64(1 << 63), models.Unknown},
		{"integral float", 1.0, models.True},
		{"fractional float", 0.5, models.Unknown},
		{"text one", "1", models.True},
		{"text zero", " 0 ", models.False},
		{"bytes one", []byte("1"), models.True},
		{"yes", "yes", models.Unknown},
		{"bool true", true, models.Unknown},
		{"nil", nil, models.Unknown},
		{"pointer", &one, models.True},
		{"nil pointer", (*int64)(nil), models.Unknown},
		{"already normalized", models.False, models.False},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeMarked(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeMarked_UninspectableValue(t *testing.T) {
	_, err := NormalizeMarked(time.Now())
	assert.Error(t, err)

	_, err = NormalizeMarked(map[string]int{"a": 1})
	assert.Error(t, err)
}

func TestNormalizeRecipeRow(t *testing.T) {
	t.Run("missing marked becomes unknown", func(t *testing.T) {
		row := RawRow{"id": int64(3), "name": "Soup"}
		out, err := NormalizeRecipeRow(row)
		require.NoError(t, err)
		assert.Equal(t, models.Unknown, out["marked"])
		assert.Equal(t, "Soup", out["name"])
		_, present := row["marked"]
		assert.False(t, present, "input row must not be modified")
	})

	t.Run("invalid encoding", func(t *testing.T) {
		row := RawRow{"id": int64(9), "marked": []string{"x"}}
		_, err := NormalizeRecipeRow(row)
		require.Error(t, err)

		var nerr *NormalizationError
		require.True(t, errors.As(err, &nerr))
		assert.Equal(t, TableRecipes, nerr.Table)
		assert.Equal(t, "9", nerr.RowID)
		assert.Equal(t, "marked", nerr.Field)
	})
}

func TestNormalizeDataset_OnlyTouchesRecipes(t *testing.T) {
	ds := RawDataset{
		TableRecipes: {
			{"id": int64(1), "marked": int64(1)},
			{"id": int64(2), "marked": int64(0)},
			{"id": int64(3), "marked": int64(2)},
		},
		TableCookbooks: {
			{"id": int64(1), "name": "Favourites", "marked": int64(1)},
		},
	}

	out, err := NormalizeDataset(ds)
	require.NoError(t, err)

	assert.Equal(t, models.True, out[TableRecipes][0]["marked"])
	assert.Equal(t, models.False, out[TableRecipes][1]["marked"])
	assert.Equal(t, models.Unknown, out[TableRecipes][2]["marked"])
	assert.Equal(t, int64(1), out[TableCookbooks][0]["marked"])
}
