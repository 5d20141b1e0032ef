package legacy

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
)

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("out/snapshot.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("snapshot.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("snapshot.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("s3://bucket/snapshot"))
}

func TestMarshalUnmarshal(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			s, err := BuildSnapshot(sampleDataset(), "recipes_legacy", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
			require.NoError(t, err)

			data, err := Marshal(s, format)
			require.NoError(t, err)

			back, err := Unmarshal(data, format)
			require.NoError(t, err)

			assert.Equal(t, s.SourceDatabase, back.SourceDatabase)
			assert.True(t, s.ExtractedAt.Equal(back.ExtractedAt))
			assert.Equal(t, s.Counts, back.Counts)
			require.Len(t, back.Recipes, 2)
			assert.Equal(t, models.True, back.Recipes[0].Marked)
			assert.Equal(t, models.Unknown, back.Recipes[1].Marked)
			assert.Equal(t, models.StringList{"baking", "fruit"}, back.Recipes[0].Tags)
			assert.Nil(t, back.Recipes[1].DateAdded)
			assert.Nil(t, back.CookbookRecipes[0].Order)
			require.NoError(t, back.Validate())
		})
	}
}

func TestMarshal_UnrepresentableValue(t *testing.T) {
	s, err := BuildSnapshot(sampleDataset(), "db", time.Now())
	require.NoError(t, err)
	nan := math.NaN()
	s.Recipes[0].Fat = &nan

	data, err := Marshal(s, FormatJSON)
	require.Error(t, err)
	assert.Nil(t, data)

	var serr *SerializationError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, FormatJSON, serr.Format)
}

func TestUnmarshal_RejectsUnknownVersion(t *testing.T) {
	_, err := Unmarshal([]byte(`{"version": 7}`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported snapshot version 7")

	_, err = Unmarshal([]byte(`{not json`), FormatJSON)
	assert.Error(t, err)
}
