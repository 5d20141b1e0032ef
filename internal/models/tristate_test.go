package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTriStateJSON(t *testing.T) {
	type row struct {
		Marked TriState `json:"marked" yaml:"marked"`
	}

	for _, tc := range []struct {
		state TriState
		json  string
	}{
		{True, `{"marked":true}`},
		{False, `{"marked":false}`},
		{Unknown, `{"marked":null}`},
	} {
		b, err := json.Marshal(row{Marked: tc.state})
		require.NoError(t, err)
		assert.JSONEq(t, tc.json, string(b))

		var back row
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, tc.state, back.Marked)

		y, err := yaml.Marshal(row{Marked: tc.state})
		require.NoError(t, err)
		var fromYAML row
		require.NoError(t, yaml.Unmarshal(y, &fromYAML))
		assert.Equal(t, tc.state, fromYAML.Marked)
	}
}

func TestTriStateRejectsNonBoolean(t *testing.T) {
	var s TriState
	assert.Error(t, json.Unmarshal([]byte(`"yes"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`1`), &s))
}

func TestTriStateValueAndScan(t *testing.T) {
	v, err := Unknown.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = True.Value()
	require.NoError(t, err)
	assert.Equal(t, true, v)

	var s TriState
	require.NoError(t, s.Scan(int64(0)))
	assert.Equal(t, False, s)
	require.NoError(t, s.Scan(nil))
	assert.Equal(t, Unknown, s)
	require.NoError(t, s.Scan([]byte("t")))
	assert.Equal(t, True, s)
	assert.Error(t, s.Scan(3.5))
}

func TestStringList(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(`["vegan","quick"]`))
	assert.Equal(t, StringList{"vegan", "quick"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)

	require.NoError(t, l.Scan([]byte("")))
	assert.Empty(t, l)

	assert.Error(t, l.Scan(`vegan,quick`))

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList{"a"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, v)
}
