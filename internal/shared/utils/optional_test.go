package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchBody struct {
	Category Optional[string] `json:"category"`
}

func TestOptional(t *testing.T) {
	var absent, null, value patchBody

	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"category":null}`), &null))
	require.NoError(t, json.Unmarshal([]byte(`{"category":"films"}`), &value))

	assert.False(t, absent.Category.Set)
	assert.True(t, null.Category.Set)
	assert.Nil(t, null.Category.Value)
	assert.Equal(t, Some("films"), value.Category)
}
