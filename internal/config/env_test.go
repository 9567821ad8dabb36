package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAPIKeys_Valid(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test1234567890abcdef")

	keys, err := GetAPIKeys()
	require.NoError(t, err)
	assert.Equal(t, "sk-test1234567890abcdef", keys.OpenAI)
}

func TestGetAPIKeys_Missing(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	keys, err := GetAPIKeys()
	require.NoError(t, err, "keys are optional at this layer")
	assert.Empty(t, keys.OpenAI)
}

func TestGetAPIKeys_RejectsBadFormat(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "not-a-key")
	_, err := GetAPIKeys()
	assert.Error(t, err)

	t.Setenv("OPENAI_API_KEY", "sk-short")
	_, err = GetAPIKeys()
	assert.Error(t, err)
}

func TestGetAPIKeys_TrimsWhitespace(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "  sk-test1234567890abcdef\n")

	keys, err := GetAPIKeys()
	require.NoError(t, err)
	assert.Equal(t, "sk-test1234567890abcdef", keys.OpenAI)
}
