package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{"recipes":[{"id":"a","cookingTimeMinutes":30}]}`

func TestNormalizeCodeFenceEquivalence(t *testing.T) {
	plain, err := Normalize(sampleJSON)
	require.NoError(t, err)

	for _, raw := range []string{
		"```json\n" + sampleJSON + "\n```",
		"```\n" + sampleJSON + "\n```",
		"  ```JSON\r\n" + sampleJSON + "\r\n```  ",
		"```json" + sampleJSON + "```",
		"\n\n" + sampleJSON + "\n",
	} {
		fenced, err := Normalize(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, plain, fenced, raw)
	}
}

func TestNormalizeFenceAfterProse(t *testing.T) {
	parsed, err := Normalize("Sure! ```json\n{\"recipes\":[]}\n```")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"recipes": []any{}}, parsed)
}

func TestNormalizeKeepsBackticksInsideUnfencedJSON(t *testing.T) {
	raw := `{"recipes":[{"id":"a","instructions":["use ` + "```" + ` a"]}]}`

	parsed, err := Normalize(raw)
	require.NoError(t, err)

	recipes := parsed.(map[string]any)["recipes"].([]any)
	instructions := recipes[0].(map[string]any)["instructions"].([]any)
	assert.Equal(t, "use ``` a", instructions[0])
	assert.Equal(t, raw, StripCodeFence("  "+raw+"\n"))
}

func TestNormalizeMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"Here are your recipes!",
		`{"recipes": [`,
		`{"recipes": []} trailing`,
		"```json\n{not json}\n```",
	} {
		_, err := Normalize(raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, ErrMalformedResponse)

		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, StageNormalize, genErr.Stage)
		assert.Equal(t, raw, genErr.Raw)
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "{}", StripCodeFence("```json\n{}\n```"))
	assert.Equal(t, "{}", StripCodeFence("  {}  "))
}
