package gemini

import (
	"testing"

	"recipe-suggester/internal/core/ai/provider"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestSplitMessages(t *testing.T) {
	system, parts := splitMessages([]provider.Message{
		{Role: provider.RoleSystem, Content: "be a chef"},
		{Role: provider.RoleUser, Content: "make pasta"},
	})

	assert.Equal(t, "be a chef", system)
	assert.Equal(t, []genai.Part{genai.Text("make pasta")}, parts)
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"recipes":`), genai.Text(`[]}`)}}},
		},
	}
	assert.Equal(t, `{"recipes":[]}`, extractText(resp))
	assert.Equal(t, "", extractText(&genai.GenerateContentResponse{}))
	assert.Equal(t, "", extractText(nil))
}
