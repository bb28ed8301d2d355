package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	aiservice "recipe-suggester/internal/core/ai/service"
	recipeService "recipe-suggester/internal/core/recipe"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	text string
	err  error
}

func (s *stubClient) Complete(context.Context, string, string) (*aiservice.Completion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &aiservice.Completion{Text: s.text, CacheKey: "k"}, nil
}

func (s *stubClient) Remember(context.Context, string, string) {}

const upstreamBody = `{"recipes":[{"id":"r1","name":"Chicken Rice","type":"quick","cuisine":"Italian",` +
	`"cookingTimeMinutes":20,"difficulty":"Easy","ingredients":["1 cup rice"],"instructions":["Cook."]}]}`

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(client recipeService.UpstreamClient, fallback bool) *gin.Engine {
	h := NewHandler(recipeService.NewService(client, nil, fallback))
	r := gin.New()
	r.POST("/generate-recipes", h.HandleGenerateRecipes)
	r.GET("/api/hello", HandleHello)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate-recipes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestGenerateRecipesFallsBackWhenUpstreamFails(t *testing.T) {
	r := newRouter(&stubClient{err: errors.New("connection refused")}, true)

	w := post(r, `{"ingredients":["chicken","rice"],"cuisine":"Italian","targetTime":30,"variations":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fallback", w.Header().Get(recipeService.SourceHeader))

	var got recipeService.RecipeCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Recipes, 2)
	assert.Equal(t, "fallback-1", got.Recipes[0].ID)
	assert.Equal(t, "fallback-2", got.Recipes[1].ID)
	assert.Equal(t, 25, got.Recipes[0].CookingTimeMinutes)
	assert.Equal(t, 35, got.Recipes[1].CookingTimeMinutes)
	for _, rec := range got.Recipes {
		assert.Contains(t, rec.Ingredients, "1 tablespoon olive oil")
		assert.Contains(t, rec.Ingredients, "Salt and pepper to taste")
	}
}

func TestGenerateRecipesUpstream(t *testing.T) {
	r := newRouter(&stubClient{text: upstreamBody}, true)

	w := post(r, `{"ingredients":["chicken","rice"],"cuisine":"Italian","targetTime":30,"variations":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "upstream", w.Header().Get(recipeService.SourceHeader))

	var got recipeService.RecipeCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Recipes, 1)
	assert.Equal(t, "r1", got.Recipes[0].ID)
}

func TestGenerateRecipesEmptyUpstreamBatchFallsBack(t *testing.T) {
	r := newRouter(&stubClient{text: "Sure! ```json\n{\"recipes\":[]}\n```"}, true)

	w := post(r, `{"ingredients":["tofu"],"cuisine":"Thai","targetTime":20,"variations":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fallback", w.Header().Get(recipeService.SourceHeader))

	var got recipeService.RecipeCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got.Recipes, 3)
}

func TestGenerateRecipesRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"target time too small", `{"ingredients":["egg"],"cuisine":"French","targetTime":3,"variations":1}`, recipeService.MsgTargetTimeRange},
		{"zero variations", `{"ingredients":["egg"],"cuisine":"French","targetTime":30,"variations":0}`, recipeService.MsgVariationsRange},
		{"missing ingredients", `{"cuisine":"French","targetTime":30,"variations":1}`, recipeService.MsgIngredientsRequired},
		{"ingredients not a list", `{"ingredients":"egg","cuisine":"French","targetTime":30,"variations":1}`, recipeService.MsgIngredientsRequired},
		{"missing cuisine", `{"ingredients":["egg"],"targetTime":30,"variations":1}`, recipeService.MsgCuisineRequired},
		{"empty body", ``, recipeService.MsgIngredientsRequired},
		{"array body", `[1,2]`, recipeService.MsgIngredientsRequired},
		{"string body", `"x"`, recipeService.MsgIngredientsRequired},
		{"null body", `null`, recipeService.MsgIngredientsRequired},
		{"not json", `{"ingredients":`, "Invalid request format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{text: upstreamBody}
			w := post(newRouter(client, true), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, decodeError(t, w))
			assert.Empty(t, w.Header().Get(recipeService.SourceHeader))
		})
	}
}

func TestGenerateRecipesWithoutFallback(t *testing.T) {
	valid := `{"ingredients":["egg"],"cuisine":"French","targetTime":30,"variations":1}`

	tests := []struct {
		name   string
		client recipeService.UpstreamClient
		want   string
	}{
		{"not configured", nil, "OpenAI not configured. Please set OPENAI_API_KEY in .env"},
		{"upstream error", &stubClient{err: errors.New("timeout")}, "Recipe generation failed"},
		{"malformed", &stubClient{text: "not json"}, "Recipe generation failed - invalid response format"},
		{"response structure", &stubClient{text: `{"recipes":"none"}`}, "Recipe generation failed - invalid response structure"},
		{"recipe structure", &stubClient{text: `{"recipes":[{"id":"x"}]}`}, "Recipe generation failed - invalid recipe structure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(newRouter(tt.client, false), valid)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, tt.want, decodeError(t, w))
		})
	}
}

func TestHello(t *testing.T) {
	r := newRouter(nil, true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hello", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Server running"}`, w.Body.String())
}
