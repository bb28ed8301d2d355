package recipe

import (
	"fmt"
	"math/rand"
	"strings"
)

var (
	fallbackUnits = []string{"cup", "tablespoon", "teaspoon", "piece"}
	nameSuffix    = map[RecipeType]string{
		TypeQuick:    "Express",
		TypeFull:     "Classic",
		TypeCreative: "Special",
	}
)

// 固定附加的基本食材
const (
	StapleOil       = "1 tablespoon olive oil"
	StapleSeasoning = "Salt and pepper to taste"
)

// Randomizer 隨機數來源，測試可注入固定序列
type Randomizer interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.Intn(n) }

// FallbackGenerator 本地降級食譜生成器
type FallbackGenerator struct {
	rng Randomizer
}

// NewFallbackGenerator 創建降級生成器，rng 為 nil 時使用 math/rand/v2
func NewFallbackGenerator(rng Randomizer) *FallbackGenerator {
	if rng == nil {
		rng = globalRand{}
	}
	return &FallbackGenerator{rng: rng}
}

// Generate 產生剛好 Variations 份食譜，不會失敗
func (g *FallbackGenerator) Generate(req *GenerationRequest) *RecipeCollection {
	collection := &RecipeCollection{Recipes: make([]Recipe, 0, req.Variations)}
	for i := 0; i < req.Variations; i++ {
		collection.Recipes = append(collection.Recipes, g.recipe(req, i))
	}
	return collection
}

func (g *FallbackGenerator) recipe(req *GenerationRequest, i int) Recipe {
	typ := recipeTypes[i%len(recipeTypes)]
	minutes := clamp(req.TargetTime-5+i*10, 10, MaxTargetTime)
	first := firstIngredient(req.Ingredients)

	return Recipe{
		ID:                 fmt.Sprintf("fallback-%d", i+1),
		Name:               fmt.Sprintf("%s %s %s", req.Cuisine, first, nameSuffix[typ]),
		Type:               typ,
		Cuisine:            req.Cuisine,
		CookingTimeMinutes: minutes,
		Difficulty:         difficulties[i%len(difficulties)],
		Ingredients:        g.ingredientLines(req.Ingredients),
		Instructions:       instructionSteps(req.Ingredients, minutes),
	}
}

// ingredientLines 每項食材加上 1-3 的數量與單位
func (g *FallbackGenerator) ingredientLines(ingredients []string) []string {
	lines := make([]string, 0, len(ingredients)+2)
	for _, ing := range ingredients {
		quantity := g.rng.IntN(3) + 1
		unit := fallbackUnits[g.rng.IntN(len(fallbackUnits))]
		if quantity > 1 {
			unit += "s"
		}
		lines = append(lines, fmt.Sprintf("%d %s %s", quantity, unit, ing))
	}
	return append(lines, StapleOil, StapleSeasoning)
}

// instructionSteps 七步驟範本
func instructionSteps(ingredients []string, minutes int) []string {
	return []string{
		fmt.Sprintf("Wash and chop the %s.", joinList(head(ingredients, 3))),
		"Heat the olive oil in a large pan over medium heat.",
		fmt.Sprintf("Sauté the %s for 5 minutes until lightly browned.", joinList(head(ingredients, 2))),
		"Add the remaining ingredients and stir well.",
		fmt.Sprintf("Cover and simmer for %d minutes, stirring occasionally.", minutes/2),
		"Season with salt and pepper to taste.",
		"Serve hot.",
	}
}

func firstIngredient(ingredients []string) string {
	if len(ingredients) == 0 {
		return ""
	}
	return ingredients[0]
}

func head(items []string, n int) []string {
	if len(items) < n {
		return items
	}
	return items[:n]
}

// joinList a / a and b / a, b and c
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return "ingredients"
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
