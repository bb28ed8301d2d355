package recipe

// RecipeType 食譜類型
type RecipeType string

const (
	TypeQuick    RecipeType = "quick"
	TypeFull     RecipeType = "full"
	TypeCreative RecipeType = "creative"
)

// Difficulty 難度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// SourceHeader 回應中標示食譜來源的標頭
const SourceHeader = "X-Recipe-Source"

// Source 食譜來源
type Source string

const (
	SourceUpstream Source = "upstream"
	SourceFallback Source = "fallback"
)

// 時間與變化數量範圍
const (
	MinTargetTime = 5
	MaxTargetTime = 120
	MinVariations = 1
	MaxVariations = 5
)

var (
	recipeTypes  = []RecipeType{TypeQuick, TypeFull, TypeCreative}
	difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
)

// GenerationInput 未經驗證的請求內容，欄位型別由驗證決定
type GenerationInput struct {
	Ingredients any `json:"ingredients"`
	Cuisine     any `json:"cuisine"`
	TargetTime  any `json:"targetTime"`
	Variations  any `json:"variations"`
}

// GenerationRequest 已驗證的生成請求
type GenerationRequest struct {
	Ingredients []string `json:"ingredients"`
	Cuisine     string   `json:"cuisine"`
	TargetTime  int      `json:"targetTime"`
	Variations  int      `json:"variations"`
}

// Recipe 食譜
type Recipe struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Type               RecipeType `json:"type"`
	Cuisine            string     `json:"cuisine"`
	CookingTimeMinutes int        `json:"cookingTimeMinutes"`
	Difficulty         Difficulty `json:"difficulty"`
	Ingredients        []string   `json:"ingredients"`
	Instructions       []string   `json:"instructions"`
}

// RecipeCollection 一次生成的食譜集合
type RecipeCollection struct {
	Recipes []Recipe `json:"recipes"`
}

// Valid 是否為已知類型
func (t RecipeType) Valid() bool {
	for _, v := range recipeTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Valid 是否為已知難度
func (d Difficulty) Valid() bool {
	for _, v := range difficulties {
		if d == v {
			return true
		}
	}
	return false
}
