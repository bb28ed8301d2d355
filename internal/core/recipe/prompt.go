package recipe

import (
	"fmt"
	"strings"
)

// systemPrompt 食材、烹調方式與輸出格式限制
const systemPrompt = `You are a professional chef and recipe developer. Generate realistic, home-cookable recipes that follow these STRICT rules:

1. ONLY use the provided ingredients plus common pantry staples: oil, salt, pepper, butter, water, sugar, basic herbs (oregano, basil, thyme, rosemary, parsley, cilantro), flour, eggs, milk, vinegar, lemon juice, garlic powder, onion powder, paprika, cumin, bay leaves.

2. NO exotic, hard-to-find, or fictional ingredients.

3. ONLY use common cooking methods: boil, sauté, bake, roast, grill, steam, stir-fry, simmer, mix, blend, chop, dice, slice.

4. Cooking times must be between 5-120 minutes and realistic for home cooking.

5. ALL ingredients must include specific quantities (e.g., "2 cups pasta", "1 tbsp olive oil").

6. Instructions must be 3-10 clear, numbered steps that a home cook can follow.

7. Recipes must be feasible for home cooking with standard kitchen equipment.

8. Return ONLY valid JSON in this exact format - no markdown, no code fences, no extra text:

{
  "recipes": [
    {
      "id": "slug-string",
      "name": "Recipe Name",
      "type": "quick|full|creative",
      "cuisine": "Cuisine Type",
      "cookingTimeMinutes": 30,
      "difficulty": "Easy|Medium|Hard",
      "ingredients": ["1 cup ingredient", "2 tbsp another ingredient"],
      "instructions": ["Step 1 instruction", "Step 2 instruction"]
    }
  ]
}`

// Prompt 上游提示詞
type Prompt struct {
	System string
	User   string
}

// BuildPrompt 建立 system 與 user 指令
func BuildPrompt(req *GenerationRequest) Prompt {
	return Prompt{
		System: systemPrompt,
		User: fmt.Sprintf("Generate %d %s recipes using these ingredients: %s. Target cooking time: %d minutes.",
			req.Variations,
			req.Cuisine,
			strings.Join(req.Ingredients, ", "),
			req.TargetTime,
		),
	}
}
