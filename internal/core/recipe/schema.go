package recipe

import (
	"errors"
	"fmt"
	"strings"
)

// RecipeError 單一食譜不合格，Index 為其在 recipes 中的位置
type RecipeError struct {
	Index int
	Err   error
}

func (e *RecipeError) Error() string {
	return fmt.Sprintf("recipes[%d]: %v", e.Index, e.Err)
}

func (e *RecipeError) Unwrap() error {
	return e.Err
}

func recipeError(i int, err error) error {
	return &RecipeError{Index: i, Err: err}
}

// ValidateSchema 檢查通用結構並轉為 RecipeCollection，任一食譜不合格則整批拒絕
func ValidateSchema(parsed any) (*RecipeCollection, error) {
	collection, err := decodeCollection(parsed)
	if err != nil {
		return nil, schemaViolation(err, "")
	}
	if err := CheckCollection(collection); err != nil {
		return nil, schemaViolation(err, "")
	}
	return collection, nil
}

// decodeCollection 檢查欄位存在與型別
func decodeCollection(parsed any) (*RecipeCollection, error) {
	root, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value is not an object")
	}
	items, ok := root["recipes"].([]any)
	if !ok {
		return nil, fmt.Errorf("recipes: missing or not a list")
	}

	collection := &RecipeCollection{Recipes: make([]Recipe, 0, len(items))}
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, recipeError(i, errors.New("not an object"))
		}

		var r Recipe
		var err error
		if r.ID, err = requiredString(obj, "id"); err != nil {
			return nil, recipeError(i, err)
		}
		if r.Name, err = requiredString(obj, "name"); err != nil {
			return nil, recipeError(i, err)
		}
		typ, err := requiredString(obj, "type")
		if err != nil {
			return nil, recipeError(i, err)
		}
		r.Type = RecipeType(typ)
		if r.Cuisine, err = requiredString(obj, "cuisine"); err != nil {
			return nil, recipeError(i, err)
		}
		minutes, ok := toInt(obj["cookingTimeMinutes"])
		if !ok || minutes == 0 {
			return nil, recipeError(i, errors.New("cookingTimeMinutes: missing or not an integer"))
		}
		r.CookingTimeMinutes = minutes
		difficulty, err := requiredString(obj, "difficulty")
		if err != nil {
			return nil, recipeError(i, err)
		}
		r.Difficulty = Difficulty(difficulty)
		if r.Ingredients, err = stringList(obj, "ingredients"); err != nil {
			return nil, recipeError(i, err)
		}
		if r.Instructions, err = stringList(obj, "instructions"); err != nil {
			return nil, recipeError(i, err)
		}

		collection.Recipes = append(collection.Recipes, r)
	}
	return collection, nil
}

// CheckCollection 檢查非空、列舉值、時間範圍與 id 唯一
func CheckCollection(c *RecipeCollection) error {
	if c == nil || len(c.Recipes) == 0 {
		return fmt.Errorf("recipes: empty collection")
	}

	seen := make(map[string]struct{}, len(c.Recipes))
	for i, r := range c.Recipes {
		switch {
		case strings.TrimSpace(r.ID) == "":
			return recipeError(i, errors.New("id: missing"))
		case strings.TrimSpace(r.Name) == "":
			return recipeError(i, errors.New("name: missing"))
		case strings.TrimSpace(r.Cuisine) == "":
			return recipeError(i, errors.New("cuisine: missing"))
		case !r.Type.Valid():
			return recipeError(i, fmt.Errorf("type: %q is not one of quick, full, creative", r.Type))
		case !r.Difficulty.Valid():
			return recipeError(i, fmt.Errorf("difficulty: %q is not one of Easy, Medium, Hard", r.Difficulty))
		case r.CookingTimeMinutes < MinTargetTime || r.CookingTimeMinutes > MaxTargetTime:
			return recipeError(i, fmt.Errorf("cookingTimeMinutes: %d outside [%d, %d]", r.CookingTimeMinutes, MinTargetTime, MaxTargetTime))
		}
		if err := nonEmptyLines(r.Ingredients); err != nil {
			return recipeError(i, fmt.Errorf("ingredients: %w", err))
		}
		if err := nonEmptyLines(r.Instructions); err != nil {
			return recipeError(i, fmt.Errorf("instructions: %w", err))
		}
		if _, dup := seen[r.ID]; dup {
			return recipeError(i, fmt.Errorf("id: duplicate %q", r.ID))
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

func requiredString(obj map[string]any, field string) (string, error) {
	s, ok := obj[field].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s: missing or not a string", field)
	}
	return s, nil
}

func stringList(obj map[string]any, field string) ([]string, error) {
	items, ok := obj[field].([]any)
	if !ok {
		return nil, fmt.Errorf("%s: missing or not a list", field)
	}
	out := make([]string, 0, len(items))
	for j, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: not a string", field, j)
		}
		out = append(out, s)
	}
	return out, nil
}

func nonEmptyLines(lines []string) error {
	if len(lines) == 0 {
		return fmt.Errorf("empty list")
	}
	for j, line := range lines {
		if strings.TrimSpace(line) == "" {
			return fmt.Errorf("entry %d is blank", j)
		}
	}
	return nil
}
