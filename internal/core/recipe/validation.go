package recipe

import (
	"encoding/json"
	"math"
	"strings"

	"recipe-suggester/internal/pkg/common"
)

// 輸入驗證錯誤訊息
const (
	MsgIngredientsRequired = "Ingredients array is required"
	MsgCuisineRequired     = "Cuisine is required"
	MsgTargetTimeRange     = "Target time must be between 5 and 120 minutes"
	MsgVariationsRange     = "Variations must be between 1 and 5"
)

// ValidateRequest 依序檢查食材、菜系、時間、變化數量，第一個錯誤即回傳
func ValidateRequest(in *GenerationInput) (*GenerationRequest, error) {
	if in == nil {
		return nil, common.NewValidationError(MsgIngredientsRequired)
	}

	ingredients, ok := toStringList(in.Ingredients)
	if !ok {
		return nil, common.NewValidationError(MsgIngredientsRequired)
	}

	cuisine, ok := in.Cuisine.(string)
	if !ok || strings.TrimSpace(cuisine) == "" {
		return nil, common.NewValidationError(MsgCuisineRequired)
	}

	targetTime, ok := toInt(in.TargetTime)
	if !ok {
		return nil, common.NewValidationError(MsgTargetTimeRange)
	}

	variations, ok := toInt(in.Variations)
	if !ok {
		return nil, common.NewValidationError(MsgVariationsRange)
	}

	req := &GenerationRequest{
		Ingredients: ingredients,
		Cuisine:     strings.TrimSpace(cuisine),
		TargetTime:  targetTime,
		Variations:  variations,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate 檢查已型別化的請求
func (r *GenerationRequest) Validate() error {
	if len(r.Ingredients) == 0 {
		return common.NewValidationError(MsgIngredientsRequired)
	}
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing) == "" {
			return common.NewValidationError(MsgIngredientsRequired)
		}
	}
	if strings.TrimSpace(r.Cuisine) == "" {
		return common.NewValidationError(MsgCuisineRequired)
	}
	if r.TargetTime < MinTargetTime || r.TargetTime > MaxTargetTime {
		return common.NewValidationError(MsgTargetTimeRange)
	}
	if r.Variations < MinVariations || r.Variations > MaxVariations {
		return common.NewValidationError(MsgVariationsRange)
	}
	return nil
}

// toStringList 非空字串陣列
func toStringList(v any) ([]string, bool) {
	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []string:
		for _, s := range list {
			items = append(items, s)
		}
	default:
		return nil, false
	}
	if len(items) == 0 {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, false
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, true
}

// toInt JSON 數字轉整數，小數與非數字皆不接受
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			if i > math.MaxInt32 || i < math.MinInt32 {
				return 0, false
			}
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return toInt(f)
	default:
		return 0, false
	}
}
