package bookmark

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// RecipeID 由名稱與食材推導穩定的書籤 ID
func RecipeID(name string, ingredients []string) string {
	return slugTitle(name) + "-" + strconv.FormatInt(abs32(ingredientHash(ingredients)), 36)
}

// specialLower 小寫後長度改變的字元，其餘沿用 unicode.ToLower
var specialLower = map[rune]string{
	'\u0130': "i\u0307", // İ
}

// jsLower 與瀏覽器 toLowerCase 相同的小寫轉換（不含依語境的 final sigma）
func jsLower(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if lower, ok := specialLower[r]; ok {
			sb.WriteString(lower)
			continue
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// slugTitle 小寫後將 [a-z0-9] 以外的每個 UTF-16 單位換成 '-'
func slugTitle(name string) string {
	var sb strings.Builder
	for _, r := range jsLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			continue
		}
		sb.WriteString(strings.Repeat("-", len(utf16.Encode([]rune{r}))))
	}
	return sb.String()
}

// ingredientHash 對正規化後食材字串做 h = h*31 + c 的 32 位元雜湊
func ingredientHash(ingredients []string) int32 {
	var h int32
	for _, r := range jsLower(strings.Join(ingredients, ",")) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ',' {
			h = h*31 + int32(r)
		}
	}
	return h
}

func abs32(v int32) int64 {
	n := int64(v)
	if n < 0 {
		return -n
	}
	return n
}
