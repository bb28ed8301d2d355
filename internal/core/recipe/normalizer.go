package recipe

import (
	"regexp"
	"strings"

	"recipe-suggester/internal/pkg/common"
)

// fencePattern 第一個 Markdown 程式碼區塊，語言標籤可有可無
var fencePattern = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \\t]*\\r?\\n?(.*?)\\s*```")

// StripCodeFence 去除空白與程式碼區塊包裹，以 { 或 [ 開頭的文字不處理
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed
	}
	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// Normalize 解析上游文字為通用結構，失敗回傳 MalformedResponse
func Normalize(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := common.ParseGeneric(trimmed); err == nil {
		return parsed, nil
	}

	parsed, err := common.ParseGeneric(StripCodeFence(trimmed))
	if err != nil {
		return nil, malformedResponse(err, raw)
	}
	return parsed, nil
}
