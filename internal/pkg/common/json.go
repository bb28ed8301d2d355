package common

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ParseGeneric 將 JSON 解析為通用值（map[string]any / []any / json.Number ...）
func ParseGeneric(data string) (any, error) {
	var v any
	if err := decodeJSON(strings.NewReader(data), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return err
		}
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}
