package common

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader 請求 ID 標頭
const RequestIDHeader = "X-Request-ID"

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RequestID 取得或補上請求 ID
func RequestID(c *gin.Context) string {
	requestID := c.GetHeader(RequestIDHeader)
	if requestID == "" {
		requestID = c.Writer.Header().Get(RequestIDHeader)
	}
	if requestID == "" {
		requestID = GenerateUUID()
		c.Header(RequestIDHeader, requestID)
	}
	return requestID
}

// WriteError 以 {"error": "..."} 格式寫入錯誤響應
func WriteError(c *gin.Context, err error) {
	c.JSON(StatusOf(err), ErrorResponse{Error: MessageOf(err)})
}

// HashStrings 計算多段字串的 SHA-256，段落之間以 0 位元組分隔
func HashStrings(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
