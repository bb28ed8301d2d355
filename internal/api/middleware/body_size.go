package middleware

import (
	"io"
	"net/http"

	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// limitedBody 記錄讀取時是否超過上限
type limitedBody struct {
	io.ReadCloser
	exceeded bool
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if common.IsBodyTooLarge(err) {
		b.exceeded = true
	}
	return n, err
}

// BodySizeLimit 限制請求體大小的中間件
//
// 帶 Content-Length 的請求直接比對；分塊傳輸的請求在讀取時截斷，
// handler 未寫回應時由此補上 413。
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			logBodyTooLarge(c, c.Request.ContentLength, maxSize)
			c.Abort()
			common.WriteError(c, common.ErrBodyTooLarge)
			return
		}

		body := &limitedBody{ReadCloser: http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)}
		c.Request.Body = body

		c.Next()

		if body.exceeded {
			logBodyTooLarge(c, c.Request.ContentLength, maxSize)
			if !c.Writer.Written() {
				common.WriteError(c, common.ErrBodyTooLarge)
			}
		}
	}
}

func logBodyTooLarge(c *gin.Context, length, maxSize int64) {
	common.LogWarn("Request body too large",
		zap.Int64("content_length", length),
		zap.Int64("max_size", maxSize),
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)
}
