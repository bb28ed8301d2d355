package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func echo(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(8))
	r.POST("/", echo)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/", "small").Code)

	w := serve(r, http.MethodPost, "/", "this body is too large")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"Request body too large"}`, w.Body.String())
}

func serveChunked(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.ContentLength = -1
	req.Header.Set("Transfer-Encoding", "chunked")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBodySizeLimitChunkedBody(t *testing.T) {
	t.Run("handler swallows read error", func(t *testing.T) {
		r := gin.New()
		r.Use(BodySizeLimit(8))
		r.POST("/", func(c *gin.Context) {
			if _, err := io.ReadAll(c.Request.Body); err != nil {
				return
			}
			c.String(http.StatusOK, "ok")
		})

		w := serveChunked(r, "this body is too large")
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.JSONEq(t, `{"error":"Request body too large"}`, w.Body.String())

		assert.Equal(t, http.StatusOK, serveChunked(r, "small").Code)
	})

	t.Run("handler reports wrapped read error", func(t *testing.T) {
		r := gin.New()
		r.Use(BodySizeLimit(8))
		r.POST("/", func(c *gin.Context) {
			var v map[string]any
			if err := c.ShouldBindJSON(&v); err != nil {
				common.WriteError(c, common.ErrInvalidRequest.Wrap(err))
				return
			}
			c.String(http.StatusOK, "ok")
		})

		w := serveChunked(r, `{"ingredients":["tomato"]}`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.JSONEq(t, `{"error":"Request body too large"}`, w.Body.String())

		w = serveChunked(r, `{"a":1}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimiterRefillsFractionalTokens(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(2, 2*time.Second)
	rl.lastTime = now
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	// 每秒補一個令牌
	now = now.Add(500 * time.Millisecond)
	assert.False(t, rl.Allow())
	now = now.Add(500 * time.Millisecond)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	now = now.Add(time.Hour)
	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1, time.Hour))
	r.GET("/", echo)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)

	w := serve(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())
}

func TestDeduplicator(t *testing.T) {
	now := time.Unix(100, 0)
	d := NewDeduplicator(time.Second)
	d.now = func() time.Time { return now }

	var bodies []string
	r := gin.New()
	r.Use(d.Middleware())
	r.POST("/generate", func(c *gin.Context) {
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, c.Request.Body)
		bodies = append(bodies, buf.String())
		c.Status(http.StatusOK)
	})
	r.GET("/generate", echo)

	body := `{"ingredients":["egg"]}`
	require.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/generate", body).Code)

	w := serve(r, http.MethodPost, "/generate", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Request too frequent"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/generate", `{"ingredients":["ham"]}`).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/generate", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/generate", "").Code)

	now = now.Add(2 * time.Second)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/generate", body).Code)

	assert.Equal(t, []string{body, `{"ingredients":["ham"]}`, body}, bodies)
}

func TestTimeoutWritesGatewayTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", echo)

	w := serve(r, http.MethodGet, "/slow", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.JSONEq(t, `{"error":"Gateway timeout"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/fast", "").Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Logger(), Recovery())
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
