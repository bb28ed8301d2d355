package bookmark

import (
	"net/http"

	bookmarkService "recipe-suggester/internal/core/bookmark"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListResponse 書籤列表響應
type ListResponse struct {
	Bookmarks []*bookmarkService.Bookmark `json:"bookmarks"`
	Count     int                         `json:"count"`
}

// LookupResponse 收藏狀態查詢響應
type LookupResponse struct {
	Bookmarked bool                      `json:"bookmarked"`
	Bookmark   *bookmarkService.Bookmark `json:"bookmark,omitempty"`
}

// Handler 書籤處理器，service 為 nil 時所有路由回傳 503
type Handler struct {
	service *bookmarkService.Service
}

// NewHandler 創建書籤處理器
func NewHandler(service *bookmarkService.Service) *Handler {
	return &Handler{service: service}
}

// RequireEnabled 未設定書籤儲存時中止請求
func (h *Handler) RequireEnabled() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.service == nil {
			common.WriteError(c, common.ErrBookmarksDisabled)
			c.Abort()
			return
		}
		c.Next()
	}
}

// HandleAdd 收藏食譜
func (h *Handler) HandleAdd(c *gin.Context) {
	var in bookmarkService.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.WriteError(c, common.NewValidationError(bookmarkService.MsgRecipeRequired))
		return
	}

	b, err := h.service.Add(c.Request.Context(), c.Param("uid"), &in)
	if err != nil {
		h.fail(c, "add", err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// HandleList 列出使用者書籤
func (h *Handler) HandleList(c *gin.Context) {
	bookmarks, err := h.service.List(c.Request.Context(), c.Param("uid"))
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Bookmarks: bookmarks, Count: len(bookmarks)})
}

// HandleGet 取得單一書籤
func (h *Handler) HandleGet(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), c.Param("uid"), c.Param("id"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// HandleLookup 以食譜內容查詢是否已收藏
func (h *Handler) HandleLookup(c *gin.Context) {
	var in bookmarkService.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.WriteError(c, common.NewValidationError(bookmarkService.MsgRecipeRequired))
		return
	}

	b, err := h.service.Lookup(c.Request.Context(), c.Param("uid"), &in)
	if err != nil {
		h.fail(c, "lookup", err)
		return
	}
	c.JSON(http.StatusOK, LookupResponse{Bookmarked: b != nil, Bookmark: b})
}

// HandleRemove 刪除書籤
func (h *Handler) HandleRemove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("uid"), c.Param("id")); err != nil {
		h.fail(c, "remove", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleRate 設定評分
func (h *Handler) HandleRate(c *gin.Context) {
	var in bookmarkService.RatingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.WriteError(c, common.NewValidationError(bookmarkService.MsgRatingRange))
		return
	}

	if err := h.service.Rate(c.Request.Context(), c.Param("uid"), c.Param("id"), in.Rating); err != nil {
		h.fail(c, "rate", err)
		return
	}

	b, err := h.service.Get(c.Request.Context(), c.Param("uid"), c.Param("id"))
	if err != nil {
		h.fail(c, "rate", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	if common.StatusOf(err) >= http.StatusInternalServerError {
		common.LogError("Bookmark operation failed",
			zap.String("op", op),
			zap.String("user_id", c.Param("uid")),
			zap.String("request_id", common.RequestID(c)),
			zap.Error(err),
		)
	}
	common.WriteError(c, err)
}
