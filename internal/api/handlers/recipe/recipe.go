package recipe

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	recipeService "recipe-suggester/internal/core/recipe"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食譜生成處理器
type Handler struct {
	service *recipeService.Service
}

// NewHandler 創建食譜生成處理器
func NewHandler(service *recipeService.Service) *Handler {
	return &Handler{service: service}
}

// HandleGenerateRecipes 處理食譜生成請求
func (h *Handler) HandleGenerateRecipes(c *gin.Context) {
	requestID := common.RequestID(c)

	var in recipeService.GenerationInput
	err := c.ShouldBindJSON(&in)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		// 合法 JSON 但不是物件，交給欄位驗證回報
		in = recipeService.GenerationInput{}
		err = nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		common.LogWarn("Invalid request body",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		common.WriteError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	req, err := recipeService.ValidateRequest(&in)
	if err != nil {
		common.LogInfo("Rejected recipe request",
			zap.String("request_id", requestID),
			zap.String("reason", err.Error()),
		)
		common.WriteError(c, err)
		return
	}

	common.LogInfo("Generating recipes",
		zap.String("request_id", requestID),
		zap.Strings("ingredients", req.Ingredients),
		zap.String("cuisine", req.Cuisine),
		zap.Int("target_time", req.TargetTime),
		zap.Int("variations", req.Variations),
	)

	outcome, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		common.WriteError(c, recipeService.APIError(err))
		return
	}

	common.LogInfo("Recipes generated",
		zap.String("request_id", requestID),
		zap.String("source", string(outcome.Source)),
		zap.Int("count", len(outcome.Collection.Recipes)),
	)

	c.Header(recipeService.SourceHeader, string(outcome.Source))
	c.JSON(http.StatusOK, outcome.Collection)
}

// HandleHello 確認服務運作
func HandleHello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Server running"})
}
