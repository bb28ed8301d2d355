package recipe

import (
	"errors"
	"fmt"
	"net/http"

	aiservice "recipe-suggester/internal/core/ai/service"
	"recipe-suggester/internal/pkg/common"
)

// 生成失敗類型
var (
	ErrUpstreamFailure   = errors.New("upstream failure")
	ErrMalformedResponse = errors.New("malformed response")
	ErrSchemaViolation   = errors.New("schema violation")
)

// Stage 生成流程階段
type Stage string

const (
	StageGenerate  Stage = "generate"
	StageNormalize Stage = "normalize"
	StageValidate  Stage = "validate"
)

// 降級原因
const (
	ReasonNotConfigured     = "not_configured"
	ReasonUpstreamFailure   = "upstream_failure"
	ReasonMalformedResponse = "malformed_response"
	ReasonSchemaViolation   = "schema_violation"
)

// 未啟用降級時回傳的錯誤
var (
	ErrGenerationFailed = common.NewError("GENERATION_FAILED", "Recipe generation failed", http.StatusInternalServerError, nil)
	ErrInvalidFormat    = common.NewError("INVALID_RESPONSE_FORMAT", "Recipe generation failed - invalid response format", http.StatusInternalServerError, nil)
	ErrInvalidStructure = common.NewError("INVALID_RESPONSE_STRUCTURE", "Recipe generation failed - invalid response structure", http.StatusInternalServerError, nil)
	ErrInvalidRecipe    = common.NewError("INVALID_RECIPE_STRUCTURE", "Recipe generation failed - invalid recipe structure", http.StatusInternalServerError, nil)
)

// GenerationError 上游路徑失敗，Kind 為上列失敗類型之一
type GenerationError struct {
	Kind  error
	Stage Stage
	Err   error
	Raw   string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%v at %s stage: %v", e.Kind, e.Stage, e.Err)
}

// Unwrap 同時比對 Kind 與原始錯誤
func (e *GenerationError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Reason 指標與日誌使用的降級原因
func (e *GenerationError) Reason() string {
	switch {
	case errors.Is(e.Err, aiservice.ErrNotConfigured):
		return ReasonNotConfigured
	case errors.Is(e.Kind, ErrMalformedResponse):
		return ReasonMalformedResponse
	case errors.Is(e.Kind, ErrSchemaViolation):
		return ReasonSchemaViolation
	default:
		return ReasonUpstreamFailure
	}
}

// APIError 將生成失敗轉為 API 錯誤
func APIError(err error) error {
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		if common.IsValidationError(err) {
			return err
		}
		return ErrGenerationFailed.Wrap(err)
	}

	switch genErr.Reason() {
	case ReasonNotConfigured:
		return common.ErrUpstreamNotEnabled.Wrap(err)
	case ReasonMalformedResponse:
		return ErrInvalidFormat.Wrap(err)
	case ReasonSchemaViolation:
		var recipeErr *RecipeError
		if errors.As(genErr.Err, &recipeErr) {
			return ErrInvalidRecipe.Wrap(err)
		}
		return ErrInvalidStructure.Wrap(err)
	default:
		return ErrGenerationFailed.Wrap(err)
	}
}

func upstreamFailure(err error) *GenerationError {
	return &GenerationError{Kind: ErrUpstreamFailure, Stage: StageGenerate, Err: err}
}

func malformedResponse(err error, raw string) *GenerationError {
	return &GenerationError{Kind: ErrMalformedResponse, Stage: StageNormalize, Err: err, Raw: raw}
}

func schemaViolation(err error, raw string) *GenerationError {
	return &GenerationError{Kind: ErrSchemaViolation, Stage: StageValidate, Err: err, Raw: raw}
}
