package bookmark

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// 驗證錯誤訊息
const (
	MsgUserIDRequired     = "User ID is required"
	MsgRecipeRequired     = "Recipe data is required"
	MsgBookmarkIDRequired = "Bookmark ID is required"
	MsgRatingRange        = "Rating must be between 1 and 5"
)

// Service 書籤服務
type Service struct {
	store Store
	now   func() time.Time
}

// NewService 創建書籤服務
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Add 收藏食譜，同名同食材的食譜會覆寫同一筆
func (s *Service) Add(ctx context.Context, userID string, in *RecipeInput) (*Bookmark, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.NewValidationError(MsgUserIDRequired)
	}
	if in == nil || strings.TrimSpace(in.Name) == "" {
		return nil, common.NewValidationError(MsgRecipeRequired)
	}

	now := s.now().UTC()
	b := &Bookmark{
		ID:           RecipeID(in.Name, in.Ingredients),
		UserID:       userID,
		Title:        in.Name,
		Ingredients:  nonNil(in.Ingredients),
		Instructions: nonNil(in.Instructions),
		CookingTime:  cookingTime(in),
		Difficulty:   in.Difficulty,
		Cuisine:      in.Cuisine,
		ImageURL:     in.ImageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Upsert(ctx, b); err != nil {
		common.LogError("Failed to add bookmark", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	common.LogInfo("Bookmark saved", zap.String("user_id", userID), zap.String("bookmark_id", b.ID))
	return b, nil
}

// Remove 刪除書籤，不存在時視為成功
func (s *Service) Remove(ctx context.Context, userID, bookmarkID string) error {
	if err := requireIDs(userID, bookmarkID); err != nil {
		return err
	}
	return s.store.Delete(ctx, userID, bookmarkID)
}

// List 取得使用者所有書籤
func (s *Service) List(ctx context.Context, userID string) ([]*Bookmark, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.NewValidationError(MsgUserIDRequired)
	}
	bookmarks, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bookmarks == nil {
		bookmarks = []*Bookmark{}
	}
	return bookmarks, nil
}

// Get 取得單一書籤
func (s *Service) Get(ctx context.Context, userID, bookmarkID string) (*Bookmark, error) {
	if err := requireIDs(userID, bookmarkID); err != nil {
		return nil, err
	}
	b, err := s.store.Get(ctx, userID, bookmarkID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	return b, nil
}

// Lookup 以食譜內容查詢是否已收藏，未收藏回傳 nil
func (s *Service) Lookup(ctx context.Context, userID string, in *RecipeInput) (*Bookmark, error) {
	if strings.TrimSpace(userID) == "" || in == nil || strings.TrimSpace(in.Name) == "" {
		return nil, nil
	}
	return s.store.Get(ctx, userID, RecipeID(in.Name, in.Ingredients))
}

// Count 書籤數量
func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, nil
	}
	return s.store.Count(ctx, userID)
}

// Rate 設定 1-5 星評分
func (s *Service) Rate(ctx context.Context, userID, bookmarkID string, rating int) error {
	if err := requireIDs(userID, bookmarkID); err != nil {
		return err
	}
	if rating < MinRating || rating > MaxRating {
		return common.NewValidationError(MsgRatingRange)
	}
	return s.store.UpdateRating(ctx, userID, bookmarkID, rating, s.now().UTC())
}

func requireIDs(userID, bookmarkID string) error {
	if strings.TrimSpace(userID) == "" {
		return common.NewValidationError(MsgUserIDRequired)
	}
	if strings.TrimSpace(bookmarkID) == "" {
		return common.NewValidationError(MsgBookmarkIDRequired)
	}
	return nil
}

func cookingTime(in *RecipeInput) string {
	if in.CookingTime != "" {
		return in.CookingTime
	}
	if in.CookingTimeMinutes > 0 {
		return fmt.Sprintf("%d minutes", in.CookingTimeMinutes)
	}
	return ""
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
