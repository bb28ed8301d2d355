package bookmark

import (
	"context"
	"net/http"
	"time"

	"recipe-suggester/internal/pkg/common"
)

// 評分範圍
const (
	MinRating = 1
	MaxRating = 5
)

// ErrNotFound 書籤不存在
var ErrNotFound = common.NewError("BOOKMARK_NOT_FOUND", "Bookmark not found", http.StatusNotFound, nil)

// Bookmark 使用者收藏的食譜
type Bookmark struct {
	ID           string     `json:"id" bson:"id"`
	UserID       string     `json:"userId" bson:"user_id"`
	Title        string     `json:"title" bson:"title"`
	Ingredients  []string   `json:"ingredients" bson:"ingredients"`
	Instructions []string   `json:"instructions" bson:"instructions"`
	CookingTime  string     `json:"cookingTime" bson:"cooking_time"`
	Difficulty   string     `json:"difficulty" bson:"difficulty"`
	Cuisine      string     `json:"cuisine" bson:"cuisine"`
	ImageURL     string     `json:"imageUrl" bson:"image_url"`
	Rating       int        `json:"rating,omitempty" bson:"rating,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updated_at"`
	RatedAt      *time.Time `json:"ratedAt,omitempty" bson:"rated_at,omitempty"`
}

// RecipeInput 收藏請求中的食譜內容
type RecipeInput struct {
	Name               string   `json:"name"`
	Ingredients        []string `json:"ingredients"`
	Instructions       []string `json:"instructions"`
	CookingTime        string   `json:"cookingTime"`
	CookingTimeMinutes int      `json:"cookingTimeMinutes"`
	Difficulty         string   `json:"difficulty"`
	Cuisine            string   `json:"cuisine"`
	ImageURL           string   `json:"imageUrl"`
}

// RatingInput 評分請求
type RatingInput struct {
	Rating int `json:"rating"`
}

// Store 書籤儲存介面
type Store interface {
	// Upsert 以 (user_id, id) 新增或覆寫，保留原 created_at 與評分
	Upsert(ctx context.Context, b *Bookmark) error
	Delete(ctx context.Context, userID, id string) error
	// List 依 created_at 由新到舊
	List(ctx context.Context, userID string) ([]*Bookmark, error)
	// Get 不存在時回傳 nil, nil
	Get(ctx context.Context, userID, id string) (*Bookmark, error)
	Count(ctx context.Context, userID string) (int, error)
	// UpdateRating 不存在時回傳 ErrNotFound
	UpdateRating(ctx context.Context, userID, id string, rating int, ratedAt time.Time) error
}
