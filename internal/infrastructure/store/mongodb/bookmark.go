package mongodb

import (
	"context"
	"errors"
	"time"

	"recipe-suggester/internal/core/bookmark"
	"recipe-suggester/internal/infrastructure/metrics"
	"recipe-suggester/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// BookmarkCollection 書籤集合名稱
const BookmarkCollection = "bookmarks"

// BookmarkRepo MongoDB 書籤儲存
type BookmarkRepo struct {
	col *mongo.Collection
}

var _ bookmark.Store = (*BookmarkRepo)(nil)

// NewBookmarkRepo 建立書籤儲存並確保索引
func NewBookmarkRepo(ctx context.Context, db *mongo.Database) *BookmarkRepo {
	col := db.Collection(BookmarkCollection)

	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		common.LogWarn("Failed to create bookmark indexes", zap.Error(err))
	}

	return &BookmarkRepo{col: col}
}

func bookmarkFilter(userID, id string) bson.M {
	return bson.M{"user_id": userID, "id": id}
}

// upsertUpdate 覆寫內容欄位，created_at 只在新增時寫入
func upsertUpdate(b *bookmark.Bookmark) bson.M {
	return bson.M{
		"$set": bson.M{
			"title":        b.Title,
			"ingredients":  b.Ingredients,
			"instructions": b.Instructions,
			"cooking_time": b.CookingTime,
			"difficulty":   b.Difficulty,
			"cuisine":      b.Cuisine,
			"image_url":    b.ImageURL,
			"updated_at":   b.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"created_at": b.CreatedAt,
		},
	}
}

// Upsert 新增或更新書籤
func (r *BookmarkRepo) Upsert(ctx context.Context, b *bookmark.Bookmark) error {
	metrics.IncBookmarkOp("add")

	_, err := r.col.UpdateOne(ctx, bookmarkFilter(b.UserID, b.ID), upsertUpdate(b), options.Update().SetUpsert(true))
	if err != nil {
		metrics.IncError("mongo_bookmark_repo", "upsert_error")
		return err
	}
	return nil
}

// Delete 刪除書籤
func (r *BookmarkRepo) Delete(ctx context.Context, userID, id string) error {
	metrics.IncBookmarkOp("delete")

	if _, err := r.col.DeleteOne(ctx, bookmarkFilter(userID, id)); err != nil {
		metrics.IncError("mongo_bookmark_repo", "delete_error")
		return err
	}
	return nil
}

// List 依建立時間由新到舊列出
func (r *BookmarkRepo) List(ctx context.Context, userID string) ([]*bookmark.Bookmark, error) {
	metrics.IncBookmarkOp("list")

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		metrics.IncError("mongo_bookmark_repo", "list_error")
		return nil, err
	}
	defer func() {
		if err := cur.Close(ctx); err != nil {
			common.LogWarn("Failed to close bookmark cursor", zap.Error(err))
		}
	}()

	bookmarks := []*bookmark.Bookmark{}
	for cur.Next(ctx) {
		var b bookmark.Bookmark
		if err := cur.Decode(&b); err != nil {
			metrics.IncError("mongo_bookmark_repo", "list_decode_error")
			return nil, err
		}
		bookmarks = append(bookmarks, &b)
	}
	if err := cur.Err(); err != nil {
		metrics.IncError("mongo_bookmark_repo", "list_cursor_error")
		return nil, err
	}
	return bookmarks, nil
}

// Get 取得單一書籤
func (r *BookmarkRepo) Get(ctx context.Context, userID, id string) (*bookmark.Bookmark, error) {
	metrics.IncBookmarkOp("get")

	var b bookmark.Bookmark
	err := r.col.FindOne(ctx, bookmarkFilter(userID, id)).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		metrics.IncError("mongo_bookmark_repo", "get_error")
		return nil, err
	}
	return &b, nil
}

// Count 書籤數量
func (r *BookmarkRepo) Count(ctx context.Context, userID string) (int, error) {
	metrics.IncBookmarkOp("count")

	count, err := r.col.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		metrics.IncError("mongo_bookmark_repo", "count_error")
		return 0, err
	}
	return int(count), nil
}

// UpdateRating 更新評分與評分時間
func (r *BookmarkRepo) UpdateRating(ctx context.Context, userID, id string, rating int, ratedAt time.Time) error {
	metrics.IncBookmarkOp("rate")

	update := bson.M{
		"$set": bson.M{
			"rating":   rating,
			"rated_at": ratedAt,
		},
	}
	res, err := r.col.UpdateOne(ctx, bookmarkFilter(userID, id), update)
	if err != nil {
		metrics.IncError("mongo_bookmark_repo", "rate_error")
		return err
	}
	if res.MatchedCount == 0 {
		return bookmark.ErrNotFound
	}
	return nil
}

// Connect 連線並確認 MongoDB 可用
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
