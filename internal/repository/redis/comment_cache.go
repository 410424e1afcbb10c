package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"inkwell/domain"
)

const (
	KeyPostThread = "comments:post:%d"

	threadTTL = 10 * time.Minute
)

type commentCache struct {
	client *redis.Client
}

var _ domain.CommentCache = (*commentCache)(nil)

func NewCommentCache(client *redis.Client) *commentCache {
	return &commentCache{
		client,
	}
}

func (c *commentCache) GetThread(ctx context.Context, postID int64) ([]domain.Comment, error) {
	key := fmt.Sprintf(KeyPostThread, postID)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	} else if err != nil {
		return nil, err
	}

	var res []domain.Comment
	if err = json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *commentCache) SetThread(ctx context.Context, postID int64, comments []domain.Comment) error {
	key := fmt.Sprintf(KeyPostThread, postID)
	data, err := json.Marshal(comments)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, threadTTL).Err()
}

func (c *commentCache) DeleteThread(ctx context.Context, postID int64) error {
	key := fmt.Sprintf(KeyPostThread, postID)
	return c.client.Del(ctx, key).Err()
}
