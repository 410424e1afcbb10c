package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"inkwell/domain"
)

// commentRepository coordinates the database and the per-post thread
// cache. Only the approved-thread read path is cached; moderation reads
// always hit the database. Cache invalidation on writes happens before
// the write returns, so a read right after a moderation action never
// serves a stale thread.
type commentRepository struct {
	db    domain.CommentRepository
	cache domain.CommentCache
	group singleflight.Group
}

var _ domain.CommentRepository = (*commentRepository)(nil)

func NewCommentRepository(db domain.CommentRepository, cache domain.CommentCache) *commentRepository {
	return &commentRepository{
		db:    db,
		cache: cache,
	}
}

func (r *commentRepository) Store(ctx context.Context, c *domain.Comment) error {
	if err := r.db.Store(ctx, c); err != nil {
		return err
	}

	// Pending comments are invisible to readers, so the cached thread
	// stays valid until moderation touches them.
	if c.Status == domain.StatusApproved {
		r.invalidate(ctx, c.PostID)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	return r.db.GetByID(ctx, id)
}

func (r *commentRepository) FetchByPost(ctx context.Context, postID int64, status domain.Status) ([]domain.Comment, error) {
	if status != domain.StatusApproved {
		return r.db.FetchByPost(ctx, postID, status)
	}

	comments, err := r.cache.GetThread(ctx, postID)
	if err == nil {
		return comments, nil
	}
	if err != domain.ErrCacheMiss {
		logrus.Warnf("thread cache get error for post %d: %v", postID, err)
	}

	// singleflight so a thundering herd on a hot post rebuilds once.
	key := fmt.Sprintf("thread:%d", postID)
	result, err, _ := r.group.Do(key, func() (any, error) {
		res, err := r.db.FetchByPost(ctx, postID, domain.StatusApproved)
		if err != nil {
			return nil, err
		}

		go func(comments []domain.Comment) {
			if err := r.cache.SetThread(context.Background(), postID, comments); err != nil {
				logrus.Warnf("failed to set thread cache for post %d: %v", postID, err)
			}
		}(res)

		return res, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]domain.Comment), nil
}

func (r *commentRepository) FetchPage(ctx context.Context, page, perPage int, filter domain.StatusFilter) ([]domain.Comment, error) {
	return r.db.FetchPage(ctx, page, perPage, filter)
}

func (r *commentRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	c, err := r.db.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.db.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	r.invalidate(ctx, c.PostID)
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	c, err := r.db.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.db.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, c.PostID)
	return nil
}

func (r *commentRepository) invalidate(ctx context.Context, postID int64) {
	if err := r.cache.DeleteThread(ctx, postID); err != nil {
		logrus.Warnf("failed to invalidate thread cache for post %d: %v", postID, err)
	}
}
