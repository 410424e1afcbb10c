package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"inkwell/domain"
	"inkwell/internal/repository/mysql/model"
)

type postRepository struct {
	DB *gorm.DB
}

var _ domain.PostRepository = (*postRepository)(nil)

func NewPostRepository(db *gorm.DB) *postRepository {
	return &postRepository{
		DB: db,
	}
}

// GetBySlug resolves a slug to a published post. Unpublished posts are
// reported as not found so drafts never accept comments.
func (p *postRepository) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	var m model.Post
	err := p.DB.WithContext(ctx).First(&m, "slug = ? AND is_published = ?", slug, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, err
	}

	return m.ToDomain(), nil
}
