package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"inkwell/domain"
	"inkwell/internal/repository/mysql/model"
)

type commentRepository struct {
	DB *gorm.DB
}

var _ domain.CommentRepository = (*commentRepository)(nil)

func NewCommentRepository(db *gorm.DB) *commentRepository {
	return &commentRepository{
		DB: db,
	}
}

func (c *commentRepository) Store(ctx context.Context, comment *domain.Comment) error {
	m := model.NewCommentFromDomain(comment)
	if err := c.DB.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}

	comment.ID = m.ID
	comment.CreatedAt = m.CreatedAt
	return nil
}

func (c *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	var m model.Comment
	if err := c.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	res := m.ToDomain()
	return &res, nil
}

func (c *commentRepository) FetchByPost(ctx context.Context, postID int64, status domain.Status) ([]domain.Comment, error) {
	var comments []model.Comment
	err := c.DB.WithContext(ctx).
		Where("post_id = ? AND status = ?", postID, string(status)).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	res := make([]domain.Comment, 0, len(comments))
	for i := range comments {
		res = append(res, comments[i].ToDomain())
	}
	return res, nil
}

func (c *commentRepository) FetchPage(ctx context.Context, page, perPage int, filter domain.StatusFilter) ([]domain.Comment, error) {
	query := c.DB.WithContext(ctx).Model(&model.Comment{})
	switch filter {
	case domain.FilterPending:
		query = query.Where("status = ?", string(domain.StatusPending))
	case domain.FilterApproved:
		query = query.Where("status = ?", string(domain.StatusApproved))
	case domain.FilterAll:
		// no constraint
	default:
		return nil, domain.ErrBadParamInput
	}

	var comments []model.Comment
	err := query.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	res := make([]domain.Comment, 0, len(comments))
	for i := range comments {
		res = append(res, comments[i].ToDomain())
	}
	return res, nil
}

func (c *commentRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	result := c.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *commentRepository) Delete(ctx context.Context, id int64) error {
	result := c.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
