package model

import (
	"time"

	"inkwell/domain"
)

type Post struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null"`
	Title       string    `gorm:"size:255;not null"`
	IsPublished bool      `gorm:"column:is_published;default:false"`
	CreatedAt   time.Time `gorm:"type:datetime"`
}

func (Post) TableName() string {
	return "post"
}

func (m *Post) ToDomain() domain.Post {
	return domain.Post{
		ID:        m.ID,
		Slug:      m.Slug,
		Title:     m.Title,
		Published: m.IsPublished,
		CreatedAt: m.CreatedAt,
	}
}
