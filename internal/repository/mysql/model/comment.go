package model

import (
	"time"

	"inkwell/domain"
)

type Comment struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	PostID      int64     `gorm:"column:post_id;not null;index"`
	ParentID    *int64    `gorm:"column:parent_id"`
	AuthorName  string    `gorm:"column:author_name;size:100;not null"`
	AuthorEmail string    `gorm:"column:author_email;size:255"`
	Content     string    `gorm:"type:text;not null"`
	Status      string    `gorm:"size:16;not null;index"`
	IPAddress   string    `gorm:"column:ip_address;size:45"`
	CreatedAt   time.Time `gorm:"type:datetime"`
}

func (Comment) TableName() string {
	return "comment"
}

func NewCommentFromDomain(c *domain.Comment) *Comment {
	return &Comment{
		ID:          c.ID,
		PostID:      c.PostID,
		ParentID:    c.ParentID,
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
		Content:     c.Content,
		Status:      string(c.Status),
		IPAddress:   c.ClientAddr,
		CreatedAt:   c.CreatedAt,
	}
}

func (m *Comment) ToDomain() domain.Comment {
	return domain.Comment{
		ID:          m.ID,
		PostID:      m.PostID,
		ParentID:    m.ParentID,
		AuthorName:  m.AuthorName,
		AuthorEmail: m.AuthorEmail,
		Content:     m.Content,
		Status:      domain.Status(m.Status),
		ClientAddr:  m.IPAddress,
		CreatedAt:   m.CreatedAt,
	}
}
