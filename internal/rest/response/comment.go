package response

import "inkwell/domain"

const DateTimeFormat = "2006-01-02 15:04:05"

// Comment is the reader-facing shape: no email, no client address, no
// moderation status beyond the fact that it is visible at all.
type Comment struct {
	ID         int64  `json:"id"`
	PostID     int64  `json:"post_id"`
	ParentID   *int64 `json:"parent_id,omitempty"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
	Depth      int    `json:"depth"`
	CreatedAt  string `json:"created_at"`

	// Replies 子评论列表
	Replies []*Comment `json:"replies,omitempty"`
}

// NewThreadFromNodes: Domain tree -> Response tree
func NewThreadFromNodes(nodes []*domain.ThreadNode) []*Comment {
	res := make([]*Comment, 0, len(nodes))
	for _, n := range nodes {
		res = append(res, newCommentFromNode(n))
	}
	return res
}

func newCommentFromNode(n *domain.ThreadNode) *Comment {
	c := &Comment{
		ID:         n.Comment.ID,
		PostID:     n.Comment.PostID,
		ParentID:   n.Comment.ParentID,
		AuthorName: n.Comment.AuthorName,
		Content:    n.Comment.Content,
		Depth:      n.Depth,
		CreatedAt:  n.Comment.CreatedAt.Format(DateTimeFormat),
	}
	if len(n.Replies) > 0 {
		c.Replies = make([]*Comment, 0, len(n.Replies))
		for _, r := range n.Replies {
			c.Replies = append(c.Replies, newCommentFromNode(r))
		}
	}
	return c
}

// SubmittedComment acknowledges a submission: the stored comment with
// its assigned status, without the moderator-only fields.
type SubmittedComment struct {
	ID         int64  `json:"id"`
	PostID     int64  `json:"post_id"`
	ParentID   *int64 `json:"parent_id,omitempty"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// NewSubmittedCommentFromDomain: Domain -> Response
func NewSubmittedCommentFromDomain(c *domain.Comment) SubmittedComment {
	return SubmittedComment{
		ID:         c.ID,
		PostID:     c.PostID,
		ParentID:   c.ParentID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt.Format(DateTimeFormat),
	}
}

// ModerationComment is the moderator-facing shape; it carries the
// fields readers never see.
type ModerationComment struct {
	ID          int64  `json:"id"`
	PostID      int64  `json:"post_id"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email,omitempty"`
	Content     string `json:"content"`
	Status      string `json:"status"`
	IPAddress   string `json:"ip_address,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// NewModerationCommentFromDomain: Domain -> Response
func NewModerationCommentFromDomain(c *domain.Comment) ModerationComment {
	return ModerationComment{
		ID:          c.ID,
		PostID:      c.PostID,
		ParentID:    c.ParentID,
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
		Content:     c.Content,
		Status:      string(c.Status),
		IPAddress:   c.ClientAddr,
		CreatedAt:   c.CreatedAt.Format(DateTimeFormat),
	}
}
