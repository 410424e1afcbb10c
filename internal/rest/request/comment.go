package request

import "inkwell/domain"

// Comment is the submission body. Honeypot is a field invisible to
// human users; it must arrive empty. FormTimestamp is captured when the
// form was first presented.
type Comment struct {
	AuthorName    string `json:"author_name" validate:"required"`
	AuthorEmail   string `json:"author_email" validate:"omitempty,email"`
	Content       string `json:"content" validate:"required"`
	ParentID      *int64 `json:"parent_id"`
	Honeypot      string `json:"honeypot"`
	FormTimestamp int64  `json:"form_timestamp"`
}

// ToDomain: Request -> Domain
func (r *Comment) ToDomain(postSlug, clientAddr string) domain.CommentSubmission {
	return domain.CommentSubmission{
		PostSlug:      postSlug,
		AuthorName:    r.AuthorName,
		AuthorEmail:   r.AuthorEmail,
		Content:       r.Content,
		ParentID:      r.ParentID,
		Honeypot:      r.Honeypot,
		FormTimestamp: r.FormTimestamp,
		ClientAddr:    clientAddr,
	}
}
