package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the moderation state of a comment.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// CanTransition reports whether a moderation action may move a comment
// from s to next. Rejecting is treated as terminal: a rejected comment
// cannot be approved afterwards.
func (s Status) CanTransition(next Status) bool {
	switch {
	case s == StatusPending && next == StatusApproved:
		return true
	case s == StatusPending && next == StatusRejected:
		return true
	case s == StatusApproved && next == StatusRejected:
		return true
	default:
		return false
	}
}

// ModerationAction is a moderator decision on a single comment.
type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionReject  ModerationAction = "reject"
)

// TargetStatus resolves the action to the status it drives the comment into.
func (a ModerationAction) TargetStatus() (Status, error) {
	switch a {
	case ActionApprove:
		return StatusApproved, nil
	case ActionReject:
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("%w: unknown moderation action %q", ErrBadParamInput, string(a))
	}
}

// StatusFilter selects which comments the moderator listing returns.
// There is deliberately no rejected-only filter.
type StatusFilter string

const (
	FilterAll      StatusFilter = "all"
	FilterPending  StatusFilter = "pending"
	FilterApproved StatusFilter = "approved"
)

// ParseStatusFilter validates a raw filter value. Empty means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterApproved:
		return StatusFilter(s), nil
	default:
		return "", fmt.Errorf("%w: unknown status filter %q", ErrBadParamInput, s)
	}
}

const (
	AuthorNameMinLen = 2
	AuthorNameMaxLen = 100
	ContentMaxLen    = 5000
)

// Comment domain model
type Comment struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	ParentID    *int64    `json:"parent_id,omitempty"` // nil marks a root comment
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email,omitempty"`
	Content     string    `json:"content"`
	Status      Status    `json:"status"`
	ClientAddr  string    `json:"-"` // never exposed to readers
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the submitter-provided fields. Errors wrap
// ErrBadParamInput with enough detail for the caller to fix the request.
func (c *Comment) Validate() error {
	name := utf8.RuneCountInString(strings.TrimSpace(c.AuthorName))
	if name < AuthorNameMinLen {
		return fmt.Errorf("%w: author name must be at least %d characters", ErrBadParamInput, AuthorNameMinLen)
	}
	if name > AuthorNameMaxLen {
		return fmt.Errorf("%w: author name must be less than %d characters", ErrBadParamInput, AuthorNameMaxLen)
	}
	content := utf8.RuneCountInString(strings.TrimSpace(c.Content))
	if content == 0 {
		return fmt.Errorf("%w: comment content cannot be empty", ErrBadParamInput)
	}
	if content > ContentMaxLen {
		return fmt.Errorf("%w: comment must be less than %d characters", ErrBadParamInput, ContentMaxLen)
	}
	return nil
}

// ThreadNode is one comment in an assembled reply tree. Depth is 0 for
// roots; callers decide how deep they render.
type ThreadNode struct {
	Comment Comment       `json:"comment"`
	Depth   int           `json:"depth"`
	Replies []*ThreadNode `json:"replies,omitempty"`
}

// CommentSubmission carries everything the engine needs to accept or
// reject one submission attempt.
type CommentSubmission struct {
	PostSlug      string
	AuthorName    string
	AuthorEmail   string
	Content       string
	ParentID      *int64
	Honeypot      string
	FormTimestamp int64 // epoch seconds captured when the form was rendered
	ClientAddr    string
}

// CommentUsecase 业务逻辑接口
type CommentUsecase interface {
	// Submit runs validation and the spam gate, then persists the
	// comment with its initial moderation status.
	Submit(ctx context.Context, in CommentSubmission) (*Comment, error)

	// FetchThread returns the approved comment tree for a post plus the
	// total number of approved comments in it.
	FetchThread(ctx context.Context, postSlug string) ([]*ThreadNode, int, error)

	// FetchForModeration returns a flat newest-first page across all posts.
	FetchForModeration(ctx context.Context, page, perPage int, filter StatusFilter) ([]Comment, error)

	Moderate(ctx context.Context, id int64, action ModerationAction) error
	Delete(ctx context.Context, id int64) error
}

// CommentRepository 数据存取接口
type CommentRepository interface {
	// Store inserts the comment and backfills the assigned ID.
	Store(ctx context.Context, c *Comment) error

	GetByID(ctx context.Context, id int64) (*Comment, error)

	// FetchByPost returns a post's comments with the given status in
	// creation order, ties broken by id ascending.
	FetchByPost(ctx context.Context, postID int64, status Status) ([]Comment, error)

	// FetchPage returns a flat newest-first page across all posts.
	FetchPage(ctx context.Context, page, perPage int, filter StatusFilter) ([]Comment, error)

	// UpdateStatus persists a moderation transition.
	// Returns ErrNotFound if the comment doesn't exist.
	UpdateStatus(ctx context.Context, id int64, status Status) error

	// Delete hard-removes a single comment. Replies are left in place
	// and render as orphans.
	Delete(ctx context.Context, id int64) error
}

// CommentCache holds a post's approved comment list. A miss returns
// ErrCacheMiss; correctness never depends on the cache.
type CommentCache interface {
	GetThread(ctx context.Context, postID int64) ([]Comment, error)
	SetThread(ctx context.Context, postID int64, comments []Comment) error
	DeleteThread(ctx context.Context, postID int64) error
}
