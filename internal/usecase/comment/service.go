package comment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"inkwell/domain"
	"inkwell/internal/thread"
)

const (
	DefaultPerPage = 50
	MaxPerPage     = 200
)

// SpamGate decides whether a submission attempt is abusive. A rejection
// unwraps to domain.ErrCommentRejected.
type SpamGate interface {
	Evaluate(honeypot string, formTimestamp int64, clientAddr string) error
}

type Service struct {
	commentRepo domain.CommentRepository
	postRepo    domain.PostRepository
	gate        SpamGate

	// autoApprove is the blog's moderation policy: when set, new
	// comments publish immediately; otherwise they are held pending.
	autoApprove bool

	now func() time.Time
}

var _ domain.CommentUsecase = (*Service)(nil)

// NewService will create a new comment service object
func NewService(commentRepo domain.CommentRepository, postRepo domain.PostRepository, gate SpamGate, autoApprove bool) *Service {
	return &Service{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		gate:        gate,
		autoApprove: autoApprove,
		now:         time.Now,
	}
}

// Submit validates the submission, runs the spam gate and persists the
// comment with its initial status. Validation runs first so a broken
// request never consumes rate-limit budget; the returned comment's
// Status tells the caller whether it published or was held.
func (s *Service) Submit(ctx context.Context, in domain.CommentSubmission) (*domain.Comment, error) {
	c := &domain.Comment{
		ParentID:    in.ParentID,
		AuthorName:  strings.TrimSpace(in.AuthorName),
		AuthorEmail: strings.TrimSpace(in.AuthorEmail),
		Content:     strings.TrimSpace(in.Content),
		ClientAddr:  in.ClientAddr,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetBySlug(ctx, in.PostSlug)
	if err != nil {
		return nil, err
	}
	c.PostID = post.ID

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, fmt.Errorf("%w: parent comment belongs to another post", domain.ErrBadParamInput)
		}
	}

	if err := s.gate.Evaluate(in.Honeypot, in.FormTimestamp, in.ClientAddr); err != nil {
		// The reason stays in the logs; the submitter sees one generic
		// failure no matter which check fired.
		logrus.Warnf("submission to %q rejected: %v", in.PostSlug, err)
		return nil, err
	}

	c.Status = domain.StatusPending
	if s.autoApprove {
		c.Status = domain.StatusApproved
	}
	c.CreatedAt = s.now()

	if err := s.commentRepo.Store(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// FetchThread returns the approved reply tree for a post, plus the
// total count of approved comments in it.
func (s *Service) FetchThread(ctx context.Context, postSlug string) ([]*domain.ThreadNode, int, error) {
	post, err := s.postRepo.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, 0, err
	}

	comments, err := s.commentRepo.FetchByPost(ctx, post.ID, domain.StatusApproved)
	if err != nil {
		return nil, 0, err
	}

	nodes := thread.Assemble(comments)
	return nodes, thread.Count(nodes), nil
}

// FetchForModeration returns a flat newest-first page across all posts.
func (s *Service) FetchForModeration(ctx context.Context, page, perPage int, filter domain.StatusFilter) ([]domain.Comment, error) {
	switch filter {
	case domain.FilterAll, domain.FilterPending, domain.FilterApproved:
	default:
		return nil, fmt.Errorf("%w: unknown status filter %q", domain.ErrBadParamInput, string(filter))
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}

	return s.commentRepo.FetchPage(ctx, page, perPage, filter)
}

// Moderate drives the status transition for a single comment. Repeating
// an action is a no-op; transitions outside the state machine (approving
// a rejected comment) fail with ErrConflict.
func (s *Service) Moderate(ctx context.Context, id int64, action domain.ModerationAction) error {
	target, err := action.TargetStatus()
	if err != nil {
		return err
	}

	cur, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cur.Status == target {
		return nil
	}
	if !cur.Status.CanTransition(target) {
		return fmt.Errorf("%w: cannot %s a %s comment", domain.ErrConflict, string(action), string(cur.Status))
	}

	return s.commentRepo.UpdateStatus(ctx, id, target)
}

// Delete hard-removes a comment. Replies are not cascaded; they render
// as orphans promoted to root.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.commentRepo.Delete(ctx, id)
}
