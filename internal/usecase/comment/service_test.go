package comment

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/domain"
	"inkwell/internal/ratelimit"
	"inkwell/internal/spam"
)

type memRepo struct {
	comments map[int64]domain.Comment
	nextID   int64
}

func newMemRepo() *memRepo {
	return &memRepo{comments: make(map[int64]domain.Comment)}
}

func (m *memRepo) Store(ctx context.Context, c *domain.Comment) error {
	m.nextID++
	c.ID = m.nextID
	m.comments[c.ID] = *c
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *memRepo) FetchByPost(ctx context.Context, postID int64, status domain.Status) ([]domain.Comment, error) {
	var res []domain.Comment
	for _, c := range m.comments {
		if c.PostID == postID && c.Status == status {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memRepo) FetchPage(ctx context.Context, page, perPage int, filter domain.StatusFilter) ([]domain.Comment, error) {
	var res []domain.Comment
	for _, c := range m.comments {
		switch filter {
		case domain.FilterPending:
			if c.Status != domain.StatusPending {
				continue
			}
		case domain.FilterApproved:
			if c.Status != domain.StatusApproved {
				continue
			}
		}
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	start := (page - 1) * perPage
	if start >= len(res) {
		return nil, nil
	}
	end := min(start+perPage, len(res))
	return res[start:end], nil
}

func (m *memRepo) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	c, ok := m.comments[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	m.comments[id] = c
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.comments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

type memPostRepo struct {
	posts map[string]domain.Post
}

func (m *memPostRepo) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	p, ok := m.posts[slug]
	if !ok || !p.Published {
		return domain.Post{}, domain.ErrNotFound
	}
	return p, nil
}

type stubGate struct {
	err   error
	calls int
}

func (g *stubGate) Evaluate(honeypot string, formTimestamp int64, clientAddr string) error {
	g.calls++
	return g.err
}

func newFixture(autoApprove bool) (*Service, *memRepo, *stubGate) {
	repo := newMemRepo()
	posts := &memPostRepo{posts: map[string]domain.Post{
		"hello-world": {ID: 1, Slug: "hello-world", Published: true},
		"second-post": {ID: 2, Slug: "second-post", Published: true},
	}}
	gate := &stubGate{}
	return NewService(repo, posts, gate, autoApprove), repo, gate
}

func submission(slug string) domain.CommentSubmission {
	return domain.CommentSubmission{
		PostSlug:      slug,
		AuthorName:    "Ada Lovelace",
		AuthorEmail:   "ada@example.com",
		Content:       "Lovely post.",
		FormTimestamp: time.Now().Add(-time.Minute).Unix(),
		ClientAddr:    "1.2.3.4",
	}
}

func TestSubmitAutoApprove(t *testing.T) {
	svc, repo, _ := newFixture(true)

	c, err := svc.Submit(context.Background(), submission("hello-world"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, c.Status)
	assert.EqualValues(t, 1, c.ID)
	assert.EqualValues(t, 1, c.PostID)
	assert.Len(t, repo.comments, 1)
}

func TestSubmitHeldForModeration(t *testing.T) {
	svc, _, _ := newFixture(false)

	c, err := svc.Submit(context.Background(), submission("hello-world"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, c.Status, "caller needs the held-for-approval signal")

	// Held comments never surface in the reader-facing thread.
	nodes, total, err := svc.FetchThread(context.Background(), "hello-world")
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Zero(t, total)

	// After approval it appears.
	require.NoError(t, svc.Moderate(context.Background(), c.ID, domain.ActionApprove))
	nodes, total, err = svc.FetchThread(context.Background(), "hello-world")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 1, total)
}

func TestSubmitValidation(t *testing.T) {
	svc, repo, gate := newFixture(true)

	cases := map[string]func(*domain.CommentSubmission){
		"short author name": func(s *domain.CommentSubmission) { s.AuthorName = "A" },
		"blank content":     func(s *domain.CommentSubmission) { s.Content = "   " },
		"oversize content":  func(s *domain.CommentSubmission) { s.Content = strings.Repeat("x", 5001) },
		"oversize name":     func(s *domain.CommentSubmission) { s.AuthorName = strings.Repeat("n", 101) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := submission("hello-world")
			mutate(&in)
			_, err := svc.Submit(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrBadParamInput)
		})
	}
	assert.Empty(t, repo.comments, "invalid submissions never reach the store")
	assert.Zero(t, gate.calls, "invalid submissions never consume rate-limit budget")
}

func TestSubmitUnknownPost(t *testing.T) {
	svc, _, gate := newFixture(true)

	_, err := svc.Submit(context.Background(), submission("no-such-post"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, gate.calls)
}

func TestSubmitParentChecks(t *testing.T) {
	svc, _, _ := newFixture(true)

	root, err := svc.Submit(context.Background(), submission("hello-world"))
	require.NoError(t, err)

	t.Run("unknown parent", func(t *testing.T) {
		in := submission("hello-world")
		missing := int64(999)
		in.ParentID = &missing
		_, err := svc.Submit(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("cross-post parent", func(t *testing.T) {
		in := submission("second-post")
		in.ParentID = &root.ID
		_, err := svc.Submit(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrBadParamInput)
	})

	t.Run("same-post parent", func(t *testing.T) {
		in := submission("hello-world")
		in.ParentID = &root.ID
		reply, err := svc.Submit(context.Background(), in)
		require.NoError(t, err)
		require.NotNil(t, reply.ParentID)
		assert.Equal(t, root.ID, *reply.ParentID)
	})
}

func TestSubmitSpamRejectedNeverStored(t *testing.T) {
	svc, repo, gate := newFixture(true)
	gate.err = domain.ErrCommentRejected

	_, err := svc.Submit(context.Background(), submission("hello-world"))
	assert.ErrorIs(t, err, domain.ErrCommentRejected)
	assert.Empty(t, repo.comments)
}

func TestFetchThreadNesting(t *testing.T) {
	svc, _, _ := newFixture(true)

	root, err := svc.Submit(context.Background(), submission("hello-world"))
	require.NoError(t, err)

	in := submission("hello-world")
	in.ParentID = &root.ID
	reply, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)

	nodes, total, err := svc.FetchThread(context.Background(), "hello-world")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 2, total)
	require.Len(t, nodes[0].Replies, 1)
	assert.Equal(t, reply.ID, nodes[0].Replies[0].Comment.ID)
	assert.Equal(t, 1, nodes[0].Replies[0].Depth)
}

func TestModerateTransitions(t *testing.T) {
	svc, repo, _ := newFixture(false)
	ctx := context.Background()

	c, err := svc.Submit(ctx, submission("hello-world"))
	require.NoError(t, err)

	require.NoError(t, svc.Moderate(ctx, c.ID, domain.ActionApprove))
	assert.Equal(t, domain.StatusApproved, repo.comments[c.ID].Status)

	// Repeating the action is a no-op.
	assert.NoError(t, svc.Moderate(ctx, c.ID, domain.ActionApprove))

	// Retroactive rejection of a published comment.
	require.NoError(t, svc.Moderate(ctx, c.ID, domain.ActionReject))
	assert.Equal(t, domain.StatusRejected, repo.comments[c.ID].Status)

	// Rejected is terminal: there is no way back to approved.
	err = svc.Moderate(ctx, c.ID, domain.ActionApprove)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.StatusRejected, repo.comments[c.ID].Status)
}

func TestModerateUnknownComment(t *testing.T) {
	svc, _, _ := newFixture(true)

	err := svc.Moderate(context.Background(), 404, domain.ActionApprove)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestModerateUnknownAction(t *testing.T) {
	svc, _, _ := newFixture(true)

	err := svc.Moderate(context.Background(), 1, domain.ModerationAction("escalate"))
	assert.ErrorIs(t, err, domain.ErrBadParamInput)
}

func TestFetchForModerationFilter(t *testing.T) {
	svc, _, _ := newFixture(false)
	ctx := context.Background()

	first, err := svc.Submit(ctx, submission("hello-world"))
	require.NoError(t, err)
	second, err := svc.Submit(ctx, submission("second-post"))
	require.NoError(t, err)
	require.NoError(t, svc.Moderate(ctx, first.ID, domain.ActionApprove))

	all, err := svc.FetchForModeration(ctx, 1, 50, domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "moderation queue is newest-first")

	pending, err := svc.FetchForModeration(ctx, 1, 50, domain.FilterPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	approved, err := svc.FetchForModeration(ctx, 1, 50, domain.FilterApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)

	// There is deliberately no rejected-only view; the value is refused
	// rather than silently widened.
	_, err = svc.FetchForModeration(ctx, 1, 50, domain.StatusFilter("rejected"))
	assert.ErrorIs(t, err, domain.ErrBadParamInput)
}

func TestFetchForModerationPagingDefaults(t *testing.T) {
	svc, _, _ := newFixture(true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(ctx, submission("hello-world"))
		require.NoError(t, err)
	}

	res, err := svc.FetchForModeration(ctx, 0, -1, domain.FilterAll)
	require.NoError(t, err)
	assert.Len(t, res, 3, "out-of-range paging falls back to page 1 with the default size")

	res, err = svc.FetchForModeration(ctx, 2, 2, domain.FilterAll)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestDeleteLeavesRepliesVisible(t *testing.T) {
	svc, _, _ := newFixture(true)
	ctx := context.Background()

	root, err := svc.Submit(ctx, submission("hello-world"))
	require.NoError(t, err)
	in := submission("hello-world")
	in.ParentID = &root.ID
	reply, err := svc.Submit(ctx, in)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, root.ID))

	nodes, total, err := svc.FetchThread(ctx, "hello-world")
	require.NoError(t, err)
	require.Len(t, nodes, 1, "the orphaned reply is promoted, not dropped")
	assert.Equal(t, reply.ID, nodes[0].Comment.ID)
	assert.Equal(t, 0, nodes[0].Depth)
	assert.Equal(t, 1, total)
}

// TestSubmissionScenario walks the reader-facing flow end to end with
// the real spam gate: publish a root, nest a reply, then trip the
// per-address rate limit on the sixth attempt.
func TestSubmissionScenario(t *testing.T) {
	repo := newMemRepo()
	posts := &memPostRepo{posts: map[string]domain.Post{
		"hello-world": {ID: 1, Slug: "hello-world", Published: true},
	}}
	gate := spam.NewGate(ratelimit.New(5*time.Minute), spam.DefaultPolicy())
	svc := NewService(repo, posts, gate, true)
	ctx := context.Background()

	a, err := svc.Submit(ctx, submission("hello-world"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, a.Status)

	in := submission("hello-world")
	in.ParentID = &a.ID
	b, err := svc.Submit(ctx, in)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(ctx, submission("hello-world"))
		require.NoError(t, err, "submission %d of the budget", i+3)
	}

	_, err = svc.Submit(ctx, submission("hello-world"))
	require.ErrorIs(t, err, domain.ErrCommentRejected, "6th comment from one address inside the window")

	nodes, total, err := svc.FetchThread(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.NotEmpty(t, nodes)
	assert.Equal(t, a.ID, nodes[0].Comment.ID)
	require.NotEmpty(t, nodes[0].Replies)
	assert.Equal(t, b.ID, nodes[0].Replies[0].Comment.ID)
}
