package domain

import (
	"context"
	"time"
)

// Post is the slice of a blog post the comment engine needs: enough to
// resolve a slug to an existing, published post. The wider post CRUD
// lives elsewhere.
type Post struct {
	ID        int64     // Unique identifier for the post
	Slug      string    // URL slug, unique
	Title     string    // Post title
	Published bool      // Unpublished posts do not accept comments
	CreatedAt time.Time // Creation timestamp
}

// PostRepository defines the contract for post lookups.
type PostRepository interface {
	// GetBySlug retrieves a published post by its slug.
	// Returns ErrNotFound if the post doesn't exist or is unpublished.
	GetBySlug(ctx context.Context, slug string) (Post, error)
}
