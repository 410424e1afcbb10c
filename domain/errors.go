package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("internal server error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("your requested item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("your item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("given param is not valid")
	// ErrCacheMiss will throw if the requested item is not in the cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCommentRejected is the single outward face of every spam-gate
	// rejection. The specific check that fired is logged internally and
	// never distinguished in the public response.
	ErrCommentRejected = errors.New("comment could not be accepted")
)
