package types

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a document or file does not exist.
var ErrNotFound = errors.New("not found")

// Kind classifies a failure into a stable category that callers may branch on.
type Kind string

const (
	KindInvalidUpload        Kind = "invalid_upload"
	KindInvalidQuery         Kind = "invalid_query"
	KindInvalidRequest       Kind = "invalid_request"
	KindUnreadableDocument   Kind = "unreadable_document"
	KindEmbeddingService     Kind = "embedding_service_error"
	KindIndexWrite           Kind = "index_write_error"
	KindIndexQuery           Kind = "index_query_error"
	KindSummarizationService Kind = "summarization_service_error"
	KindNotFound             Kind = "not_found"
	KindPartialDelete        Kind = "partial_delete_failure"
	KindStorage              Kind = "storage_error"
	KindInternal             Kind = "internal_error"
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error. err may be nil for pure validation failures.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
