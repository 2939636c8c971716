// Package apperror holds the error taxonomy shared by the conversation core
// and its collaborators.
package apperror

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")

	// Collaborator failures.
	ErrEmbedding    = errors.New("embedding provider failure")
	ErrCompletion   = errors.New("completion provider failure")
	ErrVectorSearch = errors.New("vector search failure")
	ErrProbe        = errors.New("api prober failure")
	ErrSessionStore = errors.New("session store failure")
)

const (
	KindValidation   = "validation"
	KindCollaborator = "collaborator"
	KindNotFound     = "not_found"
	KindInternal     = "internal"
)

// Error tags an underlying cause with one of the sentinels above.
// Error() only returns the cause so messages stay readable for end users.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap returns nil when err is nil.
func Wrap(kind error, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) && errors.Is(existing.Kind, kind) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// New builds a tagged error from a plain message.
func New(kind error, message string) error {
	return &Error{Kind: kind, Err: errors.New(message)}
}

func IsCollaborator(err error) bool {
	return errors.Is(err, ErrEmbedding) ||
		errors.Is(err, ErrCompletion) ||
		errors.Is(err, ErrVectorSearch) ||
		errors.Is(err, ErrProbe) ||
		errors.Is(err, ErrSessionStore)
}

// Kind classifies err into the taxonomy. Unknown errors are internal.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case IsCollaborator(err):
		return KindCollaborator
	default:
		return KindInternal
	}
}
