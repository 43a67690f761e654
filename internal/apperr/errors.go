// Package apperr defines the error kinds shared by the ingestion and retrieval core.
// Kinds survive wrapping so the HTTP layer can pick a status code without
// inspecting message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the stage of the system that produced it.
type Kind int

const (
	// KindUnknown is the zero value and never matches a sentinel.
	KindUnknown Kind = iota
	// KindConfiguration marks invalid settings, e.g. chunk overlap >= chunk size.
	KindConfiguration
	// KindIngestion marks embedding or store failures on the write path.
	KindIngestion
	// KindSearch marks embedding or store failures on the read path.
	KindSearch
	// KindExternalService marks extraction or generation collaborator failures.
	KindExternalService
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindIngestion:
		return "ingestion"
	case KindSearch:
		return "search"
	case KindExternalService:
		return "external service"
	default:
		return "unknown"
	}
}

var (
	// ErrConfiguration matches any error of KindConfiguration via errors.Is.
	ErrConfiguration = &Error{Kind: KindConfiguration}
	// ErrIngestion matches any error of KindIngestion via errors.Is.
	ErrIngestion = &Error{Kind: KindIngestion}
	// ErrSearch matches any error of KindSearch via errors.Is.
	ErrSearch = &Error{Kind: KindSearch}
	// ErrExternalService matches any error of KindExternalService via errors.Is.
	ErrExternalService = &Error{Kind: KindExternalService}
)

// Error is a typed error carrying its Kind, the failing operation and the cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s error: %s", e.Kind, e.Op)
	default:
		return fmt.Sprintf("%s error", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind. A target with an
// Op only matches errors with the same Op.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == KindUnknown || t.Kind != e.Kind {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// New returns an error of the given kind for op, wrapping err.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Configuration returns a KindConfiguration error with a formatted message.
func Configuration(op, format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Op: op, Err: fmt.Errorf(format, args...)}
}

// Ingestion wraps err as a KindIngestion error.
func Ingestion(op string, err error) error {
	return &Error{Kind: KindIngestion, Op: op, Err: err}
}

// Search wraps err as a KindSearch error.
func Search(op string, err error) error {
	return &Error{Kind: KindSearch, Op: op, Err: err}
}

// ExternalService wraps err as a KindExternalService error.
func ExternalService(op string, err error) error {
	return &Error{Kind: KindExternalService, Op: op, Err: err}
}

// KindOf returns the Kind of the outermost *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
