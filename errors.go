package cc

import "fmt"

// Category discriminates the four error taxonomies from the
// diagnostics design: syntax errors in CC constructs, unsupported
// constructs, I/O and resource errors, and internal consistency
// failures.
type Category int

const (
	CategorySyntax Category = iota
	CategoryUnsupported
	CategoryIO
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategorySyntax:
		return "syntax-error"
	case CategoryUnsupported:
		return "unsupported"
	case CategoryIO:
		return "io-error"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// CCError is the error type every pass returns when it can't proceed.
// It carries enough context to print `file:line:col: category: message`
// the way the pipeline's diagnostics channel expects, and a remediation
// Hint for the Unsupported category (e.g. await-outside-async).
type CCError struct {
	Category Category
	Message  string
	Span     Span
	Hint     string
}

func (e CCError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s @ %s: %s (%s)", e.Category, e.Span, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s @ %s: %s", e.Category, e.Span, e.Message)
}

func NewSyntaxError(message string, span Span) error {
	return CCError{Category: CategorySyntax, Message: message, Span: span}
}

func NewUnsupportedError(message, hint string, span Span) error {
	return CCError{Category: CategoryUnsupported, Message: message, Hint: hint, Span: span}
}

func NewIOError(message string, span Span) error {
	return CCError{Category: CategoryIO, Message: message, Span: span}
}

func NewInternalError(message string, span Span) error {
	return CCError{Category: CategoryInternal, Message: message, Span: span}
}

// isCategoryError reports whether err is a CCError of the given
// category, mirroring the teacher's isthrown helper that distinguishes
// a recognized error type from an opaque one so callers can decide
// whether to wrap or propagate it unchanged.
func isCategoryError(err error, cat Category) bool {
	ce, ok := err.(CCError)
	return ok && ce.Category == cat
}

// passStatus is the tri-state every pass returns (§7): unchanged,
// changed, or error. error aborts the pipeline for the current
// translation unit; unchanged/changed let the scheduler decide whether
// to re-run dependent passes.
type passStatus int

const (
	statusUnchanged passStatus = iota
	statusChanged
	statusError
)
