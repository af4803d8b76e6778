package ledger

import "fmt"

// Kind classifies ledger failures so callers can branch on the class of
// error instead of matching message text.
type Kind int

const (
	// KindInternal is a storage or collaborator failure. Details are
	// logged, not surfaced.
	KindInternal Kind = iota
	// KindNotFound means the referenced orchard does not exist.
	KindNotFound
	// KindInvalidState means a lifecycle precondition failed (orchard not
	// active, payout already processed, not fully funded).
	KindInvalidState
	// KindConflict means requested pocket numbers overlap claimed ones.
	KindConflict
	// KindInvalidInput means a value was malformed or out of range.
	KindInvalidInput
)

// Error is the ledger's failure type. Taken is populated for KindConflict
// with the already-claimed pocket numbers so the caller can retry with a
// disjoint set.
type Error struct {
	Kind    Kind
	Message string
	Taken   []int
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func notFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func invalidState(msg string) *Error { return &Error{Kind: KindInvalidState, Message: msg} }

func invalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func conflict(taken []int) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: fmt.Sprintf("pockets already taken: %v", taken),
		Taken:   taken,
	}
}

func internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}
