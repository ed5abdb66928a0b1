package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/54b3r/microagents-go/internal/prompt"
	"github.com/54b3r/microagents-go/internal/provider"
)

// Kind classifies agent failures for the HTTP and CLI boundary.
type Kind string

const (
	// KindNotFound marks a lookup that matched nothing. Agents turn it into
	// a normal response; it is exported for callers that look records up
	// themselves.
	KindNotFound Kind = "not_found"
	// KindMissingSlot marks a prompt template filled without a declared
	// slot. It indicates a programming error.
	KindMissingSlot Kind = "missing_slot"
	// KindCompletion marks a failed LLM call.
	KindCompletion Kind = "completion"
	// KindParse marks an unusable model answer.
	KindParse Kind = "parse"
	// KindInvalidInput marks a request the caller must fix.
	KindInvalidInput Kind = "invalid_input"
	// KindCanceled marks a request abandoned by the caller.
	KindCanceled Kind = "canceled"
	// KindInternal covers everything else, such as an unreadable data
	// directory.
	KindInternal Kind = "internal"
)

// Error is the typed error returned by every agent operation.
type Error struct {
	Kind Kind
	// Op names the failing step, e.g. "aqi.complete".
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("agent: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
// A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func invalidInput(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: fmt.Errorf(format, args...)}
}

// wrap classifies err from step op. Caller cancellation wins over every
// other classification so a dropped client is never reported as a provider
// fault.
func wrap(ctx context.Context, op string, err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	var (
		missing *prompt.MissingSlotError
		ce      *provider.CompletionError
	)
	switch {
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return &Error{Kind: KindCanceled, Op: op, Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCanceled, Op: op, Err: err}
	case errors.As(err, &missing):
		return &Error{Kind: KindMissingSlot, Op: op, Err: err}
	case errors.As(err, &ce):
		return &Error{Kind: KindCompletion, Op: op, Err: err}
	default:
		return &Error{Kind: KindInternal, Op: op, Err: err}
	}
}

// canceled reports whether the caller abandoned ctx.
func canceled(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}
