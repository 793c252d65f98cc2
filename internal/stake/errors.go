package stake

import (
	"context"
	"errors"
	"fmt"

	"sherk_portal/internal/repository"
)

type Kind string

const (
	KindUnauthenticated    Kind = "unauthenticated"
	KindEmptyStake         Kind = "empty_stake"
	KindInvalidStake       Kind = "invalid_stake"
	KindFieldLocked        Kind = "field_locked"
	KindBusy               Kind = "busy"
	KindCanceled           Kind = "canceled"
	KindTimeout            Kind = "timeout"
	KindNetworkUnavailable Kind = "network_unavailable"
	KindStore              Kind = "store_error"
)

// Action is the next step offered to the user alongside an error or state.
type Action string

const (
	ActionNone           Action = ""
	ActionRetry          Action = "retry"
	ActionSignIn         Action = "sign_in"
	ActionFixInput       Action = "fix_input"
	ActionWait           Action = "wait"
	ActionContactSupport Action = "contact_support"
	ActionOpenStakeForm  Action = "open_stake_form"
)

// Error is the typed result of a failed Load or Submit.
type Error struct {
	Kind    Kind
	Action  Action
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same submission may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindNetworkUnavailable, KindStore, KindBusy, KindCanceled:
		return true
	}
	return false
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Action: actionFor(kind), Message: msg}
}

func actionFor(kind Kind) Action {
	switch kind {
	case KindUnauthenticated:
		return ActionSignIn
	case KindEmptyStake, KindInvalidStake, KindFieldLocked:
		return ActionFixInput
	case KindBusy, KindCanceled:
		return ActionWait
	default:
		return ActionRetry
	}
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// classify turns a store failure into a typed Error.
func classify(op string, err error) *Error {
	if e, ok := AsError(err); ok {
		return e
	}
	var e *Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e = newError(KindTimeout, "the store did not answer in time")
	case errors.Is(err, repository.ErrNetwork):
		e = newError(KindNetworkUnavailable, "the store is unreachable")
	case errors.Is(err, repository.ErrConflict):
		// an upsert racing another writer; repeating it converges
		e = newError(KindStore, op+" collided with a concurrent write")
	default:
		e = newError(KindStore, op+" failed")
		e.Action = ActionRetry
	}
	e.Err = err
	return e
}
