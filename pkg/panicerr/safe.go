package panicerr

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/panics"

	"github.com/kazz187/agentfeed/pkg/cerr"
)

// ErrPanic is in the chain of every error produced from a recovered panic.
var ErrPanic = errors.New("recovered panic")

// Safe wraps a function that returns an error, catching any panics and returning them as an error.
// A recovered panic is reported as an Internal cerr.Error carrying the panicking goroutine's stack.
func Safe(fn func() error) func() error {
	return func() error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn()
		})
		if r := catcher.Recovered(); r != nil {
			return fromRecovered(r)
		}
		return err
	}
}

// SafeContext wraps a function that takes a context and returns an error.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return Safe(func() error { return fn(ctx) })()
	}
}

// Call runs fn and converts a panic into an error. The zero value is returned alongside a recovered panic.
func Call[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var (
		catcher panics.Catcher
		out     T
		err     error
	)
	catcher.Try(func() {
		out, err = fn(ctx)
	})
	if r := catcher.Recovered(); r != nil {
		var zero T
		return zero, fromRecovered(r)
	}
	return out, err
}

// IsPanic reports whether err came from a recovered panic.
func IsPanic(err error) bool {
	return errors.Is(err, ErrPanic)
}

func fromRecovered(r *panics.Recovered) error {
	return cerr.NewErrorWithStack(cerr.Internal, fmt.Sprintf("panic: %v", r.Value), fmt.Errorf("%w: %w", ErrPanic, r.AsError()), string(r.Stack))
}
