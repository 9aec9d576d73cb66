package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references an absent book.
	ErrNotFound = errors.New("book not found")

	// ErrDuplicateKey is returned by Insert when the id is already catalogued.
	ErrDuplicateKey = errors.New("book already exists")

	// ErrInvalidTopology reports a broken parent/child link or a violated
	// red-black invariant. The tree must not be used after it is seen.
	ErrInvalidTopology = errors.New("invalid tree topology")
)

func topologyError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTopology, fmt.Sprintf(format, args...))
}

// recoverTopology converts a topology panic raised by the balancing engine
// into an error returned from the enclosing operation. Other panics are
// re-raised.
func recoverTopology(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok && errors.Is(e, ErrInvalidTopology) {
		*err = e
		return
	}
	panic(r)
}
