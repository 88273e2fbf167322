package cascade

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLastResort is returned when a chain is built without a source that declares its keys.
	ErrNoLastResort = errors.New("chain requires a last resort that declares its keys")
	// ErrUnknownKey is returned when reading a key the last resort does not declare.
	ErrUnknownKey = errors.New("key is not declared by the last resort")
	// ErrNotANumber is returned by Int when the resolved value did not parse as a number.
	ErrNotANumber = errors.New("value is not a number")
	// ErrWrongType is returned by typed accessors when the resolved value has another type.
	ErrWrongType = errors.New("value has unexpected type")
)

// ResolveError reports a failure raised by a Func value while resolving Key.
type ResolveError struct {
	Key string
	Err error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Key, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
