package chainmap

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is reported by At when the requested key is absent.
// Use errors.Is to test for it; the returned error also carries the
// offending key in its message.
var ErrKeyNotFound = errors.New("chainmap: key not found")

func keyNotFound(key any) error {
	return fmt.Errorf("%w: %v", ErrKeyNotFound, key)
}
