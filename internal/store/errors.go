package store

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable marks a local persistence failure. Callers must not
// confuse it with a cache miss; lookups signal a miss with a nil record and
// nil error instead.
var ErrStorageUnavailable = errors.New("local store unavailable")

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
