package circuit

import (
	"errors"
	"fmt"
)

// ErrAssignment wraps every error raised while populating the grid: rows out
// of range, conflicting double assignments, copies from unassigned cells.
// Assignment errors are fatal; synthesis stops at the first one.
var ErrAssignment = errors.New("invalid assignment")

func assignErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrAssignment}, args...)...)
}
