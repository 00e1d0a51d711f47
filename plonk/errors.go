package plonk

import (
	"errors"
	"fmt"
)

// ErrConfiguration wraps every error caused by a malformed circuit
// description, as opposed to a bad witness. Configuration errors are fatal:
// compilation or synthesis stops at the first one.
var ErrConfiguration = errors.New("invalid circuit configuration")

func configErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrConfiguration}, args...)...)
}

// UnassignedError reports a concrete evaluation touching a cell that was
// never assigned. The checker converts it into a violation; during synthesis
// it is fatal.
type UnassignedError struct {
	Cell Cell
}

func (e *UnassignedError) Error() string {
	return fmt.Sprintf("cell %v is not assigned", e.Cell)
}
