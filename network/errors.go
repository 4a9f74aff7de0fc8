package network

import (
	"fmt"

	"github.com/go-errors/errors"
)

// ErrScanInProgress is returned by Scan while a previous scan has not
// completed yet.
var ErrScanInProgress = errors.New("A scan is already in progress.")

// ErrUnknownMethod is returned by Invoke for names outside the method table.
var ErrUnknownMethod = errors.New("Unknown method")

// ArgumentError reports a runtime value of the wrong shape. It is returned
// before any driver call is made.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

func argumentErrorf(format string, args ...interface{}) *ArgumentError {
	return &ArgumentError{Message: fmt.Sprintf(format, args...)}
}
