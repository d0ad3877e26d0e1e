package advanced

import "github.com/pkg/errors"

// Threading errors up and down all the recursive operations during
// trapezoidization would add a ton of complexity to the code. Instead, we use
// panics, and the public API recovers to convert to an error.

// TrapezoidError wraps errors thrown by fatalf. A distinct wrapper type keeps
// the recovery handler precise: any other panic value, including unrelated
// errors, propagates instead of being converted.
type TrapezoidError struct {
	error
}

// Panic with a TrapezoidError.
func fatalf(format string, args ...interface{}) {
	panic(TrapezoidError{errors.Errorf(format, args...)})
}

func HandleTrapezoidPanicRecover(r interface{}) error {
	if r != nil {
		if trapezoidError, ok := r.(TrapezoidError); ok {
			return trapezoidError
		}
		panic(r)
	}
	return nil
}
