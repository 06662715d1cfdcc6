package questiongen

import "fmt"

// ErrGeneration wraps a failed or timed-out primary generation.
type ErrGeneration struct {
	Err error
}

func (e *ErrGeneration) Error() string {
	return fmt.Sprintf("question generation failed: %v", e.Err)
}

func (e *ErrGeneration) Unwrap() error { return e.Err }

// ErrMalformedOutput reports generator output that does not have the
// expected shape. Index is the offending item, or -1 for the whole batch.
type ErrMalformedOutput struct {
	Index  int
	Reason string
}

func (e *ErrMalformedOutput) Error() string {
	if e.Index < 0 {
		return "malformed generator output: " + e.Reason
	}
	return fmt.Sprintf("malformed generator output: question %d: %s", e.Index+1, e.Reason)
}
