package llm

import (
	"errors"
	"fmt"
)

// Operation names used in user-facing error messages.
const (
	OpGenerateFeature   = "generate feature"
	OpAnalyzeFeature    = "analyze feature"
	OpAnalyzeComplexity = "analyze feature complexity"
	OpSuggestTitle      = "suggest title"
)

// OpError is the error every pipeline operation fails with. It renders as
// "Failed to <op>: <cause>".
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("Failed to %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// WrapOp wraps err for op unless it already carries an operation.
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	return &OpError{Op: op, Err: err}
}
