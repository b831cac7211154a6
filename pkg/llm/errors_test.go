package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &OpError{Op: OpAnalyzeComplexity, Err: cause}

	assert.EqualError(t, err, "Failed to analyze feature complexity: unexpected end of JSON input")
	assert.ErrorIs(t, err, cause)
}

func TestWrapOp(t *testing.T) {
	assert.NoError(t, WrapOp(OpSuggestTitle, nil))

	wrapped := WrapOp(OpSuggestTitle, errors.New("bad"))
	assert.EqualError(t, wrapped, "Failed to suggest title: bad")

	again := WrapOp(OpGenerateFeature, wrapped)
	assert.Same(t, wrapped, again)
}
