package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := NewError(PayloadTooLarge, "too large", nil)
	wrapped := fmt.Errorf("export: %w", base)

	assert.Equal(t, PayloadTooLarge, KindOf(base))
	assert.Equal(t, PayloadTooLarge, KindOf(wrapped))
	assert.Equal(t, FilterFailure, KindOf(errors.New("boom")))
}

func TestMaskError_Message(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewError(WriteFailure, "failed to write mask", cause)

	assert.Equal(t, "failed to write mask: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "write_failure", err.Kind.String())
	assert.Equal(t, "unknown", ErrorKind(0).String())
}

func TestBlurRequest_Radius(t *testing.T) {
	req := BlurRequest{}
	assert.Equal(t, 16, req.Radius(16))

	zero := 0
	req.BlurRadius = &zero
	assert.Equal(t, 0, req.Radius(16))
}
