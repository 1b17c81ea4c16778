package common

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{WrapError(ErrNotFound, "get run"), codes.NotFound},
		{NewAppError("BAD", "nope", ErrInvalidInput), codes.InvalidArgument},
		{WrapError(ErrUnsupportedFormat, "load"), codes.InvalidArgument},
		{ErrAIUnavailable, codes.Unavailable},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.Aborted, "keep"), codes.Aborted},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, status.Code(ToStatus(tt.err)), tt.err.Error())
	}
	assert.NoError(t, ToStatus(nil))
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError("DB", "insert failed", ErrDatabase)
	assert.ErrorIs(t, err, ErrDatabase)
	assert.Equal(t, "DB: insert failed: database error", err.Error())
	assert.Nil(t, WrapError(nil, "x"))
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("name", "", Required).
		Field("role", "x", MinLength(2)).
		Field("mode", "fast", OneOf("pattern", "hybrid")).
		Field("confidence", 1.5, Range(0, 1))
	assert.Len(t, v.Errors(), 4)
	assert.True(t, IsValidationError(v.Error()))

	ok := NewValidator().Field("id", "6f1c1c4e-4a39-4d8b-9a57-2b8a8ad0b5f1", UUID)
	assert.NoError(t, ok.Error())
}

func TestEnsureRequestID(t *testing.T) {
	ctx, rid := EnsureRequestID(context.Background())
	assert.NotEmpty(t, rid)
	ctx2, rid2 := EnsureRequestID(ctx)
	assert.Equal(t, rid, rid2)
	assert.Equal(t, rid, RequestIDFromContext(ctx2))
}
