package exception_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nyuad-access/fidas-uplink/internal/support/exception"
)

func TestNewPipelineError(t *testing.T) {
	cause := errors.New("connection refused")
	pe := exception.New("delivery", "upload failed", cause, true)

	assert.Equal(t, "delivery", pe.Component)
	assert.Equal(t, "upload failed", pe.Message)
	assert.Equal(t, cause, pe.Unwrap())
	assert.True(t, pe.IsRetryable())
	assert.Contains(t, pe.Error(), "[delivery] upload failed: connection refused")
}

func TestNewWithoutCause(t *testing.T) {
	pe := exception.New("config", "csv output directory must be configured", nil, false)

	assert.Nil(t, pe.Unwrap())
	assert.False(t, pe.IsRetryable())
	assert.Equal(t, "[config] csv output directory must be configured", pe.Error())
}

func TestNewfExtractsTrailingError(t *testing.T) {
	cause := errors.New("no such table")
	pe := exception.Newf("progress", "failed to load status for source '%s'", "fidas-sql", cause)

	assert.Equal(t, cause, pe.Unwrap())
	assert.Contains(t, pe.Error(), "failed to load status for source 'fidas-sql'")
	assert.False(t, pe.IsRetryable())
}

func TestIsTemporary(t *testing.T) {
	assert.False(t, exception.IsTemporary(nil))
	assert.True(t, exception.IsTemporary(exception.New("source", "listing failed", nil, true)))
	assert.False(t, exception.IsTemporary(exception.New("source", "bad header", nil, false)))

	// Plain errors fall back to transport failure signatures.
	assert.False(t, exception.IsTemporary(errors.New("bad request")))
	assert.True(t, exception.IsTemporary(errors.New("i/o timeout")))
	assert.True(t, exception.IsTemporary(errors.New("read: connection reset by peer")))
}
