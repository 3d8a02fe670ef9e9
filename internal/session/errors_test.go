package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallErrorFormatting(t *testing.T) {
	err := NewError("join room", ErrTransportClosed)
	assert.Equal(t, "join room: signaling transport closed", err.Error())

	err = WrapError("acquire media", ErrMediaAccess, "permission denied")
	assert.Equal(t, "acquire media: media access failed (permission denied)", err.Error())
}

func TestCallErrorUnwrap(t *testing.T) {
	err := WrapError("peer session", ErrSignalingFailed, "ice failed")

	assert.True(t, errors.Is(err, ErrSignalingFailed))
	assert.False(t, errors.Is(err, ErrMediaAccess))

	var callErr *CallError
	assert.True(t, errors.As(err, &callErr))
	assert.Equal(t, "peer session", callErr.Op)
}
