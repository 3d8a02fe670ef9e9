package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohan4324/Furever-App-sub000/internal/session"
)

func TestSyntheticAcquire(t *testing.T) {
	stream, err := NewSynthetic().Acquire(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	tracks := stream.Tracks()
	require.Len(t, tracks, 2)

	kinds := map[session.TrackKind]bool{}
	for _, tr := range tracks {
		kinds[tr.Kind()] = true
		assert.True(t, tr.Enabled())
	}
	assert.True(t, kinds[session.TrackAudio])
	assert.True(t, kinds[session.TrackVideo])
}

func TestSyntheticToggle(t *testing.T) {
	stream, err := NewSynthetic().Acquire(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	track := stream.Tracks()[0]
	track.SetEnabled(false)
	assert.False(t, track.Enabled())

	track.SetEnabled(true)
	assert.True(t, track.Enabled())
}

func TestSyntheticCloseIdempotent(t *testing.T) {
	acquired, err := NewSynthetic().Acquire(context.Background())
	require.NoError(t, err)

	stream, ok := acquired.(*Stream)
	require.True(t, ok)

	stream.Close()
	stream.Close()

	for _, tr := range stream.Tracks() {
		st, ok := tr.(*SampleTrack)
		require.True(t, ok)
		assert.True(t, st.Stopped())
		// Stop twice must be safe as well.
		st.Stop()
	}
}

func TestSyntheticExposesLocalTracks(t *testing.T) {
	acquired, err := NewSynthetic().Acquire(context.Background())
	require.NoError(t, err)
	defer acquired.Close()

	stream, ok := acquired.(*Stream)
	require.True(t, ok)

	locals := stream.LocalTracks()
	assert.Len(t, locals, 2)
}
