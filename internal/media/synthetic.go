package media

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/webrtc/v4"
	pionmedia "github.com/pion/webrtc/v4/pkg/media"

	"github.com/rohan4324/Furever-App-sub000/internal/session"
)

const streamID = "furever-consult"

// Synthetic implements the media capability for the native client, where
// no browser capture exists: it produces an audio track of PCMU silence and
// a video track of placeholder frames. Real capture is the browser's job;
// the signaling core only needs live tracks with working mute semantics.
type Synthetic struct{}

// NewSynthetic creates the synthetic capture capability.
func NewSynthetic() *Synthetic {
	return &Synthetic{}
}

// Acquire builds the local audio+video stream and starts the generators.
func (s *Synthetic) Acquire(ctx context.Context) (session.MediaStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	audio, err := newSampleTrack(session.TrackAudio)
	if err != nil {
		return nil, err
	}

	video, err := newSampleTrack(session.TrackVideo)
	if err != nil {
		audio.Stop()
		return nil, err
	}

	stream := &Stream{tracks: []*SampleTrack{audio, video}}
	for _, t := range stream.tracks {
		go t.run()
	}
	return stream, nil
}

// Stream is a set of generated local tracks.
type Stream struct {
	tracks []*SampleTrack
}

// Tracks implements session.MediaStream.
func (s *Stream) Tracks() []session.Track {
	out := make([]session.Track, len(s.tracks))
	for i, t := range s.tracks {
		out[i] = t
	}
	return out
}

// Close stops every track. Safe to call more than once.
func (s *Stream) Close() {
	for _, t := range s.tracks {
		t.Stop()
	}
}

// LocalTracks exposes the underlying webrtc tracks for the peer session.
func (s *Stream) LocalTracks() []webrtc.TrackLocal {
	out := make([]webrtc.TrackLocal, len(s.tracks))
	for i, t := range s.tracks {
		out[i] = t.track
	}
	return out
}

// SampleTrack is one generated track. When disabled, the generator skips
// writes, so the remote side observes a silent or frozen track rather than
// a dropped connection.
type SampleTrack struct {
	kind     session.TrackKind
	track    *webrtc.TrackLocalStaticSample
	enabled  atomic.Bool
	interval time.Duration
	frame    []byte
	stop     chan struct{}
	stopOnce sync.Once
}

func newSampleTrack(kind session.TrackKind) (*SampleTrack, error) {
	var (
		capability webrtc.RTPCodecCapability
		id         string
		interval   time.Duration
		frame      []byte
	)

	switch kind {
	case session.TrackAudio:
		capability = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypePCMU, ClockRate: 8000, Channels: 1}
		id = "audio"
		interval = 20 * time.Millisecond
		// 20ms of PCMU silence at 8kHz.
		frame = make([]byte, 160)
		for i := range frame {
			frame[i] = 0xFF
		}
	case session.TrackVideo:
		capability = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}
		id = "video"
		interval = 33 * time.Millisecond
		frame = make([]byte, 128)
	}

	track, err := webrtc.NewTrackLocalStaticSample(capability, id, streamID)
	if err != nil {
		return nil, err
	}

	t := &SampleTrack{
		kind:     kind,
		track:    track,
		interval: interval,
		frame:    frame,
		stop:     make(chan struct{}),
	}
	t.enabled.Store(true)
	return t, nil
}

func (t *SampleTrack) run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if !t.enabled.Load() {
				continue
			}
			// Write errors mean no peer is bound yet; keep generating.
			t.track.WriteSample(pionmedia.Sample{Data: t.frame, Duration: t.interval})
		}
	}
}

// Kind implements session.Track.
func (t *SampleTrack) Kind() session.TrackKind {
	return t.kind
}

// Enabled implements session.Track.
func (t *SampleTrack) Enabled() bool {
	return t.enabled.Load()
}

// SetEnabled implements session.Track.
func (t *SampleTrack) SetEnabled(enabled bool) {
	t.enabled.Store(enabled)
}

// Stop halts the generator permanently. Idempotent.
func (t *SampleTrack) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
}

// Stopped reports whether the generator has been halted.
func (t *SampleTrack) Stopped() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}
