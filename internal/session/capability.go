package session

import (
	"context"
	"encoding/json"
)

// TrackKind distinguishes local media tracks.
type TrackKind string

const (
	TrackAudio TrackKind = "audio"
	TrackVideo TrackKind = "video"
)

// Track is a single local or remote media track.
type Track interface {
	Kind() TrackKind

	// Enabled reports the in-place mute flag. Disabling a track does not
	// renegotiate the connection; the remote side observes a muted or
	// blank track.
	Enabled() bool
	SetEnabled(enabled bool)

	// Stop releases the track permanently.
	Stop()
}

// MediaStream is a set of live tracks owned by exactly one session.
type MediaStream interface {
	Tracks() []Track

	// Close stops every track.
	Close()
}

// MediaCapability acquires local audio+video. The request can block
// indefinitely on user interaction; cancel via the context.
type MediaCapability interface {
	Acquire(ctx context.Context) (MediaStream, error)
}

// PeerEventKind tags events emitted by a peer session.
type PeerEventKind int

const (
	// PeerSignal carries an outbound connection descriptor to relay.
	PeerSignal PeerEventKind = iota

	// PeerStream carries the remote media stream.
	PeerStream

	// PeerConnected fires when the media connection is established.
	PeerConnected

	// PeerError fires when negotiation fails.
	PeerError
)

// PeerEvent is a tagged event from the peer-connection capability.
type PeerEvent struct {
	Kind    PeerEventKind
	Payload json.RawMessage
	Stream  MediaStream
	Err     error
}

// PeerSession is the external capability performing the actual media
// negotiation and transport once descriptors are exchanged. The session
// client stays agnostic to the concrete implementation.
type PeerSession interface {
	// Signal feeds an inbound connection descriptor into the negotiation.
	Signal(payload json.RawMessage) error

	// Reoffer restarts the descriptor exchange. The session invokes it on
	// the initiator when a peer joins the room after the opening offer was
	// already relayed, so the newcomer gets a fresh negotiation.
	Reoffer() error

	// Close destroys the peer session. A new call constructs a fresh one.
	Close() error
}

// PeerFactory constructs peer sessions. Events are delivered through emit,
// which must be safe to call from any goroutine.
type PeerFactory interface {
	NewPeerSession(role Role, local MediaStream, emit func(PeerEvent)) (PeerSession, error)
}

// TransportEventKind tags events from the signaling transport.
type TransportEventKind int

const (
	// TransportSignal is an inbound relayed envelope for this room.
	TransportSignal TransportEventKind = iota

	// TransportPeerJoined and TransportPeerLeft mirror the hub's
	// user-connected / user-disconnected broadcasts.
	TransportPeerJoined
	TransportPeerLeft

	// TransportClosed fires when the signaling channel itself drops.
	TransportClosed
)

// TransportEvent is a tagged event from the signaling transport.
type TransportEvent struct {
	Kind          TransportEventKind
	ParticipantID string
	Payload       json.RawMessage
	Err           error
}

// Transport is the session's view of the signaling channel to the hub.
// None of the operations wait on the remote peer.
type Transport interface {
	Join(roomID string) error
	Leave(roomID string) error
	Relay(roomID string, payload json.RawMessage) error

	// Events delivers inbound transport events. The channel closes when
	// the transport shuts down.
	Events() <-chan TransportEvent
}
