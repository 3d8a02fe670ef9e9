package session

import "encoding/json"

// eventKind tags everything the dispatcher consumes. Re-expressing the
// callback surfaces of the media and peer capabilities as one event stream
// keeps the state table testable without a live network or device.
type eventKind int

const (
	evStart eventKind = iota
	evMediaReady
	evMediaFailed
	evPeer
	evSignalIn
	evPeerJoined
	evPeerLeft
	evTransportClosed
	evToggleAudio
	evToggleVideo
	evEnd
)

type event struct {
	kind    eventKind
	stream  MediaStream
	payload json.RawMessage
	peer    PeerEvent
	err     error
}
