package protocol

import "encoding/json"

// Envelope defines the structure for all C2S (Client to Server)
// and S2C (Server to Client) websocket messages.
type Envelope struct {
	Type string `json:"type"`

	// RoomID is the appointment key the message is scoped to. Supplied by
	// the booking flow; the signaling core treats it as opaque.
	RoomID string `json:"room_id,omitempty"`

	// ParticipantID identifies the sender on relayed messages and the
	// subject on user-connected / user-disconnected broadcasts.
	ParticipantID string `json:"participant_id,omitempty"`

	// Payload carries the connection descriptor on video-signal messages.
	// The hub never inspects or mutates it.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants.
const (
	// Client to hub.
	TypeJoinRoom    = "join-room"
	TypeLeaveRoom   = "leave-room"
	TypeVideoSignal = "video-signal" // bidirectional: relayed verbatim

	// Hub to client.
	TypeRegistered       = "registered"
	TypeUserConnected    = "user-connected"
	TypeUserDisconnected = "user-disconnected"
	TypeError            = "error"
)

// SignalPayload is the shape of the opaque descriptor the clients exchange
// (SDP offer/answer or ICE candidate). Only clients parse it; the hub
// relays the raw bytes.
type SignalPayload struct {
	Type         string          `json:"type,omitempty"` // "offer" or "answer"
	SDP          string          `json:"sdp,omitempty"`
	ICECandidate json.RawMessage `json:"ice_candidate,omitempty"`
}

// ErrorPayload represents error messages from the hub.
type ErrorPayload struct {
	Error string `json:"error"`
}
