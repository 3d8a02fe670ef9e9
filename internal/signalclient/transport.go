package signalclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rohan4324/Furever-App-sub000/internal/protocol"
	"github.com/rohan4324/Furever-App-sub000/internal/session"
)

// Transport adapts the websocket client to the session's signaling
// transport: envelopes from the hub become tagged transport events, and
// join/leave/relay become outbound envelopes.
type Transport struct {
	client     *Client
	events     chan session.TransportEvent
	registered chan string

	participantID string
}

// NewTransport wraps a connected client and starts routing its messages.
func NewTransport(client *Client) *Transport {
	t := &Transport{
		client:     client,
		events:     make(chan session.TransportEvent, 32),
		registered: make(chan string, 1),
	}
	go t.route()
	return t
}

func (t *Transport) route() {
	defer close(t.events)

	for env := range t.client.Incoming() {
		switch env.Type {
		case protocol.TypeRegistered:
			t.participantID = env.ParticipantID
			select {
			case t.registered <- env.ParticipantID:
			default:
			}

		case protocol.TypeVideoSignal:
			t.events <- session.TransportEvent{
				Kind:          session.TransportSignal,
				ParticipantID: env.ParticipantID,
				Payload:       env.Payload,
			}

		case protocol.TypeUserConnected:
			t.events <- session.TransportEvent{
				Kind:          session.TransportPeerJoined,
				ParticipantID: env.ParticipantID,
			}

		case protocol.TypeUserDisconnected:
			t.events <- session.TransportEvent{
				Kind:          session.TransportPeerLeft,
				ParticipantID: env.ParticipantID,
			}

		case protocol.TypeError:
			var payload protocol.ErrorPayload
			if err := json.Unmarshal(env.Payload, &payload); err != nil {
				payload.Error = "unknown hub error"
			}
			t.events <- session.TransportEvent{
				Kind: session.TransportClosed,
				Err:  fmt.Errorf("hub error: %s", payload.Error),
			}
		}
	}

	// Incoming closed: the transport itself is gone.
	t.events <- session.TransportEvent{Kind: session.TransportClosed}
}

// WaitRegistered blocks until the hub issues this connection's participant
// identifier.
func (t *Transport) WaitRegistered(ctx context.Context) (string, error) {
	select {
	case id := <-t.registered:
		return id, nil
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for registration: %w", ctx.Err())
	}
}

// ParticipantID returns the hub-issued identifier, empty before
// registration completes.
func (t *Transport) ParticipantID() string {
	return t.participantID
}

// Join requests membership of the room.
func (t *Transport) Join(roomID string) error {
	return t.client.Send(&protocol.Envelope{
		Type:          protocol.TypeJoinRoom,
		RoomID:        roomID,
		ParticipantID: t.participantID,
	})
}

// Leave requests removal from the room.
func (t *Transport) Leave(roomID string) error {
	return t.client.Send(&protocol.Envelope{
		Type:          protocol.TypeLeaveRoom,
		RoomID:        roomID,
		ParticipantID: t.participantID,
	})
}

// Relay sends an opaque connection descriptor to the other room members.
func (t *Transport) Relay(roomID string, payload json.RawMessage) error {
	return t.client.Send(&protocol.Envelope{
		Type:          protocol.TypeVideoSignal,
		RoomID:        roomID,
		ParticipantID: t.participantID,
		Payload:       payload,
	})
}

// Events implements session.Transport.
func (t *Transport) Events() <-chan session.TransportEvent {
	return t.events
}

var _ session.Transport = (*Transport)(nil)
