package signaling

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/rohan4324/Furever-App-sub000/internal/protocol"
)

// Message pairs an inbound envelope with the connection it arrived on.
type Message struct {
	*protocol.Envelope

	// client is the client that sent the message. Internal to the hub,
	// never serialized.
	client *Client
}

// Hub is the authoritative registry of rooms and participants. It relays
// signal envelopes between participants of the same room and never inspects
// their payloads.
//
// All room state is owned by the single goroutine running Run; register,
// unregister and inbound traffic are funneled through channels so every
// mutation of the member sets is linearized.
type Hub struct {
	// Register is the channel for newly connected clients.
	Register chan *Client

	// Unregister is the channel for clients whose transport dropped.
	Unregister chan *Client

	// Inbound carries envelopes read from client connections.
	Inbound chan *Message

	rooms   map[string]*Room
	queries chan query
	done    chan struct{}
	logger  *zap.Logger
	metrics *Metrics
}

type query func(rooms map[string]*Room)

// NewHub creates a new Hub instance.
func NewHub(logger *zap.Logger, metrics *Metrics) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan *Message),
		rooms:      make(map[string]*Room),
		queries:    make(chan query),
		done:       make(chan struct{}),
		logger:     logger,
		metrics:    metrics,
	}
}

// Run starts the hub's main processing loop. This is the single goroutine
// that safely manages all room state.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.logger.Info("participant registered", zap.String("participant", client.ID))

			// Echo the hub-issued identity so the client never has to
			// assert one itself.
			h.send(client, &protocol.Envelope{
				Type:          protocol.TypeRegistered,
				ParticipantID: client.ID,
			})

		case client := <-h.Unregister:
			h.logger.Info("participant disconnected", zap.String("participant", client.ID))

			// Transport loss is equivalent to an explicit leave.
			if client.RoomID != "" {
				h.leave(client.RoomID, client)
			}

			// Close the client's send channel to stop its WritePump.
			close(client.Send)

		case msg := <-h.Inbound:
			switch msg.Type {
			case protocol.TypeJoinRoom:
				h.join(msg.RoomID, msg.client)

			case protocol.TypeLeaveRoom:
				h.leave(msg.RoomID, msg.client)

			case protocol.TypeVideoSignal:
				h.relay(msg.RoomID, msg.client, msg.Payload)

			default:
				h.logger.Warn("unknown message type",
					zap.String("type", msg.Type),
					zap.String("participant", msg.client.ID))
			}

		case q := <-h.queries:
			q(h.rooms)

		case <-h.done:
			return
		}
	}
}

// Stop terminates the Run loop. Connected clients are not torn down; their
// pumps exit when the server closes the sockets.
func (h *Hub) Stop() {
	close(h.done)
}

// join registers the client in the room, creating it on first join, and
// broadcasts user-connected to the other members. Re-joining the same room
// is a no-op re-registration.
func (h *Hub) join(roomID string, client *Client) {
	if roomID == "" {
		h.sendError(client, "room id required")
		return
	}

	room, ok := h.rooms[roomID]
	if ok && room.Contains(client) {
		return
	}

	// A participant belongs to at most one room at a time.
	if client.RoomID != "" && client.RoomID != roomID {
		h.leave(client.RoomID, client)
	}

	if !ok {
		room = &Room{ID: roomID}
		h.rooms[roomID] = room
		h.metrics.RoomsActive.Inc()
		h.logger.Info("room created", zap.String("room", roomID))
	}

	room.Add(client)
	client.RoomID = roomID
	h.metrics.ParticipantsActive.Inc()
	h.metrics.JoinsTotal.Inc()
	h.logger.Info("participant joined room",
		zap.String("room", roomID),
		zap.String("participant", client.ID))

	for _, other := range room.Others(client) {
		h.send(other, &protocol.Envelope{
			Type:          protocol.TypeUserConnected,
			RoomID:        roomID,
			ParticipantID: client.ID,
		})
	}
}

// leave removes the client from the room, deletes the room when it empties
// and broadcasts user-disconnected to the remaining members.
func (h *Hub) leave(roomID string, client *Client) {
	room, ok := h.rooms[roomID]
	if !ok || !room.Contains(client) {
		return
	}

	room.Remove(client)
	client.RoomID = ""
	h.metrics.ParticipantsActive.Dec()
	h.logger.Info("participant left room",
		zap.String("room", roomID),
		zap.String("participant", client.ID))

	if len(room.Participants) == 0 {
		delete(h.rooms, roomID)
		h.metrics.RoomsActive.Dec()
		h.logger.Info("room deleted", zap.String("room", roomID))
		return
	}

	for _, other := range room.Participants {
		h.send(other, &protocol.Envelope{
			Type:          protocol.TypeUserDisconnected,
			RoomID:        roomID,
			ParticipantID: client.ID,
		})
	}
}

// relay forwards the payload to every other current member of the room, in
// join order. A missing room or an empty member set is a silent no-op:
// signaling is best-effort and a vanished peer is routine, not exceptional.
func (h *Hub) relay(roomID string, sender *Client, payload json.RawMessage) {
	room, ok := h.rooms[roomID]
	if !ok {
		h.metrics.RelaysDropped.Inc()
		h.logger.Debug("relay dropped, no such room", zap.String("room", roomID))
		return
	}

	others := room.Others(sender)
	if len(others) == 0 {
		h.metrics.RelaysDropped.Inc()
		h.logger.Debug("relay dropped, no other members", zap.String("room", roomID))
		return
	}

	for _, target := range others {
		h.send(target, &protocol.Envelope{
			Type:          protocol.TypeVideoSignal,
			RoomID:        roomID,
			ParticipantID: sender.ID,
			Payload:       payload,
		})
	}
	h.metrics.RelaysTotal.Inc()
}

// send never blocks the Run loop. A full buffer means the client's write
// pump is dead or drowning; the envelope is dropped and the connection is
// reaped when its Unregister lands.
func (h *Hub) send(client *Client, env *protocol.Envelope) {
	select {
	case client.Send <- env:
	default:
		h.logger.Warn("dropping envelope for stalled client",
			zap.String("participant", client.ID),
			zap.String("type", env.Type))
	}
}

func (h *Hub) sendError(client *Client, reason string) {
	payload, _ := json.Marshal(protocol.ErrorPayload{Error: reason})
	h.send(client, &protocol.Envelope{
		Type:    protocol.TypeError,
		Payload: payload,
	})
}

// RoomCount reports the number of active rooms. Answered by the Run loop so
// the caller never observes a torn member set.
func (h *Hub) RoomCount() int {
	result := make(chan int, 1)
	select {
	case h.queries <- func(rooms map[string]*Room) { result <- len(rooms) }:
		return <-result
	case <-h.done:
		return 0
	}
}

// RoomParticipants returns the participant ids of a room in join order, or
// nil if the room does not exist.
func (h *Hub) RoomParticipants(roomID string) []string {
	result := make(chan []string, 1)
	select {
	case h.queries <- func(rooms map[string]*Room) {
		room, ok := rooms[roomID]
		if !ok {
			result <- nil
			return
		}
		ids := make([]string, 0, len(room.Participants))
		for _, p := range room.Participants {
			ids = append(ids, p.ID)
		}
		result <- ids
	}:
		return <-result
	case <-h.done:
		return nil
	}
}
