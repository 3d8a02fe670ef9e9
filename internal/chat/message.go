package chat

import "github.com/vmihailenco/msgpack/v5"

// Label of the in-call notes data channel.
const Label = "consult-notes"

// Message frames all notes-channel traffic.
type Message struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

const (
	MessageTypeNote = "note"
)

// NotePayload is a consultation note exchanged between the vet and the pet
// owner during the call.
type NotePayload struct {
	Author string `msgpack:"author"`
	Text   string `msgpack:"text"`
	SentAt int64  `msgpack:"sentAt"` // unix millis
}

// DecodePayload decodes the message payload into the provided struct.
func (m Message) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}

// NewMessage creates a Message with the given type and payload.
func NewMessage(t string, payload any) (Message, error) {
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Type:    t,
		Payload: b,
	}, nil
}
