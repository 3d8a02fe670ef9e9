package chat

import (
	"errors"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrChannelNotOpen = errors.New("notes channel not open")

// Channel carries consultation notes over a WebRTC data channel, msgpack
// framed. It rides the same peer connection as the media and needs no
// extra signaling.
type Channel struct {
	dc     *webrtc.DataChannel
	onNote func(NotePayload)
}

// Attach wires the notes protocol onto an open or opening data channel.
// onNote may be nil when the caller only sends.
func Attach(dc *webrtc.DataChannel, onNote func(NotePayload)) *Channel {
	c := &Channel{dc: dc, onNote: onNote}

	dc.OnMessage(func(raw webrtc.DataChannelMessage) {
		var msg Message
		if err := msgpack.Unmarshal(raw.Data, &msg); err != nil {
			return
		}

		switch msg.Type {
		case MessageTypeNote:
			if c.onNote == nil {
				return
			}
			var note NotePayload
			if err := msg.DecodePayload(&note); err != nil {
				return
			}
			c.onNote(note)
		}
	})

	return c
}

// SendNote sends a note to the other participant.
func (c *Channel) SendNote(author, text string) error {
	if c.dc.ReadyState() != webrtc.DataChannelStateOpen {
		return ErrChannelNotOpen
	}

	msg, err := NewMessage(MessageTypeNote, NotePayload{
		Author: author,
		Text:   text,
		SentAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	b, err := msgpack.Marshal(msg)
	if err != nil {
		return err
	}
	return c.dc.Send(b)
}

// OnOpen registers a callback for when the channel becomes usable.
func (c *Channel) OnOpen(f func()) {
	c.dc.OnOpen(f)
}
