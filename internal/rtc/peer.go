package rtc

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"go.uber.org/zap"

	"github.com/rohan4324/Furever-App-sub000/internal/protocol"
	"github.com/rohan4324/Furever-App-sub000/internal/session"
)

// peerSession drives one pion peer connection and translates its callbacks
// into the session's tagged peer events.
type peerSession struct {
	pc     *webrtc.PeerConnection
	role   session.Role
	emit   func(session.PeerEvent)
	logger *zap.Logger

	remoteOnce sync.Once
	remote     *remoteStream

	closeOnce sync.Once
	closeErr  error
}

func (p *peerSession) setupHandlers() {
	p.remote = &remoteStream{}

	p.pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		candidate, err := json.Marshal(c.ToJSON())
		if err != nil {
			return
		}
		p.emitSignal(protocol.SignalPayload{ICECandidate: candidate})
	})

	p.pc.OnTrack(func(tr *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		track := newRemoteTrack(tr)
		p.remote.add(track)
		go track.read(tr)

		p.remoteOnce.Do(func() {
			p.emit(session.PeerEvent{Kind: session.PeerStream, Stream: p.remote})
		})
	})

	p.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		switch state {
		case webrtc.PeerConnectionStateConnected:
			p.emit(session.PeerEvent{Kind: session.PeerConnected})
		case webrtc.PeerConnectionStateFailed:
			p.emit(session.PeerEvent{
				Kind: session.PeerError,
				Err:  fmt.Errorf("peer connection failed"),
			})
		}
	})
}

func (p *peerSession) sendOffer() error {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	if err := p.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}

	p.emitSignal(protocol.SignalPayload{Type: "offer", SDP: offer.SDP})
	return nil
}

// Reoffer re-runs the offer leg toward a peer that joined after the
// opening offer was relayed into an empty room.
func (p *peerSession) Reoffer() error {
	return p.sendOffer()
}

// Signal feeds an inbound descriptor into the negotiation. Offers arrive
// at the receiver, answers at the initiator, ICE candidates at both.
func (p *peerSession) Signal(raw json.RawMessage) error {
	var payload protocol.SignalPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("parse signal: %w", err)
	}

	if payload.SDP != "" {
		return p.handleSDP(payload)
	}
	if payload.ICECandidate != nil {
		return p.handleCandidate(payload.ICECandidate)
	}
	return nil
}

func (p *peerSession) handleSDP(payload protocol.SignalPayload) error {
	switch payload.Type {
	case "offer":
		offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: payload.SDP}
		if err := p.pc.SetRemoteDescription(offer); err != nil {
			return fmt.Errorf("set remote description: %w", err)
		}

		answer, err := p.pc.CreateAnswer(nil)
		if err != nil {
			return fmt.Errorf("create answer: %w", err)
		}
		if err := p.pc.SetLocalDescription(answer); err != nil {
			return fmt.Errorf("set local description: %w", err)
		}

		p.emitSignal(protocol.SignalPayload{Type: "answer", SDP: answer.SDP})
		return nil

	case "answer":
		answer := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: payload.SDP}
		if err := p.pc.SetRemoteDescription(answer); err != nil {
			return fmt.Errorf("set remote description: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unexpected signal type %q", payload.Type)
	}
}

func (p *peerSession) handleCandidate(raw json.RawMessage) error {
	var candidate webrtc.ICECandidateInit
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return fmt.Errorf("parse ICE candidate: %w", err)
	}
	if err := p.pc.AddICECandidate(candidate); err != nil {
		return fmt.Errorf("add ICE candidate: %w", err)
	}
	return nil
}

func (p *peerSession) emitSignal(payload protocol.SignalPayload) {
	b, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("marshal signal payload", zap.Error(err))
		return
	}
	p.emit(session.PeerEvent{Kind: session.PeerSignal, Payload: b})
}

// Close destroys the peer connection. Idempotent.
func (p *peerSession) Close() error {
	p.closeOnce.Do(func() {
		p.remote.Close()
		p.closeErr = p.pc.Close()
	})
	return p.closeErr
}

// remoteStream collects the tracks the peer publishes. It grows as OnTrack
// fires; the session receives it once, on the first track.
type remoteStream struct {
	mu     sync.Mutex
	tracks []*remoteTrack
}

func (r *remoteStream) add(t *remoteTrack) {
	r.mu.Lock()
	r.tracks = append(r.tracks, t)
	r.mu.Unlock()
}

// Tracks implements session.MediaStream.
func (r *remoteStream) Tracks() []session.Track {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.Track, len(r.tracks))
	for i, t := range r.tracks {
		out[i] = t
	}
	return out
}

// Close stops the readers.
func (r *remoteStream) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tracks {
		t.Stop()
	}
}

// remoteTrack wraps an inbound track. Mute is driven by the sender, so
// SetEnabled is a no-op here.
type remoteTrack struct {
	kind     session.TrackKind
	stop     chan struct{}
	stopOnce sync.Once
}

func newRemoteTrack(tr *webrtc.TrackRemote) *remoteTrack {
	kind := session.TrackAudio
	if tr.Kind() == webrtc.RTPCodecTypeVideo {
		kind = session.TrackVideo
	}
	return &remoteTrack{kind: kind, stop: make(chan struct{})}
}

// read drains RTP to keep the transport flowing; the native client has no
// renderer for it.
func (t *remoteTrack) read(tr *webrtc.TrackRemote) {
	for {
		select {
		case <-t.stop:
			return
		default:
		}
		if _, _, err := tr.ReadRTP(); err != nil {
			return
		}
	}
}

func (t *remoteTrack) Kind() session.TrackKind { return t.kind }
func (t *remoteTrack) Enabled() bool           { return true }
func (t *remoteTrack) SetEnabled(bool)         {}

func (t *remoteTrack) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
}
