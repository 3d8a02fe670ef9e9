package rtc

import (
	"fmt"

	"github.com/pion/webrtc/v4"
	"go.uber.org/zap"

	"github.com/rohan4324/Furever-App-sub000/internal/chat"
	"github.com/rohan4324/Furever-App-sub000/internal/config"
	"github.com/rohan4324/Furever-App-sub000/internal/session"
)

// LocalTrackProvider is the extra surface a media stream must expose for
// the pion-backed peer session to publish its tracks.
type LocalTrackProvider interface {
	LocalTracks() []webrtc.TrackLocal
}

// Factory builds pion-backed peer sessions. It satisfies
// session.PeerFactory, keeping the state machine agnostic to the concrete
// negotiation implementation.
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger

	// OnNotes, when set, receives the in-call notes channel as soon as the
	// data channel exists.
	OnNotes func(*chat.Channel)

	// NoteReceiver handles inbound notes; nil discards them.
	NoteReceiver func(chat.NotePayload)
}

// NewFactory creates a peer session factory using the configured ICE
// servers.
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// NewPeerSession implements session.PeerFactory.
func (f *Factory) NewPeerSession(role session.Role, local session.MediaStream, emit func(session.PeerEvent)) (session.PeerSession, error) {
	provider, ok := local.(LocalTrackProvider)
	if !ok {
		return nil, fmt.Errorf("media stream does not expose webrtc tracks")
	}

	pc, err := newPeerConnection(f.cfg)
	if err != nil {
		return nil, err
	}

	p := &peerSession{
		pc:     pc,
		role:   role,
		emit:   emit,
		logger: f.logger,
	}

	for _, track := range provider.LocalTracks() {
		sender, err := pc.AddTrack(track)
		if err != nil {
			pc.Close()
			return nil, fmt.Errorf("add local track: %w", err)
		}
		go discardRTCP(sender)
	}

	p.setupHandlers()
	f.setupNotes(p)

	if role == session.RoleInitiator {
		if err := p.sendOffer(); err != nil {
			pc.Close()
			return nil, err
		}
	}

	return p, nil
}

func (f *Factory) setupNotes(p *peerSession) {
	wire := func(dc *webrtc.DataChannel) {
		ch := chat.Attach(dc, f.NoteReceiver)
		if f.OnNotes != nil {
			f.OnNotes(ch)
		}
	}

	if p.role == session.RoleInitiator {
		ordered := true
		dc, err := p.pc.CreateDataChannel(chat.Label, &webrtc.DataChannelInit{Ordered: &ordered})
		if err != nil {
			f.logger.Warn("notes channel unavailable", zap.Error(err))
			return
		}
		wire(dc)
		return
	}

	p.pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		if dc.Label() == chat.Label {
			wire(dc)
		}
	})
}

func newPeerConnection(cfg *config.Config) (*webrtc.PeerConnection, error) {
	iceServers := []webrtc.ICEServer{{URLs: cfg.GetSTUNServers()}}

	if turnServers := cfg.GetTURNServers(); turnServers != nil {
		username, password := cfg.GetTURNCredentials()
		iceServers = append(iceServers, webrtc.ICEServer{
			URLs:       turnServers,
			Username:   username,
			Credential: password,
		})
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: iceServers,
	})
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}
	return pc, nil
}

// discardRTCP reads and drops RTCP packets to keep interceptors fed.
func discardRTCP(sender *webrtc.RTPSender) {
	buf := make([]byte, 1500)
	for {
		if _, _, err := sender.Read(buf); err != nil {
			return
		}
	}
}
