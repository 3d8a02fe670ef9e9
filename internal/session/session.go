package session

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Session orchestrates one call attempt for one participant: it acquires
// local media, constructs a peer session with the externally assigned role,
// joins the room and exchanges signal envelopes through the hub until the
// peer session reports connected.
//
// All state transitions happen on a single dispatcher goroutine consuming
// tagged events, mirroring the browser client's single-threaded event loop.
// The local media stream and the peer session handle are exclusively owned
// by this instance; a new call constructs a fresh Session.
type Session struct {
	roomID    string
	role      Role
	media     MediaCapability
	peers     PeerFactory
	transport Transport
	logger    *zap.Logger

	events chan event
	done   chan struct{}

	mu     sync.RWMutex
	status Status

	// Owned by the dispatcher goroutine.
	local          MediaStream
	remote         MediaStream
	peer           PeerSession
	joined         bool
	mediaPending   bool
	pendingSignals []json.RawMessage
}

// New constructs a session for one call attempt. The role is assigned by
// the booking flow and fixed for the session's lifetime.
func New(roomID string, role Role, media MediaCapability, peers PeerFactory, transport Transport, logger *zap.Logger) *Session {
	return &Session{
		roomID:    roomID,
		role:      role,
		media:     media,
		peers:     peers,
		transport: transport,
		logger:    logger,
		events:    make(chan event, 32),
		done:      make(chan struct{}),
		status:    Status{State: StateIdle, Role: role},
	}
}

// Start launches the dispatcher and issues the media request. Cancelling
// the context is equivalent to EndCall.
func (s *Session) Start(ctx context.Context) {
	go s.forwardTransport()
	go s.run(ctx)
	s.post(event{kind: evStart})
}

// Status returns a snapshot of the session state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Done is closed once the session has reached a terminal state and every
// pending resource, including a late-resolving media request, is released.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// ToggleAudio flips the enabled flag of the local audio tracks in place.
// No renegotiation happens; the remote side observes a muted track. No-op
// before the local stream exists.
func (s *Session) ToggleAudio() {
	s.post(event{kind: evToggleAudio})
}

// ToggleVideo is ToggleAudio for the video tracks.
func (s *Session) ToggleVideo() {
	s.post(event{kind: evToggleVideo})
}

// EndCall tears the session down from any non-terminal state: local media
// is stopped, the peer session destroyed and the hub notified via leave.
// Safe to call any number of times. If the media request resolves after
// EndCall, the resulting stream is released rather than left open.
func (s *Session) EndCall() {
	s.post(event{kind: evEnd})
}

// post delivers an event to the dispatcher, dropping it once the session
// has fully shut down.
func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Session) forwardTransport() {
	for te := range s.transport.Events() {
		switch te.Kind {
		case TransportSignal:
			s.post(event{kind: evSignalIn, payload: te.Payload})
		case TransportPeerJoined:
			s.logger.Debug("peer joined room",
				zap.String("room", s.roomID),
				zap.String("participant", te.ParticipantID))
			s.post(event{kind: evPeerJoined})
		case TransportPeerLeft:
			s.post(event{kind: evPeerLeft})
		case TransportClosed:
			s.post(event{kind: evTransportClosed, err: te.Err})
		}
	}
	s.post(event{kind: evTransportClosed})
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	ctxDone := ctx.Done()
	for {
		select {
		case ev := <-s.events:
			s.handle(ctx, ev)
		case <-ctxDone:
			ctxDone = nil
			s.handle(ctx, event{kind: evEnd})
		}

		if s.state().Terminal() && !s.mediaPending {
			return
		}
	}
}

func (s *Session) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case evStart:
		if s.state() != StateIdle {
			return
		}
		s.setState(StateAcquiringMedia)
		s.mediaPending = true
		go s.acquireMedia(ctx)

	case evMediaReady:
		s.mediaPending = false
		if s.state().Terminal() {
			// EndCall won the race; release the stream instead of
			// leaving it open.
			ev.stream.Close()
			return
		}
		s.startNegotiation(ev.stream)

	case evMediaFailed:
		s.mediaPending = false
		if s.state().Terminal() {
			return
		}
		s.fail(WrapError("acquire media", ErrMediaAccess, ev.err.Error()))

	case evPeer:
		s.handlePeerEvent(ev.peer)

	case evSignalIn:
		if s.state().Terminal() {
			// Discarded after Ended.
			return
		}
		if s.peer == nil {
			// The envelope arrived while media was still being acquired;
			// feed it to the peer session as soon as one exists.
			s.pendingSignals = append(s.pendingSignals, ev.payload)
			return
		}
		if err := s.peer.Signal(ev.payload); err != nil {
			s.logger.Warn("signal rejected by peer session", zap.Error(err))
		}

	case evPeerJoined:
		// A peer that joins after the opening offer never saw it: the hub
		// drops relays into an empty room. The initiator starts over.
		if s.state() != StateNegotiating || s.role != RoleInitiator || s.peer == nil {
			return
		}
		if err := s.peer.Reoffer(); err != nil {
			s.fail(WrapError("reoffer", ErrSignalingFailed, err.Error()))
		}

	case evPeerLeft:
		if s.state().Terminal() {
			return
		}
		if s.state() == StateNegotiating || s.state() == StateConnected {
			s.logger.Info("remote participant disconnected", zap.String("room", s.roomID))
			s.teardown(true)
			s.setState(StateEnded)
		}

	case evTransportClosed:
		if s.state().Terminal() {
			return
		}
		// Descriptors are not replayable after the fact, so no automatic
		// resumption: a lost transport ends an active call and fails an
		// unfinished negotiation.
		if s.state() == StateConnected {
			s.teardown(false)
			s.setState(StateEnded)
			return
		}
		s.teardown(false)
		s.setFailed(NewError("signaling transport", ErrTransportClosed))

	case evToggleAudio:
		s.toggleTracks(TrackAudio)

	case evToggleVideo:
		s.toggleTracks(TrackVideo)

	case evEnd:
		if s.state().Terminal() {
			return
		}
		s.teardown(true)
		s.setState(StateEnded)
	}
}

func (s *Session) acquireMedia(ctx context.Context) {
	stream, err := s.media.Acquire(ctx)
	if err != nil {
		s.post(event{kind: evMediaFailed, err: err})
		return
	}
	s.post(event{kind: evMediaReady, stream: stream})
}

// startNegotiation runs on the media-granted transition: create the peer
// session, join the room, flush any signals that arrived early.
func (s *Session) startNegotiation(stream MediaStream) {
	s.local = stream
	s.syncTrackFlags()

	peer, err := s.peers.NewPeerSession(s.role, stream, s.emitPeerEvent)
	if err != nil {
		s.fail(WrapError("create peer session", ErrSignalingFailed, err.Error()))
		return
	}
	s.peer = peer

	if err := s.transport.Join(s.roomID); err != nil {
		s.fail(WrapError("join room", ErrTransportClosed, err.Error()))
		return
	}
	s.joined = true
	s.setState(StateNegotiating)

	for _, payload := range s.pendingSignals {
		if err := s.peer.Signal(payload); err != nil {
			s.logger.Warn("buffered signal rejected", zap.Error(err))
		}
	}
	s.pendingSignals = nil
}

func (s *Session) handlePeerEvent(pe PeerEvent) {
	if s.state().Terminal() {
		return
	}

	switch pe.Kind {
	case PeerSignal:
		// Outbound descriptors go to the hub; relay is best-effort and a
		// vanished peer is routine.
		if err := s.transport.Relay(s.roomID, pe.Payload); err != nil {
			s.logger.Warn("relay failed", zap.Error(err))
		}

	case PeerStream:
		s.remote = pe.Stream
		if s.state() == StateNegotiating {
			s.setState(StateConnected)
		}

	case PeerConnected:
		if s.state() == StateNegotiating {
			s.setState(StateConnected)
		}

	case PeerError:
		details := ""
		if pe.Err != nil {
			details = pe.Err.Error()
		}
		s.fail(WrapError("peer session", ErrSignalingFailed, details))
	}
}

func (s *Session) emitPeerEvent(pe PeerEvent) {
	s.post(event{kind: evPeer, peer: pe})
}

// teardown releases everything the session owns. Runs at most once per
// session since every caller transitions to a terminal state right after.
func (s *Session) teardown(leaveRoom bool) {
	if s.local != nil {
		s.local.Close()
		s.local = nil
	}
	if s.remote != nil {
		s.remote.Close()
		s.remote = nil
	}
	if s.peer != nil {
		if err := s.peer.Close(); err != nil {
			s.logger.Debug("peer session close", zap.Error(err))
		}
		s.peer = nil
	}
	if s.joined && leaveRoom {
		if err := s.transport.Leave(s.roomID); err != nil {
			s.logger.Debug("leave room", zap.Error(err))
		}
	}
	s.joined = false
	s.pendingSignals = nil
}

func (s *Session) fail(err error) {
	s.teardown(true)
	s.setFailed(err)
}

func (s *Session) toggleTracks(kind TrackKind) {
	if s.local == nil {
		return
	}
	for _, t := range s.local.Tracks() {
		if t.Kind() == kind {
			t.SetEnabled(!t.Enabled())
		}
	}
	s.syncTrackFlags()
}

// syncTrackFlags mirrors the local track flags into the status snapshot.
func (s *Session) syncTrackFlags() {
	audio, video := false, false
	if s.local != nil {
		for _, t := range s.local.Tracks() {
			switch t.Kind() {
			case TrackAudio:
				audio = audio || t.Enabled()
			case TrackVideo:
				video = video || t.Enabled()
			}
		}
	}

	s.mu.Lock()
	s.status.AudioEnabled = audio
	s.status.VideoEnabled = video
	s.mu.Unlock()
}

func (s *Session) state() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.State
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	prev := s.status.State
	s.status.State = state
	if state == StateEnded || state == StateIdle {
		s.status.AudioEnabled = false
		s.status.VideoEnabled = false
	}
	s.mu.Unlock()

	s.logger.Debug("session state",
		zap.String("room", s.roomID),
		zap.Stringer("from", prev),
		zap.Stringer("to", state))
}

func (s *Session) setFailed(err error) {
	s.mu.Lock()
	prev := s.status.State
	s.status.State = StateFailed
	s.status.Reason = err
	s.status.AudioEnabled = false
	s.status.VideoEnabled = false
	s.mu.Unlock()

	s.logger.Warn("session failed",
		zap.String("room", s.roomID),
		zap.Stringer("from", prev),
		zap.Error(err))
}
