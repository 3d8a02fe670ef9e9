package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeTrack struct {
	kind TrackKind

	mu      sync.Mutex
	enabled bool
	stopped bool
}

func (t *fakeTrack) Kind() TrackKind { return t.kind }

func (t *fakeTrack) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *fakeTrack) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

func (t *fakeTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTrack) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeStream struct {
	audio *fakeTrack
	video *fakeTrack
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		audio: &fakeTrack{kind: TrackAudio, enabled: true},
		video: &fakeTrack{kind: TrackVideo, enabled: true},
	}
}

func (s *fakeStream) Tracks() []Track { return []Track{s.audio, s.video} }

func (s *fakeStream) Close() {
	s.audio.Stop()
	s.video.Stop()
}

func (s *fakeStream) closed() bool {
	return s.audio.isStopped() && s.video.isStopped()
}

// fakeMedia resolves immediately unless release is set, in which case the
// acquisition blocks until the channel is closed.
type fakeMedia struct {
	stream  *fakeStream
	err     error
	release chan struct{}
}

func (m *fakeMedia) Acquire(ctx context.Context) (MediaStream, error) {
	if m.release != nil {
		<-m.release
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.stream, nil
}

type fakePeer struct {
	mu       sync.Mutex
	signals  []json.RawMessage
	reoffers int
	closed   bool

	onSignal func(payload json.RawMessage)
}

func (p *fakePeer) Signal(payload json.RawMessage) error {
	p.mu.Lock()
	p.signals = append(p.signals, payload)
	handler := p.onSignal
	p.mu.Unlock()

	if handler != nil {
		handler(payload)
	}
	return nil
}

func (p *fakePeer) Reoffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reoffers++
	return nil
}

func (p *fakePeer) reofferCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reoffers
}

func (p *fakePeer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePeer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePeer) received() []json.RawMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]json.RawMessage(nil), p.signals...)
}

type fakeFactory struct {
	mu   sync.Mutex
	peer *fakePeer
	emit func(PeerEvent)
	err  error
}

func (f *fakeFactory) NewPeerSession(role Role, local MediaStream, emit func(PeerEvent)) (PeerSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.peer == nil {
		f.peer = &fakePeer{}
	}
	f.emit = emit
	return f.peer, nil
}

func (f *fakeFactory) emitEvent(pe PeerEvent) {
	f.mu.Lock()
	emit := f.emit
	f.mu.Unlock()
	emit(pe)
}

func (f *fakeFactory) created() *fakePeer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peer
}

type fakeTransport struct {
	mu      sync.Mutex
	joined  []string
	left    []string
	relayed []json.RawMessage

	events chan TransportEvent
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{events: make(chan TransportEvent, 16)}
}

func (tr *fakeTransport) Join(roomID string) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.joined = append(tr.joined, roomID)
	return nil
}

func (tr *fakeTransport) Leave(roomID string) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.left = append(tr.left, roomID)
	return nil
}

func (tr *fakeTransport) Relay(roomID string, payload json.RawMessage) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.relayed = append(tr.relayed, payload)
	return nil
}

func (tr *fakeTransport) Events() <-chan TransportEvent { return tr.events }

func (tr *fakeTransport) leaveCount() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.left)
}

func (tr *fakeTransport) relayCount() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.relayed)
}

type harness struct {
	session   *Session
	media     *fakeMedia
	factory   *fakeFactory
	transport *fakeTransport
}

func newHarness(t *testing.T, role Role, media *fakeMedia) *harness {
	t.Helper()

	if media == nil {
		media = &fakeMedia{stream: newFakeStream()}
	}

	h := &harness{
		media:     media,
		factory:   &fakeFactory{},
		transport: newFakeTransport(),
	}
	h.session = New("appt-42", role, h.media, h.factory, h.transport, zaptest.NewLogger(t))

	return h
}

func waitState(t *testing.T, s *Session, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.Status().State == want
	}, 2*time.Second, 5*time.Millisecond, "waiting for state %s", want)
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not shut down")
	}
}

func TestSessionReachesConnected(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	h.session.Start(context.Background())

	waitState(t, h.session, StateNegotiating)
	require.NotNil(t, h.factory.created())
	assert.Equal(t, []string{"appt-42"}, h.transport.joined)

	h.factory.emitEvent(PeerEvent{Kind: PeerConnected})

	waitState(t, h.session, StateConnected)
	status := h.session.Status()
	assert.True(t, status.AudioEnabled)
	assert.True(t, status.VideoEnabled)
	assert.Equal(t, RoleInitiator, status.Role)
}

func TestSessionRemoteStreamConnects(t *testing.T) {
	h := newHarness(t, RoleReceiver, nil)
	h.session.Start(context.Background())

	waitState(t, h.session, StateNegotiating)
	h.factory.emitEvent(PeerEvent{Kind: PeerStream, Stream: newFakeStream()})

	waitState(t, h.session, StateConnected)
}

func TestSessionOutboundSignalsRelayed(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)

	offer := json.RawMessage(`{"type":"offer"}`)
	h.factory.emitEvent(PeerEvent{Kind: PeerSignal, Payload: offer})

	require.Eventually(t, func() bool {
		return h.transport.relayCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSessionInboundSignalsReachPeer(t *testing.T) {
	h := newHarness(t, RoleReceiver, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)

	h.transport.events <- TransportEvent{Kind: TransportSignal, Payload: json.RawMessage(`{"type":"offer"}`)}

	require.Eventually(t, func() bool {
		return len(h.factory.created().received()) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSessionBuffersSignalsUntilPeerExists(t *testing.T) {
	media := &fakeMedia{stream: newFakeStream(), release: make(chan struct{})}
	h := newHarness(t, RoleReceiver, media)
	h.session.Start(context.Background())

	waitState(t, h.session, StateAcquiringMedia)

	// The remote offer lands while the media prompt is still open.
	h.transport.events <- TransportEvent{Kind: TransportSignal, Payload: json.RawMessage(`{"type":"offer"}`)}
	h.transport.events <- TransportEvent{Kind: TransportSignal, Payload: json.RawMessage(`{"candidate":true}`)}
	time.Sleep(50 * time.Millisecond)

	close(media.release)

	waitState(t, h.session, StateNegotiating)
	require.Eventually(t, func() bool {
		return len(h.factory.created().received()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	got := h.factory.created().received()
	assert.JSONEq(t, `{"type":"offer"}`, string(got[0]))
	assert.JSONEq(t, `{"candidate":true}`, string(got[1]))
}

func TestSessionInitiatorReoffersWhenPeerJoinsLate(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)

	// The receiver arrives after the opening offer was already relayed.
	h.transport.events <- TransportEvent{Kind: TransportPeerJoined, ParticipantID: "peer"}

	require.Eventually(t, func() bool {
		return h.factory.created().reofferCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StateNegotiating, h.session.Status().State)
}

func TestSessionReceiverDoesNotReoffer(t *testing.T) {
	h := newHarness(t, RoleReceiver, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)

	h.transport.events <- TransportEvent{Kind: TransportPeerJoined, ParticipantID: "peer"}
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, h.factory.created().reofferCount())
	assert.Equal(t, StateNegotiating, h.session.Status().State)
}

func TestSessionNoReofferOnceConnected(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)
	h.factory.emitEvent(PeerEvent{Kind: PeerConnected})
	waitState(t, h.session, StateConnected)

	h.transport.events <- TransportEvent{Kind: TransportPeerJoined, ParticipantID: "peer"}
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, h.factory.created().reofferCount())
	assert.Equal(t, StateConnected, h.session.Status().State)
}

func TestSessionEndCallIdempotent(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)

	h.session.EndCall()
	h.session.EndCall()
	h.session.EndCall()

	waitDone(t, h.session)
	assert.Equal(t, StateEnded, h.session.Status().State)
	assert.True(t, h.media.stream.closed())
	assert.True(t, h.factory.created().isClosed())
	assert.Equal(t, 1, h.transport.leaveCount())

	status := h.session.Status()
	assert.False(t, status.AudioEnabled)
	assert.False(t, status.VideoEnabled)
}

func TestSessionEndCallDuringMediaPromptReleasesLateStream(t *testing.T) {
	media := &fakeMedia{stream: newFakeStream(), release: make(chan struct{})}
	h := newHarness(t, RoleInitiator, media)
	h.session.Start(context.Background())

	waitState(t, h.session, StateAcquiringMedia)
	h.session.EndCall()

	waitState(t, h.session, StateEnded)
	select {
	case <-h.session.Done():
		t.Fatal("session shut down with the media request still pending")
	case <-time.After(50 * time.Millisecond):
	}

	// The user grants the prompt after the call already ended.
	close(media.release)

	waitDone(t, h.session)
	assert.True(t, media.stream.closed())
	assert.Nil(t, h.factory.created())
	assert.Equal(t, 0, h.transport.leaveCount())
}

func TestSessionContextCancelEndsCall(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	ctx, cancel := context.WithCancel(context.Background())
	h.session.Start(ctx)
	waitState(t, h.session, StateNegotiating)

	cancel()

	waitDone(t, h.session)
	assert.Equal(t, StateEnded, h.session.Status().State)
}

func TestSessionMediaFailure(t *testing.T) {
	h := newHarness(t, RoleInitiator, &fakeMedia{err: errors.New("permission denied")})
	h.session.Start(context.Background())

	waitDone(t, h.session)

	status := h.session.Status()
	assert.Equal(t, StateFailed, status.State)
	require.ErrorIs(t, status.Reason, ErrMediaAccess)
	assert.ErrorContains(t, status.Reason, "permission denied")

	// Negotiation never started.
	assert.Nil(t, h.factory.created())
	assert.Empty(t, h.transport.joined)
}

func TestSessionPeerErrorFails(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)

	h.factory.emitEvent(PeerEvent{Kind: PeerError, Err: errors.New("ice failed")})

	waitDone(t, h.session)
	status := h.session.Status()
	assert.Equal(t, StateFailed, status.State)
	require.ErrorIs(t, status.Reason, ErrSignalingFailed)
	assert.True(t, h.media.stream.closed())
	assert.Equal(t, 1, h.transport.leaveCount())
}

func TestSessionPeerLeftEndsActiveCall(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)
	h.factory.emitEvent(PeerEvent{Kind: PeerConnected})
	waitState(t, h.session, StateConnected)

	h.transport.events <- TransportEvent{Kind: TransportPeerLeft, ParticipantID: "peer"}

	waitDone(t, h.session)
	assert.Equal(t, StateEnded, h.session.Status().State)
	assert.Equal(t, 1, h.transport.leaveCount())
}

func TestSessionTransportClosedDuringNegotiationFails(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)

	close(h.transport.events)

	waitDone(t, h.session)
	status := h.session.Status()
	assert.Equal(t, StateFailed, status.State)
	require.ErrorIs(t, status.Reason, ErrTransportClosed)
}

func TestSessionTransportClosedWhileConnectedEnds(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)
	h.factory.emitEvent(PeerEvent{Kind: PeerConnected})
	waitState(t, h.session, StateConnected)

	close(h.transport.events)

	waitDone(t, h.session)
	assert.Equal(t, StateEnded, h.session.Status().State)
	// No leave on a dead transport.
	assert.Equal(t, 0, h.transport.leaveCount())
}

func TestSessionToggleAudio(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)

	h.session.ToggleAudio()
	require.Eventually(t, func() bool {
		return !h.session.Status().AudioEnabled
	}, 2*time.Second, 5*time.Millisecond)
	assert.False(t, h.media.stream.audio.Enabled())
	assert.True(t, h.session.Status().VideoEnabled)

	// A second toggle restores the original flag.
	h.session.ToggleAudio()
	require.Eventually(t, func() bool {
		return h.session.Status().AudioEnabled
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, h.media.stream.audio.Enabled())
}

func TestSessionToggleVideo(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)

	h.session.ToggleVideo()
	require.Eventually(t, func() bool {
		return !h.session.Status().VideoEnabled
	}, 2*time.Second, 5*time.Millisecond)
	assert.False(t, h.media.stream.video.Enabled())
	assert.True(t, h.session.Status().AudioEnabled)
}

func TestSessionToggleBeforeMediaIsNoop(t *testing.T) {
	media := &fakeMedia{stream: newFakeStream(), release: make(chan struct{})}
	h := newHarness(t, RoleInitiator, media)
	h.session.Start(context.Background())
	waitState(t, h.session, StateAcquiringMedia)

	h.session.ToggleAudio()
	h.session.ToggleVideo()
	time.Sleep(50 * time.Millisecond)

	close(media.release)
	waitState(t, h.session, StateNegotiating)

	status := h.session.Status()
	assert.True(t, status.AudioEnabled)
	assert.True(t, status.VideoEnabled)
}

func TestSessionDiscardsSignalsAfterEnd(t *testing.T) {
	h := newHarness(t, RoleInitiator, nil)
	h.session.Start(context.Background())
	waitState(t, h.session, StateNegotiating)

	peer := h.factory.created()
	h.session.EndCall()
	waitDone(t, h.session)

	h.transport.events <- TransportEvent{Kind: TransportSignal, Payload: json.RawMessage(`{"type":"answer"}`)}
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, peer.received())
	assert.Equal(t, StateEnded, h.session.Status().State)
}
