package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohan4324/Furever-App-sub000/internal/session"
)

// TickMsg drives the periodic status refresh.
type TickMsg time.Time

// CallModel renders the live state of one consultation session and feeds
// key presses back into it. It only reads status snapshots; the session
// dispatcher stays the sole owner of the state machine.
type CallModel struct {
	sess    *session.Session
	roomID  string
	spinner spinner.Model
	started time.Time
}

// NewCallModel builds the live call view.
func NewCallModel(sess *session.Session, roomID string) *CallModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = SpinnerStyle

	return &CallModel{
		sess:    sess,
		roomID:  roomID,
		spinner: s,
		started: time.Now(),
	}
}

func (m *CallModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *CallModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			m.sess.ToggleAudio()
		case "v":
			m.sess.ToggleVideo()
		case "e", "q", "ctrl+c":
			m.sess.EndCall()
		}
		return m, nil

	case TickMsg:
		if m.sess.Status().State.Terminal() {
			return m, tea.Quit
		}
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *CallModel) View() string {
	status := m.sess.Status()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n%s Consultation %s\n\n", IconCall, BoldStyle.Render(m.roomID)))

	switch status.State {
	case session.StateAcquiringMedia:
		b.WriteString(fmt.Sprintf("%s Preparing camera and microphone...\n", m.spinner.View()))
	case session.StateNegotiating:
		b.WriteString(fmt.Sprintf("%s Waiting for the other participant...\n", m.spinner.View()))
	case session.StateConnected:
		elapsed := time.Since(m.started).Round(time.Second)
		b.WriteString(fmt.Sprintf("%s In call %s\n",
			SuccessStyle.Render(IconSuccess),
			MutedStyle.Render(elapsed.String())))
	default:
		b.WriteString(fmt.Sprintf("%s\n", status.State))
	}

	b.WriteString("\n")
	b.WriteString(trackIndicator(IconMicOn, IconMicOff, "mic", status.AudioEnabled))
	b.WriteString("  ")
	b.WriteString(trackIndicator(IconCamOn, IconCamOff, "camera", status.VideoEnabled))
	b.WriteString("\n\n")
	b.WriteString(MutedStyle.Render("a: toggle mic · v: toggle camera · e: end call"))
	b.WriteString("\n")

	return b.String()
}

func trackIndicator(on, off, label string, enabled bool) string {
	if enabled {
		return fmt.Sprintf("%s %s", on, label)
	}
	return fmt.Sprintf("%s %s", off, MutedStyle.Render(label+" off"))
}

// RunCallUI blocks until the session reaches a terminal state or the user
// ends the call.
func RunCallUI(sess *session.Session, roomID string) error {
	program := tea.NewProgram(NewCallModel(sess, roomID))
	_, err := program.Run()
	return err
}
