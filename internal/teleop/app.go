package teleop

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	frameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Bold(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// frameStyle shifts the canvas by its border and horizontal padding;
// pointer cells move back by the same amount before mapping into the
// arena.
const (
	frameOffsetX = 2
	frameOffsetY = 1
)

type tickMsg time.Time

// App adapts the session to bubbletea: key and mouse messages queue
// input events, and a timer at the capture rate drives Session.Tick so
// the poll-once-per-tick contract holds.
type App struct {
	session  *Session
	interval time.Duration
	pending  []Event
	scale    float64
	err      error
}

// NewApp builds the TUI shell. The app is also the session's input
// Source, so bind the session after constructing it with this app.
func NewApp(captureFPS int) *App {
	return &App{
		interval: time.Second / time.Duration(captureFPS),
		scale:    0.5,
	}
}

func (a *App) Bind(session *Session) { a.session = session }

// Poll implements Source: it drains the events queued since the last
// capture tick.
func (a *App) Poll() []Event {
	events := a.pending
	a.pending = nil
	return events
}

func (a *App) Init() tea.Cmd {
	return a.tick()
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(a.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.pending = append(a.pending, Event{Kind: EventQuit})
		case "r":
			a.pending = append(a.pending, Event{Kind: EventReset})
		case "s":
			a.pending = append(a.pending, Event{Kind: EventSave})
		case "up":
			a.pending = append(a.pending, Event{Kind: EventDirection, Lane: 0})
		case "down":
			a.pending = append(a.pending, Event{Kind: EventDirection, Lane: 1})
		case "left":
			a.pending = append(a.pending, Event{Kind: EventDirection, Lane: 2})
		case "right":
			a.pending = append(a.pending, Event{Kind: EventDirection, Lane: 3})
		}
	case tea.MouseMsg:
		// Terminal cells are braille cells: cellWidth x cellHeight
		// sub-pixels each, which the scale then maps to arena units.
		a.pending = append(a.pending, Event{
			Kind: EventPoint,
			X:    float64((msg.X-frameOffsetX)*cellWidth) / a.scale,
			Y:    float64((msg.Y-frameOffsetY)*cellHeight) / a.scale,
		})
	case tickMsg:
		if err := a.session.Tick(); err != nil {
			a.err = err
			return a, tea.Quit
		}
		if a.session.Quit() {
			return a, tea.Quit
		}
		return a, a.tick()
	}
	return a, nil
}

func (a *App) View() string {
	info := a.session.Info()
	w := int(info.Arena.Width * a.scale)
	h := int(info.Arena.Height * a.scale)
	if w == 0 || h == 0 {
		return "starting..."
	}

	canvas := NewCanvas((w+cellWidth-1)/cellWidth, (h+cellHeight-1)/cellHeight)
	canvas.DrawLine(0, 0, w-1, 0)
	canvas.DrawLine(w-1, 0, w-1, h-1)
	canvas.DrawLine(w-1, h-1, 0, h-1)
	canvas.DrawLine(0, h-1, 0, 0)
	for _, o := range info.Obstacles {
		canvas.DrawCircle(
			int(o.Position.X*a.scale),
			int(o.Position.Y*a.scale),
			int(o.Radius*a.scale),
		)
	}
	canvas.DrawCircle(
		int(info.Agent.Position.X*a.scale),
		int(info.Agent.Position.Y*a.scale),
		int(info.Agent.Radius*a.scale),
	)

	status := fmt.Sprintf("step %d  reward %.1f", info.Steps, a.session.Score())
	if a.session.Armed() {
		status = fmt.Sprintf("recording %d/%d  %s",
			a.session.Recorded(), a.session.recorder.Length(), status)
	} else if idx := a.session.LastSaved(); idx >= 0 {
		status = fmt.Sprintf("saved capture %d  %s", idx, status)
	}

	return frameStyle.Render(canvas.String()) + "\n" +
		statusStyle.Render(status) + "\n" +
		helpStyle.Render("[arrows] move  [s] record  [r] reset  [q] quit")
}

// Err reports a session failure that ended the program.
func (a *App) Err() error { return a.err }
