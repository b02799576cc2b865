package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/layout"
	"github.com/san-kum/canvasflow/internal/physics"
	"github.com/san-kum/canvasflow/internal/sim"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	statsWidth      = 44
	historyCapacity = 300
	frameDt         = 1.0 / 60

	// dragStep is how far one key press moves a dragged node, in sub-pixels.
	dragStep = 4
	// keyRepeatHz converts the last key move into a release velocity.
	keyRepeatHz = 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is a live terminal view of a driver in external-tick mode. The host
// node list is kept in step with drags, locks and layouts so that a resync
// would see no changes.
type Model struct {
	d       *sim.Driver
	nodes   []sim.Node
	edges   []dynamo.Edge
	title   string
	layouts *layout.Registry
	names   []string

	canvas *Canvas
	camera *Camera
	theme  Theme
	styles styles

	running  bool
	selected int
	dragging bool
	dragPos  dynamo.Vec3
	lastMove dynamo.Vec3
	layout   string

	energy   []float64
	overlaps int
	awake    bool
}

// NewModel builds a view over a driver that has already been synced with
// nodes.
func NewModel(d *sim.Driver, nodes []sim.Node, title string) Model {
	reg := layout.NewRegistry()
	m := Model{
		d:        d,
		nodes:    append([]sim.Node(nil), nodes...),
		edges:    d.Edges(),
		title:    title,
		layouts:  reg,
		names:    reg.Names(),
		canvas:   NewCanvas(defaultCols, defaultRows),
		camera:   NewCamera(),
		theme:    Themes[0],
		styles:   newStyles(Themes[0]),
		running:  true,
		selected: -1,
		energy:   make([]float64, 0, historyCapacity),
		awake:    d.Awake(),
	}
	w, h := m.canvas.Pixels()
	d.Inspect(func(f dynamo.Frame) { m.camera.Snap(f.Bodies, w, h) })
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cols := max(20, msg.Width-statsWidth-8)
		rows := max(8, msg.Height-3)
		m.canvas = NewCanvas(cols, rows)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "tab":
			m.selectNext()
		case "left", "h":
			m.move(-1, 0)
		case "right", "l":
			m.move(1, 0)
		case "up", "k":
			m.move(0, -1)
		case "down", "j":
			m.move(0, 1)
		case "enter":
			m.release()
		case "c":
			m.cycleLayout()
		case "x":
			m.toggleLock()
		case "f":
			m.fit()
		case "+", "=":
			m.camera.ZoomBy(1.25)
		case "-", "_":
			m.camera.ZoomBy(0.8)
		case "t":
			m.theme = m.theme.next()
			m.styles = newStyles(m.theme)
		}
	case TickMsg:
		m.step()
		return m, tick()
	}
	return m, nil
}

// step advances the engine by one display frame and samples it.
func (m *Model) step() {
	if m.running {
		m.awake = m.d.Tick(frameDt)
	} else {
		m.awake = m.d.Awake()
	}
	m.camera.Update(frameDt)

	m.d.Inspect(func(f dynamo.Frame) {
		m.overlaps = physics.CountOverlaps(f.Bodies, 0)
		if !m.running {
			return
		}
		m.energy = append(m.energy, physics.KineticEnergy(f.Bodies))
		if len(m.energy) > historyCapacity {
			m.energy = m.energy[1:]
		}
	})
}

func (m *Model) selectedID() (string, bool) {
	if m.selected < 0 || m.selected >= len(m.nodes) {
		return "", false
	}
	return m.nodes[m.selected].ID, true
}

func (m *Model) selectNext() {
	if len(m.nodes) == 0 {
		return
	}
	if m.dragging {
		m.release()
	}
	m.selected = (m.selected + 1) % len(m.nodes)
}

// move drags the selected node one step, starting the drag on the first move.
func (m *Model) move(dx, dy float64) {
	id, ok := m.selectedID()
	if !ok {
		return
	}
	if !m.dragging {
		b, ok := m.d.Body(id)
		if !ok || !m.d.StartDrag(id) {
			return
		}
		m.dragging = true
		m.dragPos = b.Position
	}
	step := dragStep / m.camera.Zoom
	m.lastMove = dynamo.Vec3{X: dx * step, Y: dy * step}
	m.dragPos = m.dragPos.Add(m.lastMove)
	m.d.Drag(id, m.dragPos)
}

// release ends the drag with a fling along the last move.
func (m *Model) release() {
	id, ok := m.selectedID()
	if !ok || !m.dragging {
		return
	}
	fling := m.lastMove.Scale(keyRepeatHz)
	m.d.EndDrag(id, &fling)
	m.nodes[m.selected].Position = m.dragPos
	m.dragging = false
	m.lastMove = dynamo.Vec3{}
}

func (m *Model) toggleLock() {
	id, ok := m.selectedID()
	if !ok {
		return
	}
	if m.dragging {
		m.release()
	}
	locked := !m.nodes[m.selected].Locked
	if m.d.Lock(id, locked) {
		m.nodes[m.selected].Locked = locked
	}
}

func (m *Model) cycleLayout() {
	if len(m.names) == 0 {
		return
	}
	if m.dragging {
		m.release()
	}
	next := m.names[0]
	for i, n := range m.names {
		if n == m.layout {
			next = m.names[(i+1)%len(m.names)]
		}
	}
	l, err := m.layouts.Get(next, nil)
	if err != nil {
		return
	}
	res := layout.Apply(m.d, m.nodes, l)
	for i := range m.nodes {
		if p, ok := res.Targets[m.nodes[i].ID]; ok {
			m.nodes[i].Position = p
		}
	}
	m.layout = next
}

// fit eases the camera onto the current layout targets.
func (m *Model) fit() {
	w, h := m.canvas.Pixels()
	m.d.Inspect(func(f dynamo.Frame) {
		targets := make(dynamo.Bodies, len(f.Bodies))
		for id, b := range f.Bodies {
			targets[id] = &dynamo.Body{Position: b.Target, Width: b.Width, Height: b.Height}
		}
		m.camera.FitTo(targets, w, h)
	})
}

func (m *Model) draw() {
	m.canvas.Clear()
	w, h := m.canvas.Pixels()
	sel, _ := m.selectedID()

	m.d.Inspect(func(f dynamo.Frame) {
		for _, e := range m.edges {
			a, okA := f.Bodies[e.Source]
			b, okB := f.Bodies[e.Target]
			if !okA || !okB {
				continue
			}
			x0, y0 := m.camera.Project(a.Position, w, h)
			x1, y1 := m.camera.Project(b.Position, w, h)
			m.canvas.DrawLine(x0, y0, x1, y1)
		}

		for id, b := range f.Bodies {
			half := dynamo.Vec3{X: b.Width / 2, Y: b.Height / 2}
			x0, y0 := m.camera.Project(b.Position.Sub(half), w, h)
			x1, y1 := m.camera.Project(b.Position.Add(half), w, h)
			m.canvas.DrawRect(x0, y0, x1, y1)
			if b.Locked && x1-x0 > 4 && y1-y0 > 4 {
				m.canvas.DrawRect(x0+2, y0+2, x1-2, y1-2)
			}
			if id == sel {
				m.canvas.DrawLine(x0, y0, x1, y1)
				m.canvas.DrawLine(x0, y1, x1, y0)
			}
		}
	})
}

func (m Model) View() string {
	m.draw()
	st := m.styles
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")

	switch {
	case !m.running:
		s.WriteString(st.label.Render("PAUSED") + "\n\n")
	case m.awake:
		s.WriteString(st.awake.Render("MOVING") + "\n\n")
	default:
		s.WriteString(st.asleep.Render("AT REST") + "\n\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	energy := 0.0
	if len(m.energy) > 0 {
		energy = m.energy[len(m.energy)-1]
	}
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.d.Clock()))
	row("Nodes", fmt.Sprintf("%d", len(m.nodes)))
	row("Edges", fmt.Sprintf("%d", len(m.edges)))
	row("Energy", fmt.Sprintf("%.1f", energy))
	row("Overlaps", fmt.Sprintf("%d", m.overlaps))
	row("Layout", orDash(m.layout))
	row("Zoom", fmt.Sprintf("%.3f", m.camera.Zoom))

	s.WriteString("\nSELECTED\n")
	if id, ok := m.selectedID(); ok {
		state := ""
		if m.dragging {
			state = " (dragging)"
		} else if m.nodes[m.selected].Locked {
			state = " (locked)"
		}
		s.WriteString(st.selected.Render("> "+id+state) + "\n")
	} else {
		s.WriteString(st.label.Render("  (none)") + "\n")
	}

	s.WriteString(st.help.Render("\n─────────────────────\nTAB:Select ←↑↓→/hjkl:Drag\nENTER:Release X:Lock C:Layout\nF:Fit +/-:Zoom T:Theme\nSP:Pause Q:Quit"))
	statsView := st.stats.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Run starts the live view on the alternate screen and blocks until quit.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
