package gui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/layout"
	"github.com/san-kum/canvasflow/internal/physics"
	"github.com/san-kum/canvasflow/internal/sim"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
	ColLocked  = rl.NewColor(220, 180, 60, 255)
	ColBox     = rl.NewColor(22, 22, 26, 255)
)

const (
	screenW        = 1280
	screenH        = 720
	gridSpacing    = 100
	maxTelemetry   = 200
	wheelZoomScale = 0.1
)

// App renders a driver running in self-scheduling mode and maps the mouse
// onto drag gestures.
type App struct {
	d     *sim.Driver
	nodes []sim.Node
	edges []dynamo.Edge
	title string
	log   *slog.Logger

	Camera rl.Camera2D
	Font   rl.Font

	layouts *layout.Registry
	names   []string
	layout  int

	// Render cache, refreshed when the driver version changes.
	seen   uint64
	bodies map[string]dynamo.Body
	ids    []string
	awake  bool
	clock  float64

	Telemetry []float64

	dragID string
	grab   dynamo.Vec3
	fling  flingTracker
	hover  string
}

func initWindow(title string) {
	rl.InitWindow(screenW, screenH, title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func NewApp(d *sim.Driver, nodes []sim.Node, title string, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	reg := layout.NewRegistry()
	a := &App{
		d:       d,
		nodes:   append([]sim.Node(nil), nodes...),
		edges:   d.Edges(),
		title:   title,
		log:     log,
		Font:    loadFont(),
		layouts: reg,
		names:   reg.Names(),
		layout:  -1,
		bodies:  make(map[string]dynamo.Body),
		Camera: rl.Camera2D{
			Offset: rl.NewVector2(screenW/2, screenH/2),
			Zoom:   1,
		},
	}
	a.refresh(true)
	a.fit()
	return a
}

// Run opens the window and blocks until it is closed or ctx ends. The driver
// steps on its own goroutine for the lifetime of the window.
func Run(ctx context.Context, d *sim.Driver, nodes []sim.Node, title string, log *slog.Logger) error {
	initWindow("canvasflow :: " + title)
	defer rl.CloseWindow()

	ctx, cancel := context.WithCancel(ctx)
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()

	app := NewApp(d, nodes, title, log)
	app.RunLoop(ctx)

	cancel()
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) RunLoop(ctx context.Context) {
	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if a.Update() {
			return
		}
		a.Draw()
	}
}

// refresh copies the bodies out of the driver when its version moved.
func (a *App) refresh(force bool) {
	v := a.d.Version()
	if !force && v == a.seen {
		a.awake = a.d.Awake()
		return
	}
	a.d.Inspect(func(f dynamo.Frame) {
		a.seen = f.Version
		a.awake = f.Awake
		a.clock = f.Time
		clear(a.bodies)
		for id, b := range f.Bodies {
			a.bodies[id] = *b
		}
		a.ids = f.Bodies.IDs()

		a.Telemetry = append(a.Telemetry, physics.KineticEnergy(f.Bodies))
		if len(a.Telemetry) > maxTelemetry {
			a.Telemetry = a.Telemetry[1:]
		}
	})
}

func (a *App) mouseWorld() dynamo.Vec3 {
	p := rl.GetScreenToWorld2D(rl.GetMousePosition(), a.Camera)
	return dynamo.Vec3{X: float64(p.X), Y: float64(p.Y)}
}

// Update handles input. It reports true when the user asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return true
	}
	a.refresh(false)

	mouse := a.mouseWorld()
	a.hover = ""
	if id, ok := a.hit(mouse); ok {
		a.hover = id
	}

	switch {
	case rl.IsMouseButtonPressed(rl.MouseLeftButton):
		a.beginDrag(mouse)
	case rl.IsMouseButtonDown(rl.MouseLeftButton) && a.dragID != "":
		pos := mouse.Add(a.grab)
		a.d.Drag(a.dragID, pos)
		a.fling.Add(pos, rl.GetTime())
	case rl.IsMouseButtonReleased(rl.MouseLeftButton) && a.dragID != "":
		a.endDrag()
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		a.Camera.Target.X -= delta.X / a.Camera.Zoom
		a.Camera.Target.Y -= delta.Y / a.Camera.Zoom
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.Camera.Offset = rl.GetMousePosition()
		a.Camera.Target = rl.GetScreenToWorld2D(a.Camera.Offset, a.Camera)
		a.Camera.Zoom = max(0.05, a.Camera.Zoom*(1+wheel*wheelZoomScale))
	}

	if rl.IsKeyPressed(rl.KeyL) && a.hover != "" {
		a.toggleLock(a.hover)
	}
	if rl.IsKeyPressed(rl.KeyC) {
		a.cycleLayout()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		a.fit()
	}
	return false
}

func (a *App) hit(p dynamo.Vec3) (string, bool) {
	var id string
	var ok bool
	a.d.Inspect(func(f dynamo.Frame) { id, ok = hitTest(f.Bodies, p) })
	return id, ok
}

func (a *App) beginDrag(mouse dynamo.Vec3) {
	id, ok := a.hit(mouse)
	if !ok {
		return
	}
	b, ok := a.d.Body(id)
	if !ok || !a.d.StartDrag(id) {
		return
	}
	a.dragID = id
	a.grab = b.Position.Sub(mouse)
	a.fling.Reset()
	a.fling.Add(b.Position, rl.GetTime())
}

func (a *App) endDrag() {
	v := a.fling.Velocity()
	a.d.EndDrag(a.dragID, &v)
	if b, ok := a.d.Body(a.dragID); ok {
		a.setNode(a.dragID, func(n *sim.Node) { n.Position = b.Position })
	}
	a.log.Debug("released node", "id", a.dragID, "vx", v.X, "vy", v.Y)
	a.dragID = ""
}

func (a *App) setNode(id string, fn func(n *sim.Node)) {
	for i := range a.nodes {
		if a.nodes[i].ID == id {
			fn(&a.nodes[i])
			return
		}
	}
}

func (a *App) toggleLock(id string) {
	b, ok := a.d.Body(id)
	if !ok {
		return
	}
	if a.d.Lock(id, !b.Locked) {
		a.setNode(id, func(n *sim.Node) { n.Locked = !b.Locked })
	}
}

func (a *App) cycleLayout() {
	if len(a.names) == 0 {
		return
	}
	a.layout = (a.layout + 1) % len(a.names)
	l, err := a.layouts.Get(a.names[a.layout], nil)
	if err != nil {
		a.log.Warn("layout unavailable", "name", a.names[a.layout], "err", err)
		return
	}
	res := layout.Apply(a.d, a.nodes, l)
	for i := range a.nodes {
		if p, ok := res.Targets[a.nodes[i].ID]; ok {
			a.nodes[i].Position = p
		}
	}
	a.log.Info("applied layout", "name", l.Name(), "nodes", len(res.Targets))
}

// fit centres the camera on the current bodies.
func (a *App) fit() {
	a.d.Inspect(func(f dynamo.Frame) {
		if len(f.Bodies) == 0 {
			return
		}
		lo := dynamo.Vec3{X: 1e18, Y: 1e18}
		hi := dynamo.Vec3{X: -1e18, Y: -1e18}
		for _, b := range f.Bodies {
			lo.X = min(lo.X, b.Position.X-b.Width/2)
			lo.Y = min(lo.Y, b.Position.Y-b.Height/2)
			hi.X = max(hi.X, b.Position.X+b.Width/2)
			hi.Y = max(hi.Y, b.Position.Y+b.Height/2)
		}
		zoom := 0.9 * min(screenW/(hi.X-lo.X), screenH/(hi.Y-lo.Y))
		a.Camera.Offset = rl.NewVector2(screenW/2, screenH/2)
		a.Camera.Target = rl.NewVector2(float32((lo.X+hi.X)/2), float32((lo.Y+hi.Y)/2))
		a.Camera.Zoom = float32(min(zoom, 2))
	})
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode2D(a.Camera)
	a.drawGrid()
	a.drawCanvas()
	rl.EndMode2D()

	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) drawGrid() {
	tl := rl.GetScreenToWorld2D(rl.NewVector2(0, 0), a.Camera)
	br := rl.GetScreenToWorld2D(rl.NewVector2(screenW, screenH), a.Camera)
	for x := float32(int(tl.X/gridSpacing)) * gridSpacing; x < br.X; x += gridSpacing {
		rl.DrawLineV(rl.NewVector2(x, tl.Y), rl.NewVector2(x, br.Y), ColGrid)
	}
	for y := float32(int(tl.Y/gridSpacing)) * gridSpacing; y < br.Y; y += gridSpacing {
		rl.DrawLineV(rl.NewVector2(tl.X, y), rl.NewVector2(br.X, y), ColGrid)
	}
}

func (a *App) drawCanvas() {
	for _, e := range a.edges {
		s, okS := a.bodies[e.Source]
		t, okT := a.bodies[e.Target]
		if !okS || !okT {
			continue
		}
		rl.DrawLineEx(
			rl.NewVector2(float32(s.Position.X), float32(s.Position.Y)),
			rl.NewVector2(float32(t.Position.X), float32(t.Position.Y)),
			2, ColTextDim)
	}

	for _, id := range a.ids {
		b := a.bodies[id]
		rect := rl.NewRectangle(
			float32(b.Position.X-b.Width/2), float32(b.Position.Y-b.Height/2),
			float32(b.Width), float32(b.Height))

		outline := ColAccent
		switch {
		case id == a.dragID || id == a.hover:
			outline = ColSelect
		case b.Locked:
			outline = ColLocked
		}
		rl.DrawRectangleRec(rect, ColBox)
		rl.DrawRectangleLinesEx(rect, 2, outline)
		a.drawText(id, int(rect.X)+10, int(rect.Y)+10, 20, ColText)
	}
}

func (a *App) DrawHUD() {
	a.drawText("canvasflow", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.title), 190, 34, 16, ColText)

	a.DrawTelemetry()

	status, col := "AT REST", ColTextDim
	if a.awake {
		status, col = "MOVING", ColSelect
	}
	a.drawText(status, 1150, 30, 16, col)

	layoutName := "-"
	if a.layout >= 0 {
		layoutName = a.names[a.layout]
	}
	a.drawText(fmt.Sprintf("t=%.1fs  nodes=%d  layout=%s", a.clock, len(a.ids), layoutName), 30, 60, 14, ColText)
	a.drawText("[DRAG] MOVE  [RMB] PAN  [WHEEL] ZOOM  [L] LOCK  [C] LAYOUT  [F] FIT  [Q] QUIT", 560, 680, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 680, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 600
	width, height := 400, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("KE: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
