// Package viz provides a live terminal view of a canvas simulation.
//
// The view drives the engine in external-tick mode: each Bubble Tea tick
// calls Driver.Tick with a fixed 1/60s step and redraws a braille canvas.
//
// # Key Bindings
//
//	Tab        - Select the next node
//	Arrows/hjkl - Drag the selected node
//	Enter      - Release with a fling along the last move
//	X          - Toggle lock on the selected node
//	C          - Apply the next layout
//	F          - Ease the camera onto the layout targets
//	+/-        - Zoom
//	T          - Cycle color themes
//	Space      - Pause/Resume
//	Q          - Quit
package viz
