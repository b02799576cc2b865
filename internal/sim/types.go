package sim

import (
	"github.com/san-kum/canvasflow/internal/bounds"
	"github.com/san-kum/canvasflow/internal/dynamo"
)

// Node is one entry of the external logical node list.
type Node struct {
	ID       string
	Type     bounds.NodeType
	Position dynamo.Vec3
	Locked   bool
}

// Observer receives a frame after every self-scheduled step. It runs while the
// driver is locked and must not call back into the driver.
type Observer interface {
	OnFrame(f dynamo.Frame)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(f dynamo.Frame)

func (fn ObserverFunc) OnFrame(f dynamo.Frame) { fn(f) }
