// Package scenario loads scripted canvas sessions and replays them against a
// driver at a fixed time step.
package scenario

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/canvasflow/internal/bounds"
	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/sim"
)

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z,omitempty"`
}

func (p Point) Vec() dynamo.Vec3 { return dynamo.Vec3{X: p.X, Y: p.Y, Z: p.Z} }

type NodeSpec struct {
	ID     string  `yaml:"id"`
	Type   string  `yaml:"type"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z,omitempty"`
	Locked bool    `yaml:"locked,omitempty"`
}

func (n NodeSpec) Node() sim.Node {
	return sim.Node{
		ID:       n.ID,
		Type:     bounds.ParseNodeType(n.Type),
		Position: dynamo.Vec3{X: n.X, Y: n.Y, Z: n.Z},
		Locked:   n.Locked,
	}
}

type EdgeSpec struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Type   string `yaml:"type,omitempty"`
}

type GroupSpec struct {
	ID       string   `yaml:"id"`
	Members  []string `yaml:"members"`
	Centroid *Point   `yaml:"centroid,omitempty"`
}

// DragAction moves a node along Path over Duration seconds and releases it
// with an optional fling velocity.
type DragAction struct {
	ID       string  `yaml:"id"`
	Path     []Point `yaml:"path"`
	Duration float64 `yaml:"duration,omitempty"`
	Fling    *Point  `yaml:"fling,omitempty"`
}

type LayoutAction struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Action is everything that happens at one point in time. Parts are applied
// in field order.
type Action struct {
	At      float64             `yaml:"at"`
	Config  *dynamo.ConfigPatch `yaml:"config,omitempty"`
	Add     []NodeSpec          `yaml:"add,omitempty"`
	Remove  []string            `yaml:"remove,omitempty"`
	Lock    []string            `yaml:"lock,omitempty"`
	Unlock  []string            `yaml:"unlock,omitempty"`
	Targets map[string]Point    `yaml:"targets,omitempty"`
	Layout  *LayoutAction       `yaml:"layout,omitempty"`
	Drag    *DragAction         `yaml:"drag,omitempty"`
}

// Scenario is a scripted canvas session.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Config      dynamo.ConfigPatch `yaml:"config"`
	Nodes       []NodeSpec         `yaml:"nodes"`
	Edges       []EdgeSpec         `yaml:"edges"`
	Groups      []GroupSpec        `yaml:"groups"`
	Actions     []Action           `yaml:"actions"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(s.Actions, func(i, j int) bool { return s.Actions[i].At < s.Actions[j].At })
	return &s, nil
}

// Validate checks that the scenario has nodes and that every reference names
// a node or group that exists at some point.
func (s *Scenario) Validate() error {
	if len(s.Nodes) == 0 {
		return dynamo.ErrEmptyScenario
	}

	known := make(map[string]bool)
	for _, n := range s.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node without id: %w", dynamo.ErrUnknownNode)
		}
		if known[n.ID] {
			return fmt.Errorf("duplicate node %q", n.ID)
		}
		known[n.ID] = true
	}
	for _, a := range s.Actions {
		for _, n := range a.Add {
			known[n.ID] = true
		}
	}

	endpoints := make(map[string]bool, len(known)+len(s.Groups))
	for id := range known {
		endpoints[id] = true
	}
	for _, g := range s.Groups {
		endpoints[g.ID] = true
	}
	for _, e := range s.Edges {
		for _, id := range []string{e.Source, e.Target} {
			if !endpoints[id] {
				return fmt.Errorf("edge %s->%s: %w: %s", e.Source, e.Target, dynamo.ErrUnknownNode, id)
			}
		}
	}

	for i, a := range s.Actions {
		if a.At < 0 {
			return fmt.Errorf("action %d: negative time %v", i, a.At)
		}
		var ids []string
		ids = append(ids, a.Remove...)
		ids = append(ids, a.Lock...)
		ids = append(ids, a.Unlock...)
		for id := range a.Targets {
			ids = append(ids, id)
		}
		if a.Drag != nil {
			if len(a.Drag.Path) == 0 {
				return fmt.Errorf("action %d: drag of %q has no path", i, a.Drag.ID)
			}
			ids = append(ids, a.Drag.ID)
		}
		for _, id := range ids {
			if !known[id] {
				return fmt.Errorf("action %d: %w: %s", i, dynamo.ErrUnknownNode, id)
			}
		}
		if a.Config != nil {
			cfg := dynamo.DefaultConfig()
			cfg.Merge(*a.Config)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("action %d: %w", i, err)
			}
		}
	}
	return nil
}

func (s *Scenario) NodeList() []sim.Node {
	nodes := make([]sim.Node, len(s.Nodes))
	for i, n := range s.Nodes {
		nodes[i] = n.Node()
	}
	return nodes
}

func (s *Scenario) EdgeList() []dynamo.Edge {
	edges := make([]dynamo.Edge, len(s.Edges))
	for i, e := range s.Edges {
		edges[i] = dynamo.Edge{Source: e.Source, Target: e.Target, Type: dynamo.ParseEdgeType(e.Type)}
	}
	return edges
}

func (s *Scenario) GroupList() []dynamo.Group {
	groups := make([]dynamo.Group, len(s.Groups))
	for i, g := range s.Groups {
		groups[i] = dynamo.Group{ID: g.ID, Members: g.Members}
		if g.Centroid != nil {
			groups[i].Centroid = g.Centroid.Vec()
		}
	}
	return groups
}

// Setup loads the scenario's initial state into d.
func (s *Scenario) Setup(d *sim.Driver) {
	d.SetConfig(s.Config)
	d.SetGroups(s.GroupList())
	d.Sync(s.NodeList(), s.EdgeList())
}

// LastAction is the time of the final scripted action, or 0.
func (s *Scenario) LastAction() float64 {
	last := 0.0
	for _, a := range s.Actions {
		end := a.At
		if a.Drag != nil {
			end += a.Drag.duration()
		}
		last = max(last, end)
	}
	return last
}

const defaultDragDuration = 0.25

func (d *DragAction) duration() float64 {
	if d.Duration > 0 {
		return d.Duration
	}
	return defaultDragDuration
}
