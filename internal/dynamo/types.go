package dynamo

import (
	"math"
	"sort"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Lerp moves t of the way from v toward o.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t, v.Z + (o.Z-v.Z)*t}
}

// IsValid reports whether every component is finite.
func (v Vec3) IsValid() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Body is the simulated state of one canvas node. Width and Height describe
// an axis-aligned box centred on Position.
type Body struct {
	Position Vec3
	Velocity Vec3
	Target   Vec3
	Width    float64
	Height   float64
	Dragging bool
	Locked   bool
}

// Movable reports whether forces may be applied to the body. Dragging takes
// precedence over Locked; either one pins the body.
func (b *Body) Movable() bool { return !b.Dragging && !b.Locked }

// Bodies is the body store. It is mutated in place, never rebuilt per frame.
type Bodies map[string]*Body

// Spawn inserts a body at rest on its own target.
func (bs Bodies) Spawn(id string, pos Vec3, width, height float64) *Body {
	b := &Body{Position: pos, Target: pos, Width: width, Height: height}
	bs[id] = b
	return b
}

// IDs returns the ids in sorted order.
func (bs Bodies) IDs() []string {
	ids := make([]string, 0, len(bs))
	for id := range bs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Positions copies the current positions into a fresh map.
func (bs Bodies) Positions() map[string]Vec3 {
	out := make(map[string]Vec3, len(bs))
	for id, b := range bs {
		out[id] = b.Position
	}
	return out
}

type EdgeType int

const (
	EdgeRelated EdgeType = iota
	EdgeMentions
	EdgeSupports
	EdgeContradicts
	EdgeMemberOf
)

var edgeTypeNames = map[EdgeType]string{
	EdgeRelated:     "related",
	EdgeMentions:    "mentions",
	EdgeSupports:    "supports",
	EdgeContradicts: "contradicts",
	EdgeMemberOf:    "member_of",
}

func (t EdgeType) String() string {
	if s, ok := edgeTypeNames[t]; ok {
		return s
	}
	return "related"
}

// ParseEdgeType maps a tag to an EdgeType; unknown tags are EdgeRelated.
func ParseEdgeType(s string) EdgeType {
	for t, name := range edgeTypeNames {
		if name == s {
			return t
		}
	}
	return EdgeRelated
}

// Edge is a directed relation between two endpoints. An endpoint is a body id
// or a group id. The type only affects rendering.
type Edge struct {
	Source string
	Target string
	Type   EdgeType
}

// Group is a named cluster of bodies. Centroid is the fallback location used
// when none of the members are in the store.
type Group struct {
	ID       string
	Members  []string
	Centroid Vec3
}

// Frame is a read-only view of one completed step. Bodies is the live store
// and is only valid for the duration of the callback that receives it.
type Frame struct {
	Version   uint64
	Time      float64
	Awake     bool
	Positions map[string]Vec3
	Bodies    Bodies
}
