// Package bounds maps node types to their on-canvas bounding boxes.
package bounds

import "strings"

type NodeType int

const (
	Unknown NodeType = iota
	Article
	Entity
	Claim
	Narrative
	Source
	Note
	Cluster
)

var names = map[NodeType]string{
	Article:   "article",
	Entity:    "entity",
	Claim:     "claim",
	Narrative: "narrative",
	Source:    "source",
	Note:      "note",
	Cluster:   "cluster",
}

func (t NodeType) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return "unknown"
}

// ParseNodeType maps a type tag to a NodeType. Unrecognised tags are Unknown.
func ParseNodeType(tag string) NodeType {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for t, name := range names {
		if name == tag {
			return t
		}
	}
	return Unknown
}

// Types lists the known node types in declaration order.
func Types() []NodeType {
	return []NodeType{Article, Entity, Claim, Narrative, Source, Note, Cluster}
}

// Size is a bounding box in canvas pixels.
type Size struct {
	Width  float64
	Height float64
}

var table = map[NodeType]Size{
	Article:   {Width: 280, Height: 160},
	Entity:    {Width: 180, Height: 72},
	Claim:     {Width: 240, Height: 110},
	Narrative: {Width: 320, Height: 200},
	Source:    {Width: 200, Height: 88},
	Note:      {Width: 220, Height: 140},
	Cluster:   {Width: 360, Height: 240},
}

// Lookup returns the bounds for t, falling back to the article entry.
func Lookup(t NodeType) Size {
	if s, ok := table[t]; ok {
		return s
	}
	return table[Article]
}
