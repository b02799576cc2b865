package export

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

func TestSnapshotToSVG(t *testing.T) {
	bs := dynamo.Bodies{}
	bs.Spawn("a", dynamo.Vec3{X: 0, Y: 0}, 100, 50)
	bs.Spawn("b<&>", dynamo.Vec3{X: 300, Y: 200}, 100, 50).Locked = true
	edges := []dynamo.Edge{
		{Source: "a", Target: "b<&>", Type: dynamo.EdgeSupports},
		{Source: "a", Target: "group", Type: dynamo.EdgeMemberOf},
	}

	svg := SnapshotToSVG(bs, edges)

	if err := xml.Unmarshal([]byte(svg), new(struct{})); err != nil {
		t.Fatalf("not well-formed xml: %v", err)
	}
	if got := strings.Count(svg, "<rect "); got != 3 {
		t.Errorf("expected background plus 2 boxes, got %d rects", got)
	}
	if got := strings.Count(svg, "<line "); got != 1 {
		t.Errorf("edge to a missing body should be skipped, got %d lines", got)
	}
	if !strings.Contains(svg, `stroke="#34d399"`) {
		t.Error("supports edge colour missing")
	}
	if !strings.Contains(svg, "stroke-dasharray") {
		t.Error("locked body should be dashed")
	}
	if !strings.Contains(svg, "b&lt;&amp;&gt;") {
		t.Error("label not escaped")
	}
	if !strings.Contains(svg, `viewBox="-90.0 -65.0 480.0 330.0"`) {
		t.Errorf("unexpected viewBox in %s", svg[:200])
	}
}

func TestSnapshotToSVG_Empty(t *testing.T) {
	if svg := SnapshotToSVG(dynamo.Bodies{}, nil); svg != "" {
		t.Errorf("expected empty output, got %q", svg)
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	paths := map[string][]dynamo.Vec3{
		"b": {{X: 0, Y: 0}, {X: 10, Y: 10}},
		"a": {{X: 5, Y: 5}},
	}
	svg := TrajectoryToSVG(paths, 200, 100)

	if err := xml.Unmarshal([]byte(svg), new(struct{})); err != nil {
		t.Fatalf("not well-formed xml: %v", err)
	}
	if got := strings.Count(svg, "<path "); got != 2 {
		t.Errorf("expected a path per body, got %d", got)
	}
	if strings.Index(svg, `data-id="a"`) > strings.Index(svg, `data-id="b"`) {
		t.Error("paths should be in id order")
	}

	if svg := TrajectoryToSVG(map[string][]dynamo.Vec3{"a": {{}}}, 10, 10); svg != "" {
		t.Error("a single point should produce no output")
	}
}
