package layout

import (
	"fmt"
	"sort"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

// Registry builds layouts by name from numeric parameters.
type Registry struct {
	layouts map[string]func(params map[string]float64) Layout
}

func NewRegistry() *Registry {
	r := &Registry{layouts: make(map[string]func(map[string]float64) Layout)}

	r.layouts["grid"] = func(params map[string]float64) Layout {
		return Grid{Columns: int(params["columns"]), Spacing: params["spacing"]}
	}
	r.layouts["circle"] = func(params map[string]float64) Layout {
		return Circle{Radius: params["radius"]}
	}
	r.layouts["cluster"] = func(params map[string]float64) Layout {
		return Cluster{Spacing: params["spacing"]}
	}

	return r
}

func (r *Registry) Get(name string, params map[string]float64) (Layout, error) {
	fn, ok := r.layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownLayout, name)
	}
	return fn(params), nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
