package optim

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ParseRange reads a parameter sweep. Two forms are accepted:
//
//	springStiffness=60,120,240
//	springStiffness=60:240:4   (4 evenly spaced values, ends included)
func ParseRange(s string) (string, []float64, error) {
	name, expr, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || expr == "" {
		return "", nil, fmt.Errorf("range %q: want name=values", s)
	}

	if parts := strings.Split(expr, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 2 {
			return "", nil, fmt.Errorf("range %q: want lo:hi:n with n >= 2", s)
		}
		return name, floats.Span(make([]float64, n), lo, hi), nil
	}

	var vals []float64
	for _, p := range strings.Split(expr, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("range %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}
