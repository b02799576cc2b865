package dynamo

import "math"

const (
	DefaultSpringStiffness   = 120.0
	DefaultSpringDamping     = 18.0
	DefaultRepulsionStrength = 900.0
	DefaultRepulsionMargin   = 12.0
	DefaultEdgeStiffness     = 0.05
	DefaultEdgeRestLength    = 220.0
	DefaultVelocityDecay     = 0.9
	DefaultMaxVelocity       = 1800.0
	DefaultSleepThreshold    = 0.5
)

// Config holds the tunable constants read by every step. LayoutGroupMap maps
// node id to layout group id; nodes in the same group do not repel.
type Config struct {
	SpringStiffness   float64
	SpringDamping     float64
	RepulsionStrength float64
	RepulsionMargin   float64
	EdgeStiffness     float64
	EdgeRestLength    float64
	VelocityDecay     float64
	MaxVelocity       float64
	SleepThreshold    float64
	LayoutGroupMap    map[string]string
}

func DefaultConfig() Config {
	return Config{
		SpringStiffness:   DefaultSpringStiffness,
		SpringDamping:     DefaultSpringDamping,
		RepulsionStrength: DefaultRepulsionStrength,
		RepulsionMargin:   DefaultRepulsionMargin,
		EdgeStiffness:     DefaultEdgeStiffness,
		EdgeRestLength:    DefaultEdgeRestLength,
		VelocityDecay:     DefaultVelocityDecay,
		MaxVelocity:       DefaultMaxVelocity,
		SleepThreshold:    DefaultSleepThreshold,
	}
}

// SameLayoutGroup reports whether both ids belong to one layout group.
func (c *Config) SameLayoutGroup(a, b string) bool {
	if len(c.LayoutGroupMap) == 0 {
		return false
	}
	ga, ok := c.LayoutGroupMap[a]
	if !ok {
		return false
	}
	gb, ok := c.LayoutGroupMap[b]
	return ok && ga == gb
}

// Params exposes the numeric tunables by their external option names.
func (c *Config) Params() map[string]float64 {
	return map[string]float64{
		"springStiffness":   c.SpringStiffness,
		"springDamping":     c.SpringDamping,
		"repulsionStrength": c.RepulsionStrength,
		"repulsionMargin":   c.RepulsionMargin,
		"edgeStiffness":     c.EdgeStiffness,
		"edgeRestLength":    c.EdgeRestLength,
		"velocityDecay":     c.VelocityDecay,
		"maxVelocity":       c.MaxVelocity,
		"sleepThreshold":    c.SleepThreshold,
	}
}

// SetParam assigns a numeric tunable by its external option name.
func (c *Config) SetParam(name string, value float64) error {
	p := c.field(name)
	if p == nil {
		return &FieldError{Field: name, Value: value, Wrapped: ErrInvalidConfig}
	}
	*p = value
	return nil
}

func (c *Config) field(name string) *float64 {
	switch name {
	case "springStiffness":
		return &c.SpringStiffness
	case "springDamping":
		return &c.SpringDamping
	case "repulsionStrength":
		return &c.RepulsionStrength
	case "repulsionMargin":
		return &c.RepulsionMargin
	case "edgeStiffness":
		return &c.EdgeStiffness
	case "edgeRestLength":
		return &c.EdgeRestLength
	case "velocityDecay":
		return &c.VelocityDecay
	case "maxVelocity":
		return &c.MaxVelocity
	case "sleepThreshold":
		return &c.SleepThreshold
	}
	return nil
}

// Validate rejects non-finite or negative tunables and a decay outside [0, 1].
// It is meant for configuration loading; Step never calls it.
func (c *Config) Validate() error {
	for name, v := range c.Params() {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return &FieldError{Field: name, Value: v, Wrapped: ErrInvalidConfig}
		}
	}
	if c.VelocityDecay > 1 {
		return &FieldError{Field: "velocityDecay", Value: c.VelocityDecay, Wrapped: ErrInvalidConfig}
	}
	return nil
}

// ConfigPatch is a partial override. Nil fields are left untouched. A non-nil
// LayoutGroupMap replaces the current map; ClearLayoutGroups removes it.
type ConfigPatch struct {
	SpringStiffness   *float64          `yaml:"springStiffness,omitempty"`
	SpringDamping     *float64          `yaml:"springDamping,omitempty"`
	RepulsionStrength *float64          `yaml:"repulsionStrength,omitempty"`
	RepulsionMargin   *float64          `yaml:"repulsionMargin,omitempty"`
	EdgeStiffness     *float64          `yaml:"edgeStiffness,omitempty"`
	EdgeRestLength    *float64          `yaml:"edgeRestLength,omitempty"`
	VelocityDecay     *float64          `yaml:"velocityDecay,omitempty"`
	MaxVelocity       *float64          `yaml:"maxVelocity,omitempty"`
	SleepThreshold    *float64          `yaml:"sleepThreshold,omitempty"`
	LayoutGroupMap    map[string]string `yaml:"layoutGroupMap,omitempty"`
	ClearLayoutGroups bool              `yaml:"-"`
}

// Float is a helper for building patches from literals.
func Float(v float64) *float64 { return &v }

// Merge applies the patch to c.
func (c *Config) Merge(p ConfigPatch) {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.SpringStiffness, p.SpringStiffness)
	set(&c.SpringDamping, p.SpringDamping)
	set(&c.RepulsionStrength, p.RepulsionStrength)
	set(&c.RepulsionMargin, p.RepulsionMargin)
	set(&c.EdgeStiffness, p.EdgeStiffness)
	set(&c.EdgeRestLength, p.EdgeRestLength)
	set(&c.VelocityDecay, p.VelocityDecay)
	set(&c.MaxVelocity, p.MaxVelocity)
	set(&c.SleepThreshold, p.SleepThreshold)

	if p.ClearLayoutGroups {
		c.LayoutGroupMap = nil
	}
	if p.LayoutGroupMap != nil {
		c.LayoutGroupMap = make(map[string]string, len(p.LayoutGroupMap))
		for k, v := range p.LayoutGroupMap {
			c.LayoutGroupMap[k] = v
		}
	}
}
