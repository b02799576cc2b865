package config

import (
	"sort"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

var num = dynamo.Float

var Presets = map[string]dynamo.ConfigPatch{
	"default": {},
	"snappy": {
		SpringStiffness: num(240), SpringDamping: num(30), VelocityDecay: num(0.85),
	},
	"floaty": {
		SpringStiffness: num(60), SpringDamping: num(8), VelocityDecay: num(0.95),
	},
	"dense": {
		RepulsionStrength: num(1400), RepulsionMargin: num(4), EdgeRestLength: num(140),
	},
	"sparse": {
		RepulsionMargin: num(40), EdgeRestLength: num(360), EdgeStiffness: num(0.03),
	},
	"calm": {
		MaxVelocity: num(600), SleepThreshold: num(1),
	},
}

func GetPreset(name string) *dynamo.ConfigPatch {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
