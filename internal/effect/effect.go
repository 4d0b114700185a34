// Package effect defines the lighting operations the app can request from the
// image model: adding or removing sunlight, shadows, or both, with an
// intensity and a light direction for the additive variants.
package effect

import "fmt"

// Effect identifies one of the six supported lighting operations.
type Effect string

const (
	AddSunlight           Effect = "add-sunlight"
	AddShadows            Effect = "add-shadows"
	AddSunlightShadows    Effect = "add-sunlight-shadows"
	RemoveSunlight        Effect = "remove-sunlight"
	RemoveShadows         Effect = "remove-shadows"
	RemoveSunlightShadows Effect = "remove-sunlight-shadows"
)

// All lists every supported effect in display order.
var All = []Effect{
	AddSunlight,
	AddShadows,
	AddSunlightShadows,
	RemoveSunlight,
	RemoveShadows,
	RemoveSunlightShadows,
}

// Direction is where the added light comes from.
type Direction string

const (
	DirectionTop    Direction = "top"
	DirectionLeft   Direction = "left"
	DirectionCenter Direction = "center"
	DirectionRight  Direction = "right"
	DirectionBottom Direction = "bottom"
)

// Directions lists every supported light direction.
var Directions = []Direction{
	DirectionTop,
	DirectionLeft,
	DirectionCenter,
	DirectionRight,
	DirectionBottom,
}

// Intensity bounds for additive effects.
const (
	MinIntensity = 1
	MaxIntensity = 3
)

// Config is one fully specified effect request. Intensity and Direction are
// only meaningful for additive effects; they are ignored for remove-* effects.
type Config struct {
	Effect    Effect    `json:"effect"`
	Intensity int       `json:"intensity"`
	Direction Direction `json:"direction"`
}

// IsAdditive reports whether the effect adds light or shadow to the scene.
func (e Effect) IsAdditive() bool {
	switch e {
	case AddSunlight, AddShadows, AddSunlightShadows:
		return true
	}
	return false
}

// Valid reports whether e is one of the six supported effects.
func (e Effect) Valid() bool {
	switch e {
	case AddSunlight, AddShadows, AddSunlightShadows,
		RemoveSunlight, RemoveShadows, RemoveSunlightShadows:
		return true
	}
	return false
}

// Valid reports whether d is a supported light direction.
func (d Direction) Valid() bool {
	switch d {
	case DirectionTop, DirectionLeft, DirectionCenter, DirectionRight, DirectionBottom:
		return true
	}
	return false
}

// Normalize validates the config and fills defaults for fields that do not
// apply. Remove-* effects get intensity/direction zeroed so that two requests
// for the same removal compare equal regardless of leftover UI state.
func (c Config) Normalize() (Config, error) {
	if !c.Effect.Valid() {
		return Config{}, fmt.Errorf("unknown effect %q", c.Effect)
	}

	if !c.Effect.IsAdditive() {
		c.Intensity = 0
		c.Direction = ""
		return c, nil
	}

	if c.Intensity == 0 {
		c.Intensity = 2
	}
	if c.Intensity < MinIntensity || c.Intensity > MaxIntensity {
		return Config{}, fmt.Errorf("intensity %d out of range [%d,%d]", c.Intensity, MinIntensity, MaxIntensity)
	}

	if c.Direction == "" {
		c.Direction = DirectionCenter
	}
	if !c.Direction.Valid() {
		return Config{}, fmt.Errorf("unknown direction %q", c.Direction)
	}

	return c, nil
}

// Slug returns the effect name used in download filenames.
func (e Effect) Slug() string {
	if !e.Valid() {
		return "enhanced"
	}
	return string(e)
}
