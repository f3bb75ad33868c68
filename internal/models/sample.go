package models

import (
	"math"
)

// SamplePoint is a single measured value at a position on the floor plan.
// Positions share one 2D coordinate system; the engine is unit-agnostic.
type SamplePoint struct {
	// X is the horizontal coordinate of the measurement
	X float64

	// Y is the vertical coordinate of the measurement
	Y float64

	// Value is the measured quantity. NaN marks a missing reading.
	Value float64
}

// Valid reports whether the sample carries a usable value.
func (s SamplePoint) Valid() bool {
	return !math.IsNaN(s.Value)
}

// Reading is one positioned record carrying several named channels
// (e.g. temperature, humidity, biomass). Channels absent from the map
// are treated as missing for that position.
type Reading struct {
	// ID identifies the sensor or plant that produced the reading
	ID int

	// X, Y are the position of the reading in the shared coordinate system
	X, Y float64

	// Channels maps channel name to measured value
	Channels map[string]float64
}

// ChannelSamples extracts the samples for one named channel from a set of
// readings. Positions without that channel yield a missing (NaN) sample so
// that position order is preserved across channels.
func ChannelSamples(readings []Reading, channel string) []SamplePoint {
	samples := make([]SamplePoint, len(readings))
	for i, r := range readings {
		v, ok := r.Channels[channel]
		if !ok {
			v = math.NaN()
		}
		samples[i] = SamplePoint{X: r.X, Y: r.Y, Value: v}
	}
	return samples
}

// ValidSamples returns the samples that carry a usable value, preserving
// order. Missing values are excluded, never imputed.
func ValidSamples(samples []SamplePoint) []SamplePoint {
	valid := make([]SamplePoint, 0, len(samples))
	for _, s := range samples {
		if s.Valid() {
			valid = append(valid, s)
		}
	}
	return valid
}

// DedupSamples collapses samples sharing an exact position. Duplicates with
// equal values are reduced to a single sample; duplicates with conflicting
// values return ErrAmbiguousSample since no single surface can honor both.
func DedupSamples(samples []SamplePoint) ([]SamplePoint, error) {
	type position struct{ x, y float64 }

	seen := make(map[position]float64, len(samples))
	out := make([]SamplePoint, 0, len(samples))
	for _, s := range samples {
		p := position{s.X, s.Y}
		if prev, ok := seen[p]; ok {
			if prev != s.Value {
				return nil, ErrAmbiguousSample
			}
			continue
		}
		seen[p] = s.Value
		out = append(out, s)
	}
	return out, nil
}
