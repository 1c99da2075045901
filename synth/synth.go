// This file is part of ScopeTrace.
//
// ScopeTrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ScopeTrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ScopeTrace.  If not, see <https://www.gnu.org/licenses/>.

// Package synth renders a planned beam path into the sample stream that
// drives the scope. Each sample pair is one beam position: the X value feeds
// the left audio channel, the Y value the right.
//
// Samples are placed along the path at constant density. Point density is
// what the eye perceives as line brightness, so a long line receives
// proportionally more samples than a short one and both appear equally
// bright and continuous. The cost is that the sample count, and therefore
// the refresh rate of the display, varies with scene complexity: playback
// runs at a fixed sample rate, so a frame of n sample pairs refreshes at
// rate/n Hz. No frame-length normalisation is performed. Simple scenes
// simply refresh faster.
package synth

import "github.com/scopetrace/scopetrace/trace"

// Buffer is one full trace of one scene as interleaved X,Y sample pairs.
// Once handed to a sink the buffer must not be modified.
type Buffer []float32

// Pairs is the number of beam positions in the buffer.
func (b Buffer) Pairs() int {
	return len(b) / 2
}

// DefaultDensity is tuned so that a straightforward in-game scene lands in
// the range of five to ten thousand sample pairs, giving a refresh around
// 5-9Hz at the default sample rate. Higher densities are brighter but
// refresh more slowly.
const DefaultDensity = 200.0

// DefaultAmplitude drives the converter at full scale.
const DefaultAmplitude = 1.0

// Spec parameterises synthesis.
type Spec struct {
	// samples per unit of path length in normalised coordinates. zero
	// selects DefaultDensity
	Density float64

	// output scale in the range (0,1]. zero selects DefaultAmplitude.
	// values below 1.0 leave headroom on converters that clip near full
	// scale
	Amplitude float64
}

// Synthesize renders the path into a sample buffer. Every segment of the
// path receives at least one sample, so short segments survive, and sample
// count per segment grows monotonically with segment length. An empty path
// produces an empty buffer.
func Synthesize(path trace.Path, spec Spec) Buffer {
	if spec.Density == 0 {
		spec.Density = DefaultDensity
	}
	if spec.Amplitude == 0 {
		spec.Amplitude = DefaultAmplitude
	}

	if len(path) == 0 {
		return nil
	}

	// estimate capacity from total path length
	buf := make(Buffer, 0, 2*(1+int(path.Length()*spec.Density)))

	emit := func(x, y float64) {
		buf = append(buf, clip(x*spec.Amplitude), clip(y*spec.Amplitude))
	}

	emit(path[0].X, path[0].Y)

	for i := 1; i < len(path); i++ {
		a := path[i-1]
		b := path[i]

		dx := b.X - a.X
		dy := b.Y - a.Y

		n := segmentSamples(a, b, spec.Density)
		for s := 1; s <= n; s++ {
			t := float64(s) / float64(n)
			emit(a.X+dx*t, a.Y+dy*t)
		}
	}

	return buf
}

// segmentSamples is the number of samples placed along one segment,
// excluding the segment's start point. Never less than one.
func segmentSamples(a, b trace.Point, density float64) int {
	l := trace.Path{a, b}.Length()
	n := int(l*density + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

func clip(v float64) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return float32(v)
}
