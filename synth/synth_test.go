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

package synth_test

import (
	"testing"

	"github.com/scopetrace/scopetrace/synth"
	"github.com/scopetrace/scopetrace/test"
	"github.com/scopetrace/scopetrace/trace"
)

func segment(l float64) trace.Path {
	return trace.Path{{X: 0, Y: 0}, {X: l, Y: 0}}
}

func TestDensityMonotonicity(t *testing.T) {
	spec := synth.Spec{Density: 100}

	short := synth.Synthesize(segment(0.1), spec)
	long := synth.Synthesize(segment(0.9), spec)

	test.ExpectedSuccess(t, short.Pairs() > 0)
	test.ExpectedSuccess(t, long.Pairs() > 0)
	test.ExpectedSuccess(t, short.Pairs() <= long.Pairs())
}

func TestShortSegmentSurvives(t *testing.T) {
	// a segment far shorter than the sample spacing still gets a sample
	b := synth.Synthesize(segment(1e-6), synth.Spec{Density: 10})
	test.ExpectedSuccess(t, b.Pairs() >= 2)
}

func TestEmptyPath(t *testing.T) {
	b := synth.Synthesize(trace.Path{}, synth.Spec{})
	test.Equate(t, len(b), 0)
}

func TestEndpoints(t *testing.T) {
	b := synth.Synthesize(segment(0.5), synth.Spec{Density: 100})

	// first sample pair is the path start, last is the path end
	test.Equate(t, b[0], float32(0))
	test.Equate(t, b[1], float32(0))
	test.EquateNear(t, float64(b[len(b)-2]), 0.5, 1e-6)
	test.Equate(t, b[len(b)-1], float32(0))
}

func TestInterpolationIsLinear(t *testing.T) {
	// a diagonal line keeps x == y at every sample
	p := trace.Path{{X: -1, Y: -1}, {X: 1, Y: 1}}
	b := synth.Synthesize(p, synth.Spec{Density: 50})

	for i := 0; i < len(b); i += 2 {
		test.Equate(t, b[i], b[i+1])
	}
}

func TestAmplitude(t *testing.T) {
	p := trace.Path{{X: 1, Y: -1}, {X: 1, Y: 1}}
	b := synth.Synthesize(p, synth.Spec{Density: 10, Amplitude: 0.5})

	for i := 0; i < len(b); i += 2 {
		test.Equate(t, b[i], float32(0.5))
		test.ExpectedSuccess(t, b[i+1] >= -0.5 && b[i+1] <= 0.5)
	}
}

func TestClipping(t *testing.T) {
	// amplitude is capped at the converter's full scale even if a point
	// were to stray outside the bipolar range
	p := trace.Path{{X: 1.5, Y: 0}, {X: 1.5, Y: 0.1}}
	b := synth.Synthesize(p, synth.Spec{Density: 10, Amplitude: 1})

	for i := 0; i < len(b); i += 2 {
		test.Equate(t, b[i], float32(1))
	}
}

func TestSinglePoint(t *testing.T) {
	b := synth.Synthesize(trace.Path{{X: 0.25, Y: -0.25}}, synth.Spec{})
	test.Equate(t, b.Pairs(), 1)
	test.Equate(t, b[0], float32(0.25))
	test.Equate(t, b[1], float32(-0.25))
}
