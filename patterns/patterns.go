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

// Package patterns generates simple calibration shapes. A steady square or
// circle on the screen confirms the wiring, the X-Y mode setting and the
// channel gains before any scene geometry is involved: a square with curved
// corners means the amplifier bandwidth is struggling, an ellipse means the
// channel gains are unequal.
package patterns

import (
	"math"

	"github.com/scopetrace/scopetrace/trace"
)

// DefaultSize of the calibration shapes, leaving a margin inside the
// bipolar range so that the whole shape is visible even on a slightly
// miscalibrated screen.
const DefaultSize = 0.8

// segments used to approximate a circle. at typical point densities the
// polygon is indistinguishable from a true circle on screen.
const circleSegments = 64

// Square returns a closed square of the given half-extent, centred on the
// screen and traced anti-clockwise from the bottom-left corner.
func Square(size float64) trace.Path {
	return trace.Path{
		{X: -size, Y: -size},
		{X: size, Y: -size},
		{X: size, Y: size},
		{X: -size, Y: size},
		{X: -size, Y: -size},
	}
}

// Circle returns a closed circle of the given radius centred on the screen.
func Circle(radius float64) trace.Path {
	path := make(trace.Path, 0, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		angle := 2 * math.Pi * float64(i) / circleSegments
		path = append(path, trace.Point{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
		})
	}
	return path
}

// Named looks up a pattern generator by name. The bool return value is
// false if the name is not recognised.
func Named(name string, size float64) (trace.Path, bool) {
	if size == 0 {
		size = DefaultSize
	}
	switch name {
	case "square":
		return Square(size), true
	case "circle":
		return Circle(size), true
	}
	return nil, false
}
