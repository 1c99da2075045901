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

// Package traceplot renders a beam path to a PNG image. Useful for checking
// what a scene will look like on the scope without connecting one.
package traceplot

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/scopetrace/scopetrace/trace"
)

// phosphor green on black, like the real thing.
var (
	beamColor       = color.RGBA{R: 0x33, G: 0xff, B: 0x66, A: 255}
	backgroundColor = color.RGBA{A: 255}
)

// Save renders the path and writes it to filename. The plot axes are fixed
// to the scope's normalised coordinate space whatever the path contains.
func Save(path trace.Path, filename string) error {
	p := plot.New()
	p.Title.Text = "beam path"
	p.BackgroundColor = backgroundColor
	p.Title.TextStyle.Color = beamColor

	p.X.Min, p.X.Max = -1, 1
	p.Y.Min, p.Y.Max = -1, 1
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.Color = beamColor
		axis.Label.TextStyle.Color = beamColor
		axis.Tick.Color = beamColor
		axis.Tick.Label.Color = beamColor
	}

	pts := make(plotter.XYs, len(path))
	for i, pt := range path {
		pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = beamColor
	line.Width = vg.Points(1)
	p.Add(line)

	return p.Save(6*vg.Inch, 6*vg.Inch, filename)
}
