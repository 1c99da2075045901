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

package trace_test

import (
	"testing"

	"github.com/scopetrace/scopetrace/geometry"
	"github.com/scopetrace/scopetrace/test"
	"github.com/scopetrace/scopetrace/trace"
)

var view = geometry.View{Width: 320, Height: 200}

func solidWall() geometry.WallSegment {
	return geometry.WallSegment{
		X1: 0, Y1Top: 50, Y1Bottom: 150,
		X2: 100, Y2Top: 60, Y2Bottom: 140,
		Distance:   500,
		Silhouette: geometry.SilhouetteSolid,
	}
}

func TestSolidWallEdges(t *testing.T) {
	scene := &geometry.Scene{Walls: []geometry.WallSegment{solidWall()}}

	path := trace.Plan(scene, view, trace.Options{})

	// a closed quad outline: 5 points, 4 edges
	test.Equate(t, len(path), 5)

	// closed: first and last points coincide
	test.Equate(t, path[0].X, path[4].X)
	test.Equate(t, path[0].Y, path[4].Y)

	// all coordinates within the bipolar range
	for _, p := range path {
		test.ExpectedSuccess(t, p.X >= -1 && p.X <= 1)
		test.ExpectedSuccess(t, p.Y >= -1 && p.Y <= 1)
	}
}

func TestHorizontalSymmetry(t *testing.T) {
	// when x1+x2 equals the view width the wall ends sit symmetrically
	// about the view's vertical midline
	w := geometry.WallSegment{
		X1: 60, Y1Top: 50, Y1Bottom: 150,
		X2: 260, Y2Top: 50, Y2Bottom: 150,
		Distance:   10,
		Silhouette: geometry.SilhouetteSolid,
	}
	scene := &geometry.Scene{Walls: []geometry.WallSegment{w}}

	path := trace.Plan(scene, view, trace.Options{})

	// path[0] is (x1, y1_top), path[1] is (x2, y2_top)
	test.EquateNear(t, path[0].X, -path[1].X, 1e-9)
}

func TestSilhouetteSelection(t *testing.T) {
	w := solidWall()

	// top edge open: left, bottom, right = 4 points, 3 edges
	w.Silhouette = geometry.SilhouetteBottom
	path := trace.Plan(&geometry.Scene{Walls: []geometry.WallSegment{w}}, view, trace.Options{})
	test.Equate(t, len(path), 4)

	// bottom edge open
	w.Silhouette = geometry.SilhouetteTop
	path = trace.Plan(&geometry.Scene{Walls: []geometry.WallSegment{w}}, view, trace.Options{})
	test.Equate(t, len(path), 4)

	// open portal: nothing drawn
	w.Silhouette = geometry.SilhouetteOpen
	path = trace.Plan(&geometry.Scene{Walls: []geometry.WallSegment{w}}, view, trace.Options{})
	test.Equate(t, len(path), 0)
}

func TestEmptyScene(t *testing.T) {
	path := trace.Plan(&geometry.Scene{}, view, trace.Options{})
	test.Equate(t, len(path), 0)
}

func TestEntityBox(t *testing.T) {
	e := geometry.EntitySprite{X: 160, YTop: 80, YBottom: 120, Height: 40, Distance: 100}
	path := trace.Plan(&geometry.Scene{Entities: []geometry.EntitySprite{e}}, view, trace.Options{})

	// closed box
	test.Equate(t, len(path), 5)
	test.Equate(t, path[0].X, path[4].X)
	test.Equate(t, path[0].Y, path[4].Y)

	// box is horizontally centred on the sprite
	test.EquateNear(t, path[0].X+path[1].X, 2*(160.0/320.0*2-1), 1e-9)
}

func TestWeaponGlyph(t *testing.T) {
	scene := &geometry.Scene{Weapon: geometry.WeaponMarker{X: 160, Y: 168, Visible: true}}
	path := trace.Plan(scene, view, trace.Options{})

	// closed diamond
	test.Equate(t, len(path), 5)
	test.Equate(t, path[0].X, path[4].X)

	// not visible: nothing emitted
	scene.Weapon.Visible = false
	path = trace.Plan(scene, view, trace.Options{})
	test.Equate(t, len(path), 0)
}

func TestShapeOrder(t *testing.T) {
	// walls then entities then weapon, each in arrival order
	scene := &geometry.Scene{
		Walls: []geometry.WallSegment{solidWall()},
		Entities: []geometry.EntitySprite{
			{X: 10, YTop: 10, YBottom: 30, Height: 20, Distance: 10},
		},
		Weapon: geometry.WeaponMarker{X: 160, Y: 168, Visible: true},
	}

	path := trace.Plan(scene, view, trace.Options{})

	// wall quad (5) + entity box (5) + weapon diamond (5)
	test.Equate(t, len(path), 15)

	// the first point belongs to the wall, the last to the weapon glyph
	test.EquateNear(t, path[0].X, -1, 1e-9)
	test.EquateNear(t, path[14].Y, -(168.0-8.0)/100.0+1, 1e-9)
}

func TestReorderShortensRetrace(t *testing.T) {
	// three widely separated entity boxes delivered in a deliberately bad
	// order. reordering must not change the number of points and must not
	// lengthen the total path
	scene := &geometry.Scene{
		Entities: []geometry.EntitySprite{
			{X: 10, YTop: 10, YBottom: 30, Height: 20, Distance: 10},
			{X: 300, YTop: 150, YBottom: 190, Height: 40, Distance: 10},
			{X: 20, YTop: 40, YBottom: 60, Height: 20, Distance: 10},
		},
	}

	arrival := trace.Plan(scene, view, trace.Options{})
	reordered := trace.Plan(scene, view, trace.Options{Reorder: true})

	test.Equate(t, len(reordered), len(arrival))
	test.ExpectedSuccess(t, reordered.Length() <= arrival.Length())
}

func TestPathLength(t *testing.T) {
	p := trace.Path{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	test.EquateNear(t, p.Length(), 2, 1e-9)

	test.Equate(t, trace.Path{}.Length(), 0.0)
}
