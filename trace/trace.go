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

// Package trace plans the path the electron beam follows for one scene. The
// plan is an ordered sequence of points in normalised device coordinates;
// adjacent points define a line the beam traces. There is no blanking
// channel, so the transition between two disjoint shapes is itself a visible
// line. The planner makes no attempt to hide it, only (optionally) to
// shorten it.
package trace

import (
	"math"

	"github.com/scopetrace/scopetrace/geometry"
)

// Point is a single beam position. Both coordinates lie in the bipolar range
// [-1,1]: -1 is full left/bottom deflection, +1 full right/top.
type Point struct {
	X float64
	Y float64
}

func (p Point) distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Path is the ordered point sequence for one full trace of a scene. It is
// consumed exactly once by the synthesizer.
type Path []Point

// Length is the total length of the path in normalised units.
func (p Path) Length() float64 {
	var l float64
	for i := 1; i < len(p); i++ {
		l += p[i-1].distance(p[i])
	}
	return l
}

// Options for the planner. The zero value reproduces the engine bridge's
// original behaviour.
type Options struct {
	// reorder shapes with a greedy nearest-neighbour tour to reduce the
	// length of visible retrace lines. off by default: the original draws
	// shapes strictly in arrival order
	Reorder bool
}

// pixel width floor for entity boxes.
const minEntityWidth = 5.0

// entity box width as a proportion of its height.
const entityAspect = 0.6

// half-extent of the weapon glyph in pixels.
const weaponGlyphRadius = 8.0

// Plan converts a scene into the path the beam will trace. Shapes are
// emitted in a fixed order; walls as received, then entities as received,
// then the weapon glyph; unless Options.Reorder is set. Consecutive shapes
// are joined implicitly by the line between the last point of one and the
// first point of the next.
//
// An empty scene plans to an empty path.
func Plan(scene *geometry.Scene, view geometry.View, opts Options) Path {
	shapes := make([]Path, 0, len(scene.Walls)+len(scene.Entities)+1)

	for i := range scene.Walls {
		if s := wallShape(&scene.Walls[i], view); len(s) > 0 {
			shapes = append(shapes, s)
		}
	}
	for i := range scene.Entities {
		shapes = append(shapes, entityShape(&scene.Entities[i], view))
	}
	if scene.Weapon.Visible {
		shapes = append(shapes, weaponShape(scene.Weapon, view))
	}

	if opts.Reorder {
		shapes = reorder(shapes)
	}

	var path Path
	for _, s := range shapes {
		path = append(path, s...)
	}
	return path
}

// normalise converts a screen-space coordinate to device coordinates. The
// screen origin is top-left with y increasing downwards; the scope origin is
// the centre with y increasing upwards, so y is inverted. Values are clamped
// to the bipolar range; shape construction can push coordinates (an entity
// box wider than the view, for example) past the screen edge.
func normalise(view geometry.View, x, y float64) Point {
	p := Point{
		X: x/float64(view.Width)*2 - 1,
		Y: -(y/float64(view.Height)*2 - 1),
	}
	p.X = math.Max(-1, math.Min(1, p.X))
	p.Y = math.Max(-1, math.Min(1, p.Y))
	return p
}

// wallShape emits the edges selected by the wall's silhouette as one
// connected polyline. A solid wall is a closed quad; a wall with an open
// edge omits that edge and remains open. An open portal emits nothing.
func wallShape(w *geometry.WallSegment, view geometry.View) Path {
	p1t := normalise(view, float64(w.X1), float64(w.Y1Top))
	p1b := normalise(view, float64(w.X1), float64(w.Y1Bottom))
	p2t := normalise(view, float64(w.X2), float64(w.Y2Top))
	p2b := normalise(view, float64(w.X2), float64(w.Y2Bottom))

	switch w.Silhouette {
	case geometry.SilhouetteSolid:
		// top, right, bottom, left
		return Path{p1t, p2t, p2b, p1b, p1t}

	case geometry.SilhouetteBottom:
		// top edge open: left, bottom, right
		return Path{p1t, p1b, p2b, p2t}

	case geometry.SilhouetteTop:
		// bottom edge open: left, top, right
		return Path{p1b, p1t, p2t, p2b}
	}

	// open portal
	return nil
}

// entityShape is a box centred on the sprite's x position. Width follows
// height so that entity boxes keep a rough figure aspect, with a floor so
// that distant entities never vanish.
func entityShape(e *geometry.EntitySprite, view geometry.View) Path {
	width := math.Max(minEntityWidth, float64(e.Height)*entityAspect)

	left := float64(e.X) - width/2
	right := float64(e.X) + width/2
	top := float64(e.YTop)
	bottom := float64(e.YBottom)

	tl := normalise(view, left, top)
	tr := normalise(view, right, top)
	br := normalise(view, right, bottom)
	bl := normalise(view, left, bottom)

	// closed box: top, right, bottom, left
	return Path{tl, tr, br, bl, tl}
}

// weaponShape is a small closed diamond anchored at the weapon marker.
func weaponShape(w geometry.WeaponMarker, view geometry.View) Path {
	x := float64(w.X)
	y := float64(w.Y)

	n := normalise(view, x, y-weaponGlyphRadius)
	e := normalise(view, x+weaponGlyphRadius, y)
	s := normalise(view, x, y+weaponGlyphRadius)
	o := normalise(view, x-weaponGlyphRadius, y)

	return Path{n, e, s, o, n}
}

// reorder applies a greedy nearest-neighbour tour over the shapes: from the
// end of each shape, the next shape drawn is the one whose first point is
// closest. This shortens visible retrace lines but is not optimal (the open
// question of a true travelling-salesman ordering is not worth the planning
// budget per frame).
func reorder(shapes []Path) []Path {
	ordered := make([]Path, 0, len(shapes))
	remaining := make([]Path, len(shapes))
	copy(remaining, shapes)

	cursor := Point{}
	for len(remaining) > 0 {
		nearest := 0
		nearestDist := math.Inf(1)
		for i, s := range remaining {
			if d := cursor.distance(s[0]); d < nearestDist {
				nearest = i
				nearestDist = d
			}
		}

		s := remaining[nearest]
		ordered = append(ordered, s)
		cursor = s[len(s)-1]
		remaining = append(remaining[:nearest], remaining[nearest+1:]...)
	}

	return ordered
}
