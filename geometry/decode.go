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

package geometry

import (
	"encoding/json"

	"github.com/scopetrace/scopetrace/curated"
)

// GeometryError is the pattern for a frame payload whose fields are missing,
// malformed or out of their declared range. Recoverable: the caller's policy
// decides whether to skip the frame or to treat repeated failures as a
// desynchronised peer.
const GeometryError = "geometry error: %v"

// limit of the engine's distance scale.
const maxDistance = 999

// floor on the declared entity height.
const minEntityHeight = 5

// the payload with optional fields made distinguishable from their zero
// values. a frame without a walls field is malformed; a frame with an empty
// walls field is a legitimate (if unusual) scene.
type framePayload struct {
	Frame    *int            `json:"frame"`
	Walls    *[]WallSegment  `json:"walls"`
	Entities *[]EntitySprite `json:"entities"`
	Weapon   *WeaponMarker   `json:"weapon"`
}

// Decode a frame-data payload into a Scene. Structural problems and values
// outside their declared ranges fail with GeometryError naming the offending
// field. A failed decode has no effect on the transport; the payload has
// already been consumed in full.
func Decode(payload []byte, view View) (*Scene, error) {
	var f framePayload
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil, curated.Errorf(GeometryError, err)
	}

	switch {
	case f.Frame == nil:
		return nil, curated.Errorf(GeometryError, "missing field: frame")
	case f.Walls == nil:
		return nil, curated.Errorf(GeometryError, "missing field: walls")
	case f.Entities == nil:
		return nil, curated.Errorf(GeometryError, "missing field: entities")
	case f.Weapon == nil:
		return nil, curated.Errorf(GeometryError, "missing field: weapon")
	}

	scene := &Scene{
		Frame:    *f.Frame,
		Walls:    *f.Walls,
		Entities: *f.Entities,
		Weapon:   *f.Weapon,
	}

	for i := range scene.Walls {
		if err := validateWall(&scene.Walls[i], view); err != nil {
			return nil, curated.Errorf(GeometryError, curated.Errorf("walls[%d]: %v", i, err))
		}
	}
	for i := range scene.Entities {
		if err := validateEntity(&scene.Entities[i], view); err != nil {
			return nil, curated.Errorf(GeometryError, curated.Errorf("entities[%d]: %v", i, err))
		}
	}

	return scene, nil
}

func validateWall(w *WallSegment, view View) error {
	if w.X1 > w.X2 {
		return curated.Errorf("x1 %d greater than x2 %d", w.X1, w.X2)
	}
	if w.X1 < 0 || w.X1 >= view.Width {
		return curated.Errorf("x1 %d outside view width %d", w.X1, view.Width)
	}
	if w.X2 < 0 || w.X2 >= view.Width {
		return curated.Errorf("x2 %d outside view width %d", w.X2, view.Width)
	}
	for _, y := range []struct {
		name  string
		value int
	}{
		{"y1_top", w.Y1Top},
		{"y1_bottom", w.Y1Bottom},
		{"y2_top", w.Y2Top},
		{"y2_bottom", w.Y2Bottom},
	} {
		if y.value < 0 || y.value >= view.Height {
			return curated.Errorf("%s %d outside view height %d", y.name, y.value, view.Height)
		}
	}
	if w.Distance < 0 || w.Distance > maxDistance {
		return curated.Errorf("distance %d outside [0,%d]", w.Distance, maxDistance)
	}
	if w.Silhouette < SilhouetteOpen || w.Silhouette > SilhouetteSolid {
		return curated.Errorf("silhouette %d outside [0,3]", int(w.Silhouette))
	}
	return nil
}

func validateEntity(e *EntitySprite, view View) error {
	if e.X < 0 || e.X >= view.Width {
		return curated.Errorf("x %d outside view width %d", e.X, view.Width)
	}
	if e.YTop < 0 || e.YTop >= view.Height {
		return curated.Errorf("y_top %d outside view height %d", e.YTop, view.Height)
	}
	if e.YBottom < 0 || e.YBottom >= view.Height {
		return curated.Errorf("y_bottom %d outside view height %d", e.YBottom, view.Height)
	}
	if e.Height < minEntityHeight {
		return curated.Errorf("height %d below floor of %d", e.Height, minEntityHeight)
	}
	if e.Distance < 0 || e.Distance > maxDistance {
		return curated.Errorf("distance %d outside [0,%d]", e.Distance, maxDistance)
	}
	return nil
}
