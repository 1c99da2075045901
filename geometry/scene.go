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

// Package geometry defines the typed scene received from the engine once per
// frame, and the decoding of the frame-data payload into it. A Scene is
// immutable after decode; each frame produces a fresh value.
package geometry

import (
	"encoding/json"
	"fmt"
)

// View is the engine's declared view dimensions in pixels. All screen-space
// coordinates in a Scene lie within the view. The view is supplied by
// configuration, not by the frame payload.
type View struct {
	Width  int
	Height int
}

// Silhouette classifies which edges of a wall segment occlude, which in turn
// selects the edges the planner draws. The numeric values follow the
// engine's drawseg silhouette field.
type Silhouette int

// List of valid Silhouette values.
const (
	// an open portal between sectors. no edges are drawn
	SilhouetteOpen Silhouette = 0

	// only the lower part of the wall occludes. the top edge is open and is
	// not drawn
	SilhouetteBottom Silhouette = 1

	// only the upper part of the wall occludes. the bottom edge is open and
	// is not drawn
	SilhouetteTop Silhouette = 2

	// a fully solid wall. all four edges are drawn
	SilhouetteSolid Silhouette = 3
)

// WallSegment is the projected silhouette of one wall. The top and bottom
// y values differ between the two ends because of perspective.
type WallSegment struct {
	X1       int
	Y1Top    int
	Y1Bottom int
	X2       int
	Y2Top    int
	Y2Bottom int

	// distance from the viewpoint, scaled by the engine into [0,999]
	Distance int

	Silhouette Silhouette
}

// walls arrive as flat 8-tuples rather than as objects. the order of the
// tuple is part of the wire format.
func (w *WallSegment) UnmarshalJSON(b []byte) error {
	var tuple []int
	if err := json.Unmarshal(b, &tuple); err != nil {
		return err
	}
	if len(tuple) != 8 {
		return fmt.Errorf("wall tuple has %d fields, expected 8", len(tuple))
	}

	w.X1 = tuple[0]
	w.Y1Top = tuple[1]
	w.Y1Bottom = tuple[2]
	w.X2 = tuple[3]
	w.Y2Top = tuple[4]
	w.Y2Bottom = tuple[5]
	w.Distance = tuple[6]
	w.Silhouette = Silhouette(tuple[7])

	return nil
}

// MarshalJSON emits the 8-tuple form. In normal operation the renderer never
// sends walls; the encoder exists for tests and for the plot mode's saved
// frame files.
func (w WallSegment) MarshalJSON() ([]byte, error) {
	return json.Marshal([]int{w.X1, w.Y1Top, w.Y1Bottom, w.X2, w.Y2Top, w.Y2Bottom, w.Distance, int(w.Silhouette)})
}

// EntitySprite is the projected bounding extent of a thing in the scene.
type EntitySprite struct {
	X       int `json:"x"`
	YTop    int `json:"y_top"`
	YBottom int `json:"y_bottom"`

	// height in pixels. the engine clamps this to a floor of 5 so that
	// distant entities remain visible
	Height int `json:"height"`

	// the engine's thing-type tag. opaque to the renderer
	Type int `json:"type"`

	Distance int `json:"distance"`
}

// WeaponMarker is the anchor of the player weapon overlay. When Visible is
// false the other fields have no meaning.
type WeaponMarker struct {
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Visible bool `json:"visible"`
}

// Scene is the complete geometry of one frame.
type Scene struct {
	Frame    int            `json:"frame"`
	Walls    []WallSegment  `json:"walls"`
	Entities []EntitySprite `json:"entities"`
	Weapon   WeaponMarker   `json:"weapon"`
}
