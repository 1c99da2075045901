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

package protocol

import (
	"encoding/json"

	"github.com/scopetrace/scopetrace/curated"
)

// KeyEvent is the payload of a MsgKeyEvent message. Key codes follow the
// doomgeneric convention used by the engine side.
type KeyEvent struct {
	Pressed bool `json:"pressed"`
	Key     int  `json:"key"`
}

// Encode the key event as a MsgKeyEvent payload.
func (k KeyEvent) Encode() ([]byte, error) {
	b, err := json.Marshal(k)
	if err != nil {
		return nil, curated.Errorf("protocol: %v", err)
	}
	return b, nil
}

// DecodeKeyEvent interprets a MsgKeyEvent payload.
func DecodeKeyEvent(payload []byte) (KeyEvent, error) {
	var k KeyEvent
	if err := json.Unmarshal(payload, &k); err != nil {
		return KeyEvent{}, curated.Errorf("protocol: %v", err)
	}
	return k, nil
}

// Screenshot is the payload of a MsgScreenshot message. The engine sends it
// when a raster snapshot of its own display has been saved, for later
// combination with a snapshot of the scope screen. The renderer never
// processes the image data itself.
type Screenshot struct {
	SDLPath string `json:"sdl_path"`
}

// Encode the screenshot notification as a MsgScreenshot payload.
func (s Screenshot) Encode() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, curated.Errorf("protocol: %v", err)
	}
	return b, nil
}

// DecodeScreenshot interprets a MsgScreenshot payload.
func DecodeScreenshot(payload []byte) (Screenshot, error) {
	var s Screenshot
	if err := json.Unmarshal(payload, &s); err != nil {
		return Screenshot{}, curated.Errorf("protocol: %v", err)
	}
	return s, nil
}
