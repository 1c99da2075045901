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

// Package userinput turns terminal keystrokes into engine key events.
//
// The terminal is put into cbreak mode and read a byte at a time. A posix
// terminal only reports key presses, never releases, so every press is
// followed by a synthetic release once the key has been quiet for the hold
// period. Holding a key down refreshes the hold period on every repeat,
// which reads to the engine like a continuously held key.
package userinput

import (
	"os"
	"sync"
	"time"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"

	"github.com/scopetrace/scopetrace/logger"
	"github.com/scopetrace/scopetrace/protocol"
)

// engine key codes. low-ascii for printable keys and high values for the
// special keys, matching what the engine expects on the wire.
const (
	KeyUse        = 0xa2
	KeyFire       = 0xa3
	KeyLeftArrow  = 0xac
	KeyUpArrow    = 0xad
	KeyRightArrow = 0xae
	KeyDownArrow  = 0xaf
	KeyEscape     = 27
	KeyEnter      = 13
)

// how long a key stays pressed after its last repeat from the terminal.
const holdDuration = 180 * time.Millisecond

// how often held keys are checked for release.
const releaseTick = 40 * time.Millisecond

// Keyboard reads keystrokes from a terminal and emits paired press/release
// events on the Events channel.
type Keyboard struct {
	input *os.File

	// terminal attributes on entry, restored by Close()
	savedAttr unix.Termios

	// Events carries key events in the order they should be forwarded to
	// the engine. the channel is closed when the input stream ends.
	Events chan protocol.KeyEvent

	crit sync.Mutex
	held map[int]time.Time

	quit     chan struct{}
	quitOnce sync.Once
}

// NewKeyboard puts the input terminal into cbreak mode and starts reading
// from it. Close() must be called to restore the terminal.
func NewKeyboard(input *os.File) (*Keyboard, error) {
	kb := &Keyboard{
		input:  input,
		Events: make(chan protocol.KeyEvent, 32),
		held:   make(map[int]time.Time),
		quit:   make(chan struct{}),
	}

	if err := termios.Tcgetattr(input.Fd(), &kb.savedAttr); err != nil {
		return nil, err
	}

	raw := kb.savedAttr
	termios.Cfmakecbreak(&raw)
	if err := termios.Tcsetattr(input.Fd(), termios.TCIFLUSH, &raw); err != nil {
		return nil, err
	}

	go kb.readLoop()
	go kb.releaseLoop()

	return kb, nil
}

// Close restores the terminal and stops the release goroutine. the read
// goroutine ends on the next read from the input file.
func (kb *Keyboard) Close() {
	kb.quitOnce.Do(func() {
		close(kb.quit)
		_ = termios.Tcsetattr(kb.input.Fd(), termios.TCIFLUSH, &kb.savedAttr)
	})
}

// press emits a press event unless the key is already held, and refreshes
// the key's hold deadline either way.
func (kb *Keyboard) press(key int) {
	kb.crit.Lock()
	_, already := kb.held[key]
	kb.held[key] = time.Now()
	kb.crit.Unlock()

	if !already {
		kb.send(protocol.KeyEvent{Pressed: true, Key: key})
	}
}

func (kb *Keyboard) send(ev protocol.KeyEvent) {
	select {
	case kb.Events <- ev:
	case <-kb.quit:
	}
}

// releaseLoop emits release events for keys that have gone quiet.
func (kb *Keyboard) releaseLoop() {
	tick := time.NewTicker(releaseTick)
	defer tick.Stop()

	for {
		select {
		case <-kb.quit:
			return
		case now := <-tick.C:
			var expired []int
			kb.crit.Lock()
			for key, last := range kb.held {
				if now.Sub(last) >= holdDuration {
					delete(kb.held, key)
					expired = append(expired, key)
				}
			}
			kb.crit.Unlock()

			for _, key := range expired {
				kb.send(protocol.KeyEvent{Pressed: false, Key: key})
			}
		}
	}
}

// readLoop reads the terminal a byte at a time, decoding ansi escape
// sequences for the cursor keys.
func (kb *Keyboard) readLoop() {
	defer close(kb.Events)

	buf := make([]byte, 1)
	for {
		n, err := kb.input.Read(buf)
		if err != nil || n == 0 {
			return
		}

		select {
		case <-kb.quit:
			return
		default:
		}

		if buf[0] != 0x1b {
			if key, ok := mapKey(buf[0]); ok {
				kb.press(key)
			}
			continue
		}

		// escape sequence. a cursor key arrives as ESC [ A..D. a lone
		// escape byte is the escape key itself.
		if _, err := kb.input.Read(buf); err != nil {
			kb.press(KeyEscape)
			return
		}
		if buf[0] != '[' {
			kb.press(KeyEscape)
			continue
		}
		if _, err := kb.input.Read(buf); err != nil {
			return
		}

		switch buf[0] {
		case 'A':
			kb.press(KeyUpArrow)
		case 'B':
			kb.press(KeyDownArrow)
		case 'C':
			kb.press(KeyRightArrow)
		case 'D':
			kb.press(KeyLeftArrow)
		default:
			logger.Logf("userinput", "unhandled escape sequence (0x%02x)", buf[0])
		}
	}
}

// mapKey converts a terminal byte to an engine key code. wasd doubles for
// the cursor keys so that movement works on terminals that swallow ansi
// sequences.
func mapKey(b byte) (int, bool) {
	switch b {
	case 'w':
		return KeyUpArrow, true
	case 's':
		return KeyDownArrow, true
	case 'a':
		return KeyLeftArrow, true
	case 'd':
		return KeyRightArrow, true
	case ' ':
		return KeyUse, true
	case 'f':
		return KeyFire, true
	case '\r', '\n':
		return KeyEnter, true
	case 0x03:
		return KeyEscape, true
	}

	// remaining printable ascii passes through for menu responses
	if b >= 'a' && b <= 'z' || b >= '0' && b <= '9' {
		return int(b), true
	}

	return 0, false
}
