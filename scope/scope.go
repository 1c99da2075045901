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

// Package scope is the playback discipline that decouples the engine's
// variable tick rate from the audio hardware's fixed sample clock. The Sink
// holds at most one pending buffer: the newest complete frame always wins
// and a slow consumer never queues stale frames. If no new frame arrives in
// time the current buffer repeats, which on the display simply means the
// same picture is traced again.
package scope

import (
	"sync/atomic"

	"github.com/scopetrace/scopetrace/curated"
	"github.com/scopetrace/scopetrace/synth"
)

// Output is anything that can consume the sample buffers produced by the
// pipeline: the audio device, a WAV recorder, or both at once via Tee.
type Output interface {
	Submit(buf synth.Buffer) error
	Close() error
}

// Sink mediates between the frame pipeline and whatever is draining samples
// at the hardware cadence.
//
// Submit() may be called from any goroutine and never blocks. Pull() must
// only ever be called from a single goroutine, the one servicing the audio
// device. The handover between them is a single atomic pointer exchange, so
// the puller can never observe a partially written buffer: a buffer is fully
// populated before it is submitted and never touched afterwards.
type Sink struct {
	pending atomic.Pointer[synth.Buffer]

	// owned by the Pull goroutine
	current synth.Buffer
	pos     int
}

// NewSink is the preferred method of initialisation for the Sink type.
func NewSink() *Sink {
	return &Sink{}
}

// Submit the buffer that playback should move to. The swap takes effect at
// the next full-frame boundary, never mid-trace, so a shape is never left
// half drawn. Submitting again before the boundary replaces the previous
// submission: latest frame wins.
func (s *Sink) Submit(buf synth.Buffer) error {
	if len(buf)%2 != 0 {
		return curated.Errorf("scope: %v", "buffer is not whole sample pairs")
	}

	// an empty buffer means an empty scene. there is nothing to trace so
	// the previous frame persists
	if len(buf) == 0 {
		return nil
	}

	s.pending.Store(&buf)
	return nil
}

// Pull fills out with the next samples of the trace. The audio device's own
// clock decides when and how much. If the current buffer is exhausted it is
// repeated; before any buffer has been submitted the output is silence,
// which parks the beam at the centre of the screen.
func (s *Sink) Pull(out []float32) {
	for i := 0; i < len(out); {
		// a frame boundary is the only point at which a newly submitted
		// buffer is taken up
		if s.pos == 0 {
			if p := s.pending.Swap(nil); p != nil {
				s.current = *p
			}
		}

		if len(s.current) == 0 {
			for ; i < len(out); i++ {
				out[i] = 0
			}
			return
		}

		n := copy(out[i:], s.current[s.pos:])
		i += n
		s.pos += n
		if s.pos >= len(s.current) {
			s.pos = 0
		}
	}
}

// Tee duplicates submissions across several outputs. Used to record the
// sample stream to disk while it is playing.
type Tee struct {
	outputs []Output
}

// NewTee is the preferred method of initialisation for the Tee type.
func NewTee(outputs ...Output) *Tee {
	return &Tee{outputs: outputs}
}

// Submit implements the Output interface.
func (t *Tee) Submit(buf synth.Buffer) error {
	for _, o := range t.outputs {
		if err := o.Submit(buf); err != nil {
			return err
		}
	}
	return nil
}

// Close implements the Output interface. All outputs are closed even if one
// of them fails; the first failure is returned.
func (t *Tee) Close() error {
	var rerr error
	for _, o := range t.outputs {
		if err := o.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}
	return rerr
}
