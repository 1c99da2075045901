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

// Package wavwriter records the sample stream to disk as a 16-bit stereo
// WAV file. Playing the file through any sound card reproduces the trace on
// the scope, which makes it the cheapest way to test a hardware setup with
// no engine and no renderer running. Note that samples are buffered in
// memory in their entirety and written on Close(). It is therefore only
// suitable for short recordings and testing purposes.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/scopetrace/scopetrace/curated"
	"github.com/scopetrace/scopetrace/logger"
	"github.com/scopetrace/scopetrace/synth"
)

// Writer accumulates submitted buffers. It implements the scope.Output
// interface.
type Writer struct {
	filename   string
	sampleRate int
	data       []int
	closed     bool
}

// New is the preferred method of initialisation for the Writer type.
func New(filename string, sampleRate int) *Writer {
	return &Writer{
		filename:   filename,
		sampleRate: sampleRate,
		data:       make([]int, 0),
	}
}

// Submit implements the scope.Output interface. Unlike a live sink there is
// no repetition here: each submitted buffer is recorded exactly once, in
// submission order.
func (w *Writer) Submit(buf synth.Buffer) error {
	if w.closed {
		return curated.Errorf("wavwriter: %v", "writer is closed")
	}
	for _, v := range buf {
		w.data = append(w.data, scale(v))
	}
	return nil
}

// Repeat the buffer n times. Used by the PATTERN mode's -wav flag to
// stretch a calibration pattern to a listenable duration.
func (w *Writer) Repeat(buf synth.Buffer, n int) error {
	for i := 0; i < n; i++ {
		if err := w.Submit(buf); err != nil {
			return err
		}
	}
	return nil
}

// Close implements the scope.Output interface. The WAV file is created and
// written in full. Closing a second time is a no-op.
func (w *Writer) Close() (rerr error) {
	if w.closed {
		return nil
	}
	w.closed = true

	f, err := os.Create(w.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewEncoder(f, w.sampleRate, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  w.sampleRate,
		},
		Data:           w.data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	logger.Logf("wavwriter", "%d samples written to %s", len(w.data)/2, w.filename)

	return nil
}

// scale converts a normalised sample to the signed 16-bit integer range.
func scale(v float32) int {
	s := int(v * 32767)
	if s > 32767 {
		s = 32767
	} else if s < -32767 {
		s = -32767
	}
	return s
}
