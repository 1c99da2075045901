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

package scope_test

import (
	"testing"

	"github.com/scopetrace/scopetrace/scope"
	"github.com/scopetrace/scopetrace/synth"
	"github.com/scopetrace/scopetrace/test"
)

// a recognisable buffer where every sample pair carries its frame number.
func frame(number int, pairs int) synth.Buffer {
	b := make(synth.Buffer, 0, pairs*2)
	for i := 0; i < pairs; i++ {
		b = append(b, float32(number), float32(number))
	}
	return b
}

func TestSilenceBeforeFirstSubmit(t *testing.T) {
	s := scope.NewSink()

	out := make([]float32, 8)
	out[0] = 99 // must be overwritten
	s.Pull(out)

	for _, v := range out {
		test.Equate(t, v, float32(0))
	}
}

func TestRepeat(t *testing.T) {
	s := scope.NewSink()
	test.ExpectedSuccess(t, s.Submit(frame(1, 4)))

	// pull three full frames worth. with no further submissions the frame
	// repeats rather than underrunning
	out := make([]float32, 24)
	s.Pull(out)

	for _, v := range out {
		test.Equate(t, v, float32(1))
	}
}

func TestSwapAtFrameBoundaryOnly(t *testing.T) {
	s := scope.NewSink()
	test.ExpectedSuccess(t, s.Submit(frame(1, 4)))

	// consume half of frame 1
	out := make([]float32, 4)
	s.Pull(out)
	test.Equate(t, out[0], float32(1))

	// frame 2 arrives mid-trace. the remainder of frame 1 still plays
	test.ExpectedSuccess(t, s.Submit(frame(2, 4)))
	s.Pull(out)
	for _, v := range out {
		test.Equate(t, v, float32(1))
	}

	// only now, at the boundary, does frame 2 take over
	s.Pull(out)
	for _, v := range out {
		test.Equate(t, v, float32(2))
	}
}

func TestLatestFrameWins(t *testing.T) {
	s := scope.NewSink()

	// frames 1 to 10 arrive while the puller is idle. none of them blocks
	// the producer and only the last is ever played
	for i := 1; i <= 10; i++ {
		test.ExpectedSuccess(t, s.Submit(frame(i, 4)))
	}

	out := make([]float32, 8)
	s.Pull(out)
	for _, v := range out {
		test.Equate(t, v, float32(10))
	}
}

func TestEmptySubmitKeepsLastBuffer(t *testing.T) {
	s := scope.NewSink()
	test.ExpectedSuccess(t, s.Submit(frame(1, 4)))

	out := make([]float32, 8)
	s.Pull(out)

	// an empty scene synthesizes to an empty buffer. the sink keeps
	// repeating what it last held
	test.ExpectedSuccess(t, s.Submit(synth.Buffer{}))
	s.Pull(out)
	for _, v := range out {
		test.Equate(t, v, float32(1))
	}
}

func TestOddBufferRejected(t *testing.T) {
	s := scope.NewSink()
	test.ExpectedFailure(t, s.Submit(make(synth.Buffer, 3)))
}

func TestPartialFramePull(t *testing.T) {
	s := scope.NewSink()
	test.ExpectedSuccess(t, s.Submit(frame(1, 5)))

	// pull sizes that do not divide the frame length still produce a
	// continuous stream
	out := make([]float32, 3)
	total := 0
	for i := 0; i < 10; i++ {
		s.Pull(out)
		for _, v := range out {
			test.Equate(t, v, float32(1))
		}
		total += len(out)
	}
	test.Equate(t, total, 30)
}

type countingOutput struct {
	submitted int
	closed    int
}

func (c *countingOutput) Submit(buf synth.Buffer) error {
	c.submitted++
	return nil
}

func (c *countingOutput) Close() error {
	c.closed++
	return nil
}

func TestTee(t *testing.T) {
	a := &countingOutput{}
	b := &countingOutput{}
	tee := scope.NewTee(a, b)

	test.ExpectedSuccess(t, tee.Submit(frame(1, 2)))
	test.ExpectedSuccess(t, tee.Submit(frame(2, 2)))
	test.ExpectedSuccess(t, tee.Close())

	test.Equate(t, a.submitted, 2)
	test.Equate(t, b.submitted, 2)
	test.Equate(t, a.closed, 1)
	test.Equate(t, b.closed, 1)
}
