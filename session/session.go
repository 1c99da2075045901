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

// Package session drives one engine connection through the rendering
// pipeline: receive a frame, decode the scene, plan the beam path,
// synthesize the waveform and hand it to the output.
//
// The engine produces frames at its own rate and the scope consumes them at
// its own. The session never lets the connection back up: whenever more than
// one frame is waiting, the older ones are dropped undecoded and only the
// newest is rendered.
package session

import (
	"context"
	"io"

	"github.com/scopetrace/scopetrace/curated"
	"github.com/scopetrace/scopetrace/geometry"
	"github.com/scopetrace/scopetrace/logger"
	"github.com/scopetrace/scopetrace/metrics"
	"github.com/scopetrace/scopetrace/protocol"
	"github.com/scopetrace/scopetrace/scope"
	"github.com/scopetrace/scopetrace/synth"
	"github.com/scopetrace/scopetrace/trace"
	"github.com/scopetrace/scopetrace/transport"
)

// Desynchronised is returned by Run() when the engine has sent this many
// undecodable frames in a row. One bad frame can be survived; a run of them
// means the two sides no longer agree about the protocol.
const Desynchronised = "desynchronised: %d consecutive undecodable frames"

// how many bad frames in a row end the session.
const badFrameLimit = 3

// Options for a Session. The zero value of every field selects a sensible
// default.
type Options struct {
	View  geometry.View
	Trace trace.Options
	Synth synth.Spec

	// key events to forward to the engine. may be nil
	Keys <-chan protocol.KeyEvent
}

// Session owns one connection for its lifetime.
type Session struct {
	conn *transport.Conn
	out  scope.Output
	opts Options

	collector *metrics.Collector

	badFrames int
}

// NewSession is the preferred method of initialisation for the Session type.
// The session takes responsibility for submitting to the output but not for
// closing it.
func NewSession(conn *transport.Conn, out scope.Output, opts Options) *Session {
	if opts.View.Width == 0 || opts.View.Height == 0 {
		opts.View = geometry.View{Width: 320, Height: 200}
	}
	return &Session{
		conn:      conn,
		out:       out,
		opts:      opts,
		collector: metrics.NewCollector(),
	}
}

// Run the session until the stream ends or the context is cancelled. A clean
// end of stream returns nil. The connection is closed on return.
func (s *Session) Run(ctx context.Context) error {
	defer s.conn.Close()

	// cancellation unblocks Receive() by closing the connection
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			s.conn.Close()
		case <-stopWatch:
		}
	}()

	if s.opts.Keys != nil {
		go s.forwardKeys()
	}

	for {
		m, err := s.conn.Receive()
		if err != nil {
			if err == io.EOF || ctx.Err() != nil {
				logger.Log("session", s.collector.Summary())
				return nil
			}
			return err
		}

		if m.Type != protocol.MsgFrameData {
			s.control(m)
			continue
		}

		frame, others := s.drain(m)
		for _, o := range others {
			s.control(o)
		}
		if err := s.frame(frame.Payload); err != nil {
			return err
		}
	}
}

// drain empties the receive queue, keeping only the newest frame. Any
// non-frame messages found along the way are returned in arrival order so
// they are not starved by a fast engine. Receive errors are left in place
// for the main loop's next Receive() to report.
func (s *Session) drain(frame protocol.Message) (protocol.Message, []protocol.Message) {
	var others []protocol.Message

	dropped := 0
	for {
		next, ok, err := s.conn.PollReceive()
		if err != nil || !ok {
			break
		}
		if next.Type != protocol.MsgFrameData {
			others = append(others, next)
			continue
		}
		frame = next
		dropped++
	}

	if dropped > 0 {
		logger.Logf("session", "dropped %d stale frame(s)", dropped)
	}

	return frame, others
}

// control handles the non-frame messages.
func (s *Session) control(m protocol.Message) {
	switch m.Type {
	case protocol.MsgScreenshot:
		sc, err := protocol.DecodeScreenshot(m.Payload)
		if err != nil {
			logger.Logf("session", "bad screenshot message: %v", err)
			return
		}
		logger.Logf("session", "screenshot requested (%s)", sc.SDLPath)

	case protocol.MsgInitComplete:
		// harmless repeat of the handshake message
		logger.Log("session", "unexpected init complete message")

	default:
		logger.Logf("session", "unhandled message type %s", m.Type)
	}
}

// frame renders one frame payload through the pipeline.
func (s *Session) frame(payload []byte) error {
	scene, err := geometry.Decode(payload, s.opts.View)
	if err != nil {
		s.badFrames++
		logger.Logf("session", "undecodable frame: %v", err)
		if s.badFrames >= badFrameLimit {
			return curated.Errorf(Desynchronised, s.badFrames)
		}
		return nil
	}
	s.badFrames = 0

	path := trace.Plan(scene, s.opts.View, s.opts.Trace)
	buf := synth.Synthesize(path, s.opts.Synth)

	if err := s.out.Submit(buf); err != nil {
		return err
	}

	s.collector.Frame(scene, buf.Pairs())
	return nil
}

// forwardKeys sends key events to the engine until the key channel or the
// connection closes.
func (s *Session) forwardKeys() {
	for ev := range s.opts.Keys {
		payload, err := ev.Encode()
		if err != nil {
			continue
		}
		if err := s.conn.Send(protocol.MsgKeyEvent, payload); err != nil {
			// the receive loop will report the connection failure
			return
		}
	}
}
