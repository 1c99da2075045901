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

package transport_test

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/scopetrace/scopetrace/curated"
	"github.com/scopetrace/scopetrace/protocol"
	"github.com/scopetrace/scopetrace/test"
	"github.com/scopetrace/scopetrace/transport"
)

// connect returns a handshaken renderer/engine connection pair over a local
// tcp socket.
func connect(t *testing.T, opts transport.Options) (*transport.Conn, *transport.Conn) {
	t.Helper()

	srv, err := transport.Listen("tcp://127.0.0.1:0", opts)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })

	type dialResult struct {
		conn *transport.Conn
		err  error
	}
	dialled := make(chan dialResult)
	go func() {
		c, err := transport.Dial(srv.Endpoint(), opts)
		dialled <- dialResult{conn: c, err: err}
	}()

	renderer, err := srv.Accept()
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	d := <-dialled
	if d.err != nil {
		t.Fatalf("dial: %v", d.err)
	}

	t.Cleanup(func() {
		_ = renderer.Close()
		_ = d.conn.Close()
	})

	return renderer, d.conn
}

// receive with a timeout so that a faulty transport fails the test rather
// than hanging it.
func receive(t *testing.T, c *transport.Conn) (protocol.Message, error) {
	t.Helper()

	type result struct {
		m   protocol.Message
		err error
	}
	ch := make(chan result)
	go func() {
		m, err := c.Receive()
		ch <- result{m: m, err: err}
	}()

	select {
	case r := <-ch:
		return r.m, r.err
	case <-time.After(5 * time.Second):
		t.Fatalf("receive timed out")
		return protocol.Message{}, nil
	}
}

func TestSendReceive(t *testing.T) {
	renderer, engine := connect(t, transport.Options{})

	payload := []byte(`{"frame":1,"walls":[],"entities":[],"weapon":{"visible":false}}`)
	test.ExpectedSuccess(t, engine.Send(protocol.MsgFrameData, payload))

	m, err := receive(t, renderer)
	test.ExpectedSuccess(t, err)
	test.Equate(t, uint32(m.Type), uint32(protocol.MsgFrameData))
	test.Equate(t, string(m.Payload), string(payload))

	// reverse channel
	k, _ := protocol.KeyEvent{Pressed: true, Key: 0xac}.Encode()
	test.ExpectedSuccess(t, renderer.Send(protocol.MsgKeyEvent, k))

	m, err = receive(t, engine)
	test.ExpectedSuccess(t, err)
	test.Equate(t, uint32(m.Type), uint32(protocol.MsgKeyEvent))
}

func TestPollReceive(t *testing.T) {
	renderer, engine := connect(t, transport.Options{})

	// nothing pending
	_, ok, err := renderer.PollReceive()
	test.ExpectedSuccess(t, err)
	test.ExpectedFailure(t, ok)

	test.ExpectedSuccess(t, engine.Send(protocol.MsgFrameData, []byte("{}")))

	// poll until the reader goroutine has delivered the message
	var m protocol.Message
	deadline := time.Now().Add(5 * time.Second)
	for !ok {
		if time.Now().After(deadline) {
			t.Fatalf("poll timed out")
		}
		m, ok, err = renderer.PollReceive()
		test.ExpectedSuccess(t, err)
	}
	test.Equate(t, uint32(m.Type), uint32(protocol.MsgFrameData))
}

func TestShutdownEndsStream(t *testing.T) {
	renderer, engine := connect(t, transport.Options{})

	test.ExpectedSuccess(t, engine.Close())

	_, err := receive(t, renderer)
	test.ExpectedSuccess(t, err == io.EOF)
}

func TestCloseIdempotence(t *testing.T) {
	srv, err := transport.Listen("tcp://127.0.0.1:0", transport.Options{})
	test.ExpectedSuccess(t, err)
	defer srv.Close()

	// raw peer so we can count shutdown messages on the wire
	raw := make(chan net.Conn)
	go func() {
		c, err := net.Dial("tcp", srv.Endpoint()[len("tcp://"):])
		if err != nil {
			raw <- nil
			return
		}
		raw <- c
	}()

	renderer, err := srv.Accept()
	test.ExpectedSuccess(t, err)

	peer := <-raw
	if peer == nil {
		t.Fatalf("raw dial failed")
	}
	defer peer.Close()

	// consume the handshake
	m, err := protocol.Read(peer, 0)
	test.ExpectedSuccess(t, err)
	test.Equate(t, uint32(m.Type), uint32(protocol.MsgInitComplete))

	// close twice. the second call must not error and must not produce a
	// second shutdown message
	test.ExpectedSuccess(t, renderer.Close())
	test.ExpectedSuccess(t, renderer.Close())

	m, err = protocol.Read(peer, 0)
	test.ExpectedSuccess(t, err)
	test.Equate(t, uint32(m.Type), uint32(protocol.MsgShutdown))

	// the connection is now closed. the next read fails rather than
	// returning another message
	_, err = protocol.Read(peer, 0)
	test.ExpectedFailure(t, err)
}

func TestSendAfterClose(t *testing.T) {
	renderer, _ := connect(t, transport.Options{})

	test.ExpectedSuccess(t, renderer.Close())

	err := renderer.Send(protocol.MsgKeyEvent, []byte("{}"))
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, transport.ConnError))
}

func TestOversizePayloadTearsDown(t *testing.T) {
	renderer, engine := connect(t, transport.Options{MaxPayload: 64})

	// a legitimate message followed by an oversized one
	test.ExpectedSuccess(t, engine.Send(protocol.MsgFrameData, []byte("{}")))

	big := make([]byte, 128)
	test.ExpectedSuccess(t, engine.Send(protocol.MsgFrameData, big))

	m, err := receive(t, renderer)
	test.ExpectedSuccess(t, err)
	test.Equate(t, string(m.Payload), "{}")

	_, err = receive(t, renderer)
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, transport.ProtocolError))
}

func TestUnknownTypeSkipped(t *testing.T) {
	renderer, engine := connect(t, transport.Options{})

	test.ExpectedSuccess(t, engine.Send(protocol.MsgType(0x77), []byte("from the future")))
	test.ExpectedSuccess(t, engine.Send(protocol.MsgFrameData, []byte("{}")))

	// the unknown message is discarded silently. the next message received
	// is the frame data
	m, err := receive(t, renderer)
	test.ExpectedSuccess(t, err)
	test.Equate(t, uint32(m.Type), uint32(protocol.MsgFrameData))
}

func TestDialRejectsBadHandshake(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	test.ExpectedSuccess(t, err)
	defer l.Close()

	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		// send something other than init complete
		var hdr [protocol.HeaderLength]byte
		binary.LittleEndian.PutUint32(hdr[0:], uint32(protocol.MsgFrameData))
		c.Write(hdr[:])
		c.Close()
	}()

	_, err = transport.Dial("tcp://"+l.Addr().String(), transport.Options{})
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, transport.ConnError))
}
