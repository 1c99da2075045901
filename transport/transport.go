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

// Package transport manages the byte-stream connection between the renderer
// and the geometry engine. A connection is an owned handle, not process
// state: every operation happens through a *Conn and any number of
// connections can exist independently, which is also what makes the package
// testable against in-memory pipes.
//
// The renderer is the listening side. It accepts the engine's connection and
// completes the handshake by sending an init-complete message; the engine
// sends no frame data until it has seen it. Dial() implements the opposite
// role for tests and for any producer written in Go.
//
// Message receipt is serviced by a goroutine owned by the Conn. It reads
// whole messages, enforces the payload length ceiling, discards unknown
// message types in full (forward compatibility requires their payloads be
// consumed to preserve framing) and hands everything else over on a bounded
// channel. Receipt of a shutdown message ends the stream: Receive() and
// PollReceive() report io.EOF once the channel drains.
package transport

import (
	"io"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/scopetrace/scopetrace/curated"
	"github.com/scopetrace/scopetrace/logger"
	"github.com/scopetrace/scopetrace/protocol"
)

// ConnError is the pattern for failures of the connection itself: refused
// connections, writes to a closed peer, reads that fail mid-message. These
// are fatal because no further data can legitimately flow.
const ConnError = "connection error: %v"

// ProtocolError is the pattern for framing violations, currently only a
// declared payload length above the ceiling. Fatal for the connection: once
// framing is broken the stream position cannot be trusted.
const ProtocolError = "protocol error: %v"

// number of received messages that can be held before the reader applies
// backpressure to the peer.
const pendingLimit = 32

// Options for Listen() and Dial(). The zero value selects defaults.
type Options struct {
	// ceiling on the declared payload length of received messages. zero
	// selects protocol.MaxPayload.
	MaxPayload uint32
}

// Conn is one established, handshaken connection.
type Conn struct {
	conn       net.Conn
	maxPayload uint32

	sendCrit sync.Mutex
	closed   bool

	done chan struct{}
	recv chan protocol.Message

	errCrit sync.Mutex
	readErr error
}

func newConn(conn net.Conn, opts Options) *Conn {
	c := &Conn{
		conn:       conn,
		maxPayload: opts.MaxPayload,
		done:       make(chan struct{}),
		recv:       make(chan protocol.Message, pendingLimit),
	}
	go c.readLoop()
	return c
}

func (c *Conn) setReadErr(err error) {
	c.errCrit.Lock()
	defer c.errCrit.Unlock()
	c.readErr = err
}

func (c *Conn) getReadErr() error {
	c.errCrit.Lock()
	defer c.errCrit.Unlock()
	return c.readErr
}

// readLoop owns the read side of the connection.
func (c *Conn) readLoop() {
	defer close(c.recv)

	for {
		m, err := protocol.Read(c.conn, c.maxPayload)
		if err != nil {
			select {
			case <-c.done:
				// the conn was closed locally. not an error
				return
			default:
			}

			if err == io.EOF {
				// peer closed without a shutdown message. treat as an
				// orderly end of stream
				return
			}
			if curated.Is(err, protocol.OversizePayload) {
				c.setReadErr(curated.Errorf(ProtocolError, err))
			} else {
				c.setReadErr(curated.Errorf(ConnError, err))
			}
			return
		}

		switch {
		case m.Type == protocol.MsgShutdown:
			// cooperative shutdown. the message currently being read was
			// finished (above) and nothing more will arrive
			return

		case !m.Type.Known():
			// read in full and discarded. not an error
			logger.Logf("transport", "discarding unknown message type %#02x (%d bytes)", uint32(m.Type), len(m.Payload))
			continue
		}

		select {
		case c.recv <- m:
		case <-c.done:
			return
		}
	}
}

// Send one message atomically: header then payload with no interleaving with
// other sends. Fails with ConnError if the connection has been closed or the
// write cannot be completed.
func (c *Conn) Send(t protocol.MsgType, payload []byte) error {
	c.sendCrit.Lock()
	defer c.sendCrit.Unlock()

	if c.closed {
		return curated.Errorf(ConnError, "not connected")
	}

	if err := protocol.Write(c.conn, protocol.Message{Type: t, Payload: payload}); err != nil {
		return curated.Errorf(ConnError, err)
	}
	return nil
}

// Receive blocks until a message arrives. Returns io.EOF once the stream has
// ended cleanly (shutdown message or peer close); any other error means the
// connection or the framing has failed.
func (c *Conn) Receive() (protocol.Message, error) {
	m, ok := <-c.recv
	if !ok {
		return protocol.Message{}, c.endOfStream()
	}
	return m, nil
}

// PollReceive returns immediately. The second return value is false if no
// message is pending. Errors as for Receive().
func (c *Conn) PollReceive() (protocol.Message, bool, error) {
	select {
	case m, ok := <-c.recv:
		if !ok {
			return protocol.Message{}, false, c.endOfStream()
		}
		return m, true, nil
	default:
		return protocol.Message{}, false, nil
	}
}

func (c *Conn) endOfStream() error {
	if err := c.getReadErr(); err != nil {
		return err
	}
	return io.EOF
}

// Close the connection. A shutdown message is sent if the connection is
// still live; it is the last message this side will emit. Close is
// idempotent and safe to call after a failure.
func (c *Conn) Close() error {
	c.sendCrit.Lock()
	if c.closed {
		c.sendCrit.Unlock()
		return nil
	}
	c.closed = true

	// best effort. the peer may already be gone
	_ = protocol.Write(c.conn, protocol.Message{Type: protocol.MsgShutdown})
	c.sendCrit.Unlock()

	close(c.done)
	if err := c.conn.Close(); err != nil {
		return curated.Errorf(ConnError, err)
	}
	return nil
}

// Dial connects to a listening renderer and blocks until the handshake
// completes. Per the handshake contract, the first message on the wire must
// be init-complete; its payload is discarded. Anything else, a connection
// failure or a truncated handshake fails with ConnError.
func Dial(endpoint string, opts Options) (*Conn, error) {
	network, address := parseEndpoint(endpoint)

	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, curated.Errorf(ConnError, err)
	}

	m, err := protocol.Read(conn, opts.MaxPayload)
	if err != nil {
		conn.Close()
		return nil, curated.Errorf(ConnError, err)
	}
	if m.Type != protocol.MsgInitComplete {
		conn.Close()
		return nil, curated.Errorf(ConnError, curated.Errorf("handshake: expected init complete, got %s", m.Type))
	}

	return newConn(conn, opts), nil
}

// Server listens for the engine's connection.
type Server struct {
	listener net.Listener
	network  string
	address  string
	opts     Options
}

// Listen for connections at the endpoint. Endpoints take the form
// "tcp://host:port", "unix:///path" or a bare filesystem path, which is
// interpreted as a unix domain socket.
func Listen(endpoint string, opts Options) (*Server, error) {
	network, address := parseEndpoint(endpoint)

	if network == "unix" {
		// a stale socket file from a previous run prevents binding
		_ = os.Remove(address)
	}

	l, err := net.Listen(network, address)
	if err != nil {
		return nil, curated.Errorf(ConnError, err)
	}

	logger.Logf("transport", "listening at %s", endpoint)

	return &Server{
		listener: l,
		network:  network,
		address:  address,
		opts:     opts,
	}, nil
}

// Accept one connection and complete the handshake by sending the
// init-complete message. Blocks until a peer connects.
func (s *Server) Accept() (*Conn, error) {
	conn, err := s.listener.Accept()
	if err != nil {
		return nil, curated.Errorf(ConnError, err)
	}

	if err := protocol.Write(conn, protocol.Message{Type: protocol.MsgInitComplete, Payload: []byte("{}")}); err != nil {
		conn.Close()
		return nil, curated.Errorf(ConnError, err)
	}

	logger.Logf("transport", "peer connected from %s", peerName(conn))

	return newConn(conn, s.opts), nil
}

// Endpoint returns the endpoint the server is actually listening at. Useful
// when the requested endpoint left the port to the operating system.
func (s *Server) Endpoint() string {
	return s.network + "://" + s.listener.Addr().String()
}

// Close the listener. For unix domain sockets the socket file is removed.
func (s *Server) Close() error {
	err := s.listener.Close()
	if s.network == "unix" {
		_ = os.Remove(s.address)
	}
	if err != nil {
		return curated.Errorf(ConnError, err)
	}
	return nil
}

func parseEndpoint(endpoint string) (network string, address string) {
	switch {
	case strings.HasPrefix(endpoint, "tcp://"):
		return "tcp", strings.TrimPrefix(endpoint, "tcp://")
	case strings.HasPrefix(endpoint, "unix://"):
		return "unix", strings.TrimPrefix(endpoint, "unix://")
	}
	return "unix", endpoint
}

func peerName(conn net.Conn) string {
	if a := conn.RemoteAddr(); a != nil && a.String() != "" {
		return a.String()
	}
	return "unnamed peer"
}
