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

// Package protocol implements the message framing shared with the geometry
// engine. The wire format must remain bit-exact with the engine side:
//
//	[4 bytes: message type, little-endian]
//	[4 bytes: payload length, little-endian]
//	[payload bytes]
//
// A zero length payload is allowed. Payloads are structured JSON records
// specific to the message type. The frame geometry payload is decoded by the
// geometry package; the small fixed payloads (key events, screenshot
// notifications) are encoded and decoded here.
package protocol

import (
	"encoding/binary"
	"io"

	"github.com/scopetrace/scopetrace/curated"
)

// MsgType identifies the kind of message being framed.
type MsgType uint32

// List of valid MsgType values. The numeric values are part of the wire
// protocol and must not change.
const (
	MsgFrameData    MsgType = 0x01
	MsgKeyEvent     MsgType = 0x02
	MsgInitComplete MsgType = 0x03
	MsgShutdown     MsgType = 0x04
	MsgScreenshot   MsgType = 0x05
)

func (t MsgType) String() string {
	switch t {
	case MsgFrameData:
		return "frame data"
	case MsgKeyEvent:
		return "key event"
	case MsgInitComplete:
		return "init complete"
	case MsgShutdown:
		return "shutdown"
	case MsgScreenshot:
		return "screenshot"
	}
	return "unknown"
}

// Known returns false for message types outside the defined set. Unknown
// types are not an error on receipt. They must be read in full and discarded
// in order to preserve the framing of subsequent messages.
func (t MsgType) Known() bool {
	return t >= MsgFrameData && t <= MsgScreenshot
}

// HeaderLength is the fixed size of the message header in bytes.
const HeaderLength = 8

// MaxPayload is the default ceiling on the declared payload length. It
// matches the socket buffer budget used by the engine side.
const MaxPayload = 1048576

// OversizePayload is the error pattern returned by Read() when the declared
// payload length exceeds the ceiling. Once this happens the stream position
// can no longer be trusted.
const OversizePayload = "oversize payload: declared length %d exceeds maximum %d"

// Message is a single framed message.
type Message struct {
	Type    MsgType
	Payload []byte
}

// Write one message to w. The header and payload are assembled into a single
// buffer, owned by this call, so that the message reaches the io.Writer in
// one piece.
func Write(w io.Writer, m Message) error {
	b := make([]byte, HeaderLength+len(m.Payload))
	binary.LittleEndian.PutUint32(b[0:], uint32(m.Type))
	binary.LittleEndian.PutUint32(b[4:], uint32(len(m.Payload)))
	copy(b[HeaderLength:], m.Payload)

	if _, err := w.Write(b); err != nil {
		return curated.Errorf("protocol: %v", err)
	}
	return nil
}

// Read one message from r. Blocks until a full message has been read. The
// declared payload length is checked against maxPayload before any payload
// bytes are read; a value of 0 for maxPayload selects the MaxPayload
// default.
//
// An error from the underlying reader, including io.EOF, is returned
// unwrapped so that the caller can distinguish an orderly close from a
// failure mid-message.
func Read(r io.Reader, maxPayload uint32) (Message, error) {
	if maxPayload == 0 {
		maxPayload = MaxPayload
	}

	var hdr [HeaderLength]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Message{}, err
	}

	m := Message{
		Type: MsgType(binary.LittleEndian.Uint32(hdr[0:])),
	}
	length := binary.LittleEndian.Uint32(hdr[4:])

	if length > maxPayload {
		return Message{}, curated.Errorf(OversizePayload, length, maxPayload)
	}

	if length > 0 {
		m.Payload = make([]byte, length)
		if _, err := io.ReadFull(r, m.Payload); err != nil {
			return Message{}, err
		}
	}

	return m, nil
}
