// Package ipc provides the control channel between the lyrad daemon
// and local clients (lyractl, scripts).
//
// Messages are framed with a fixed 16-byte header followed by a JSON
// payload. Clients connect over a unix socket; the kernel already
// scopes access to the socket file's owner.
package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

const (
	ProtocolVersion = 1
	ProtocolMagic   = 0x4C495043 // "LIPC"
)

// MessageType identifies the type of IPC message.
type MessageType uint16

const (
	// Control messages (0x00xx)
	MsgPing  MessageType = 0x0001
	MsgPong  MessageType = 0x0002
	MsgError MessageType = 0x0005

	// Status messages (0x01xx)
	MsgStatusRequest  MessageType = 0x0100
	MsgStatusResponse MessageType = 0x0101

	// Tunable attributes (0x02xx)
	MsgGetAttrs     MessageType = 0x0200
	MsgGetAttrsResp MessageType = 0x0201
	MsgSetAttr      MessageType = 0x0202
	MsgSetAttrResp  MessageType = 0x0203
)

// Attribute names accepted by MsgSetAttr.
const (
	AttrMouseSpeedX    = "mouse_speed_x"
	AttrMouseSpeedY    = "mouse_speed_y"
	AttrPollIntervalMs = "poll_interval_ms"
)

// Header is the fixed-size message header (16 bytes).
type Header struct {
	Magic     uint32
	Version   uint8
	Flags     uint8
	Type      MessageType
	RequestID uint32
	Length    uint32 // Payload length, not including header
}

// HeaderSize is the size of the header in bytes.
const HeaderSize = 16

// maxPayload bounds a single message payload.
const maxPayload = 1 << 20

// Message wraps a header and payload.
type Message struct {
	Header  Header
	Payload []byte
}

// NewMessage creates a message with the given type and payload.
func NewMessage(msgType MessageType, requestID uint32, payload []byte) *Message {
	return &Message{
		Header: Header{
			Magic:     ProtocolMagic,
			Version:   ProtocolVersion,
			Type:      msgType,
			RequestID: requestID,
			Length:    uint32(len(payload)),
		},
		Payload: payload,
	}
}

// Write writes the header to a writer.
func (h *Header) Write(w io.Writer) error {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], h.Magic)
	buf[4] = h.Version
	buf[5] = h.Flags
	binary.BigEndian.PutUint16(buf[6:8], uint16(h.Type))
	binary.BigEndian.PutUint32(buf[8:12], h.RequestID)
	binary.BigEndian.PutUint32(buf[12:16], h.Length)
	_, err := w.Write(buf)
	return err
}

// ReadHeader reads and validates a header from a reader.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	h := &Header{
		Magic:     binary.BigEndian.Uint32(buf[0:4]),
		Version:   buf[4],
		Flags:     buf[5],
		Type:      MessageType(binary.BigEndian.Uint16(buf[6:8])),
		RequestID: binary.BigEndian.Uint32(buf[8:12]),
		Length:    binary.BigEndian.Uint32(buf[12:16]),
	}

	if h.Magic != ProtocolMagic {
		return nil, fmt.Errorf("invalid magic number: %x", h.Magic)
	}
	if h.Version > ProtocolVersion {
		return nil, fmt.Errorf("unsupported protocol version: %d", h.Version)
	}

	return h, nil
}

// Write writes the message to a writer.
func (m *Message) Write(w io.Writer) error {
	if err := m.Header.Write(w); err != nil {
		return err
	}
	if len(m.Payload) > 0 {
		_, err := w.Write(m.Payload)
		return err
	}
	return nil
}

// ReadMessage reads a complete message from a reader.
func ReadMessage(r io.Reader) (*Message, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	m := &Message{Header: *h}
	if h.Length > 0 {
		if h.Length > maxPayload {
			return nil, fmt.Errorf("payload too large: %d bytes", h.Length)
		}
		m.Payload = make([]byte, h.Length)
		if _, err := io.ReadFull(r, m.Payload); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ErrorResponse is sent when an operation fails.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrUnknown        = 1
	ErrInvalidRequest = 2
	ErrUnknownAttr    = 3
	ErrOutOfRange     = 4
	ErrInternalError  = 5
)

// StatusResponse contains daemon status.
type StatusResponse struct {
	Version        string    `json:"version"`
	StartedAt      time.Time `json:"started_at"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	Polling        bool      `json:"polling"`
	Device         string    `json:"device"`
	MouseSpeedX    int       `json:"mouse_speed_x"`
	MouseSpeedY    int       `json:"mouse_speed_y"`
	PollIntervalMs int       `json:"poll_interval_ms"`
}

// GetAttrsResponse lists the current tunable attribute values.
type GetAttrsResponse struct {
	Attrs map[string]int `json:"attrs"`
}

// SetAttrRequest sets one tunable attribute.
type SetAttrRequest struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// SetAttrResponse acknowledges an attribute change.
type SetAttrResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Encode encodes a payload to JSON bytes.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode decodes JSON bytes into a payload.
func Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// NewErrorMessage creates an error message.
func NewErrorMessage(requestID uint32, code int, message string) *Message {
	payload, _ := Encode(&ErrorResponse{Code: code, Message: message})
	return NewMessage(MsgError, requestID, payload)
}

// NewResponse creates a response message with an encoded payload.
func NewResponse(msgType MessageType, requestID uint32, v any) (*Message, error) {
	payload, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return NewMessage(msgType, requestID, payload), nil
}
