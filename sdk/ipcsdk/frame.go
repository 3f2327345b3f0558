package ipcsdk

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Opcode identifies the kind of an IPC frame.
type Opcode uint32

const (
	OpHandshake Opcode = 0
	OpFrame     Opcode = 1
	OpClose     Opcode = 2
	OpPing      Opcode = 3
	OpPong      Opcode = 4
)

const (
	headerSize = 8
	// maxPayload bounds a single frame so a corrupt header cannot force a huge allocation.
	maxPayload = 1 << 20
)

var ErrFrameTooLarge = errors.New("ipc frame exceeds maximum payload size")

// Message is the JSON payload of an OpFrame frame, in both directions.
type Message struct {
	Cmd   string          `json:"cmd"`
	Evt   string          `json:"evt,omitempty"`
	Nonce string          `json:"nonce,omitempty"`
	Args  any             `json:"args,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// handshake is the payload of the OpHandshake frame.
type handshake struct {
	Version  int    `json:"v"`
	ClientID string `json:"client_id"`
}

// closePayload is the payload of an OpClose frame and of ERROR responses.
type closePayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// WriteFrame writes payload as JSON behind a little-endian opcode and length header.
func WriteFrame(w io.Writer, op Opcode, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "WriteFrame marshal")
	}
	if len(body) > maxPayload {
		return ErrFrameTooLarge
	}
	buf := make([]byte, headerSize+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(op))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(body)))
	copy(buf[headerSize:], body)
	if _, err := w.Write(buf); err != nil {
		return errors.Wrap(err, "WriteFrame write")
	}
	return nil
}

// ReadFrame reads one frame and returns its opcode and raw JSON payload.
func ReadFrame(r io.Reader) (Opcode, []byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}
	op := Opcode(binary.LittleEndian.Uint32(header[0:4]))
	length := binary.LittleEndian.Uint32(header[4:8])
	if length > maxPayload {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, errors.Wrap(err, "ReadFrame payload")
	}
	return op, payload, nil
}
