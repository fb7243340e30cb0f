package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Direction indicates which way a captured frame travelled.
type Direction uint8

const (
	// DirectionIn is a frame received from the peer.
	DirectionIn Direction = 0
	// DirectionOut is a frame written to the peer.
	DirectionOut Direction = 1
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Record is one raw socket buffer. CBOR encoding uses integer keys.
type Record struct {
	Timestamp time.Time `cbor:"1,keyasint"`
	SessionID string    `cbor:"2,keyasint"`
	Direction Direction `cbor:"3,keyasint"`
	Remote    string    `cbor:"4,keyasint,omitempty"`
	Data      []byte    `cbor:"5,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create capture CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create capture CBOR decoder mode: %v", err))
	}
}

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("recorder closed")

// Recorder appends frames to a CBOR stream. It is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	w         io.Writer
	closer    io.Closer
	encoder   *cbor.Encoder
	sessionID string
	closed    bool
	now       func() time.Time
}

// NewRecorder writes records to w. Every record carries a session ID unique
// to this recorder.
func NewRecorder(w io.Writer) *Recorder {
	r := &Recorder{
		w:         w,
		encoder:   encMode.NewEncoder(w),
		sessionID: uuid.NewString(),
		now:       time.Now,
	}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// NewFileRecorder appends records to the file at path, creating it with
// permissions 0644 if needed.
func NewFileRecorder(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}
	return NewRecorder(f), nil
}

// SessionID returns the identifier stamped on every record.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Record appends one frame buffer.
func (r *Recorder) Record(dir Direction, remote string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	return r.encoder.Encode(Record{
		Timestamp: r.now(),
		SessionID: r.sessionID,
		Direction: dir,
		Remote:    remote,
		Data:      data,
	})
}

// Close closes the underlying writer if it is closable. Safe to call more
// than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Filter selects records. Zero values match everything.
type Filter struct {
	SessionID string
	Direction *Direction
}

func (f Filter) matches(rec Record) bool {
	if f.SessionID != "" && rec.SessionID != f.SessionID {
		return false
	}
	if f.Direction != nil && rec.Direction != *f.Direction {
		return false
	}
	return true
}

// Reader streams records from a capture.
type Reader struct {
	closer  io.Closer
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader reads records matching filter from r.
func NewReader(r io.Reader, filter Filter) *Reader {
	rd := &Reader{decoder: decMode.NewDecoder(r), filter: filter}
	if c, ok := r.(io.Closer); ok {
		rd.closer = c
	}
	return rd
}

// OpenFile opens a capture file for reading.
func OpenFile(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}
	return NewReader(f, filter), nil
}

// Next returns the next matching record, or io.EOF at the end.
func (r *Reader) Next() (Record, error) {
	for {
		var rec Record
		if err := r.decoder.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return Record{}, io.EOF
			}
			return Record{}, fmt.Errorf("decode capture record: %w", err)
		}
		if r.filter.matches(rec) {
			return rec, nil
		}
	}
}

// Close closes the underlying reader if it is closable.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
