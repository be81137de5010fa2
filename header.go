package evidence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// fixedHeaderSize is the size of the eight u32 words opening every header
const fixedHeaderSize = 8 * 4

// RecordHeader is the plaintext header sealed at the front of a record
type RecordHeader struct {
	Version    uint32 // Protocol version, always VersionID when written
	TypeID     uint32 // Registry id of the record type
	TimeHigh   uint32 // Acquired time, high filetime word
	TimeLow    uint32 // Acquired time, low filetime word
	DeviceID   []byte // UTF-16LE device identifier
	UserID     []byte // UTF-16LE user identifier
	SourceID   []byte // UTF-16LE source identifier
	Additional []byte // Type-specific header bytes
}

// Size returns the plaintext size of the header in bytes
func (h *RecordHeader) Size() int {
	return fixedHeaderSize + len(h.DeviceID) + len(h.UserID) + len(h.SourceID) + len(h.Additional)
}

// WriteTo writes the plaintext header to w
func (h *RecordHeader) WriteTo(w io.Writer) (int64, error) {
	buf := new(bytes.Buffer)
	buf.Grow(h.Size())

	words := []uint32{
		h.Version,
		h.TypeID,
		h.TimeHigh,
		h.TimeLow,
		uint32(len(h.DeviceID)),
		uint32(len(h.UserID)),
		uint32(len(h.SourceID)),
		uint32(len(h.Additional)),
	}
	if err := binary.Write(buf, binary.LittleEndian, words); err != nil {
		return 0, fmt.Errorf("failed to write header words: %w", err)
	}

	buf.Write(h.DeviceID)
	buf.Write(h.UserID)
	buf.Write(h.SourceID)
	buf.Write(h.Additional)

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// ReadFrom reads a plaintext header from r. The version is checked before
// any variable-length field is read; on mismatch nothing past the fixed
// words is trusted and a *VersionMismatchError is returned.
func (h *RecordHeader) ReadFrom(r io.Reader) (int64, error) {
	var words [8]uint32
	if err := binary.Read(r, binary.LittleEndian, &words); err != nil {
		return 0, &CorruptionError{
			Section: "header",
			Message: fmt.Sprintf("need %d bytes for fixed fields", fixedHeaderSize),
			Err:     ErrTruncated,
		}
	}
	totalRead := int64(fixedHeaderSize)

	h.Version = words[0]
	h.TypeID = words[1]
	h.TimeHigh = words[2]
	h.TimeLow = words[3]

	if h.Version != VersionID {
		return totalRead, &VersionMismatchError{Expected: VersionID, Found: h.Version}
	}

	fields := []*[]byte{&h.DeviceID, &h.UserID, &h.SourceID, &h.Additional}
	sized, _ := r.(interface{ Len() int })
	for i, field := range fields {
		if sized != nil && int(words[4+i]) > sized.Len() {
			return totalRead, &CorruptionError{
				Section: "header",
				Offset:  int(totalRead),
				Message: fmt.Sprintf("declared field length %d overruns header", words[4+i]),
				Err:     ErrTruncated,
			}
		}
		*field = make([]byte, words[4+i])
		n, err := io.ReadFull(r, *field)
		totalRead += int64(n)
		if err != nil {
			return totalRead, &CorruptionError{
				Section: "header",
				Offset:  int(totalRead),
				Message: fmt.Sprintf("declared field length %d overruns header", words[4+i]),
				Err:     ErrTruncated,
			}
		}
	}

	return totalRead, nil
}
