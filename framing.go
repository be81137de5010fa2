package evidence

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Record layout:
// ┌─────────────────────────────────────┐
// │ Header frame                        │
// │ - Sealed header length (uint32)     │
// │ - Sealed header                     │ <- RecordHeader, aligned with filler
// ├─────────────────────────────────────┤
// │ Chunk 0                             │
// │ - Plaintext length (uint32)         │
// │ - Sealed chunk (aligned length)     │
// ├─────────────────────────────────────┤
// │ Chunk 1                             │
// │ └─ ...                              │
// └─────────────────────────────────────┘
//
// The header frame carries the sealed length, chunk frames carry the true
// length. Filler never carries length information.

const (
	// FillerByte pads plaintext up to the block boundary before sealing
	FillerByte = byte('a')

	// frameLengthSize is the size of every cleartext length prefix
	frameLengthSize = 4
)

// AlignedLength returns the smallest multiple of BlockSize that is >= n
func AlignedLength(n int) int {
	if rest := n % BlockSize; rest != 0 {
		return n + BlockSize - rest
	}
	return n
}

// BlockFramer pads, seals and opens regions under a single key
type BlockFramer struct {
	provider EncryptionProvider
	key      []byte
}

// NewBlockFramer creates a framer sealing with key through provider
func NewBlockFramer(provider EncryptionProvider, key []byte) *BlockFramer {
	return &BlockFramer{provider: provider, key: key}
}

// Seal pads plaintext with FillerByte to the aligned length and encrypts it.
// An empty plaintext seals to an empty ciphertext.
func (f *BlockFramer) Seal(plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return []byte{}, nil
	}

	aligned := AlignedLength(len(plaintext))
	padded := make([]byte, aligned)
	copy(padded, plaintext)
	for i := len(plaintext); i < aligned; i++ {
		padded[i] = FillerByte
	}

	return f.provider.Encrypt(f.key, padded)
}

// Open decrypts ciphertext and truncates the result to trueLength
func (f *BlockFramer) Open(ciphertext []byte, trueLength int) ([]byte, error) {
	if len(ciphertext) == 0 {
		if trueLength != 0 {
			return nil, NewCorruptionError("chunk", 0, fmt.Sprintf("declared length %d but nothing sealed", trueLength))
		}
		return []byte{}, nil
	}

	plaintext, err := f.provider.Decrypt(f.key, ciphertext)
	if err != nil {
		return nil, err
	}
	if trueLength > len(plaintext) {
		return nil, NewCorruptionError("chunk", 0,
			fmt.Sprintf("declared length %d exceeds sealed length %d", trueLength, len(plaintext)))
	}
	return plaintext[:trueLength], nil
}

// appendFrame appends u32(length) || data to buf
func appendFrame(buf *bytes.Buffer, length int, data []byte) {
	var prefix [frameLengthSize]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(length))
	buf.Write(prefix[:])
	buf.Write(data)
}

// frameReader walks a byte slice with bounds-checked reads
type frameReader struct {
	data    []byte
	off     int
	section string
}

func newFrameReader(data []byte, section string) *frameReader {
	return &frameReader{data: data, section: section}
}

// remaining returns the number of unread bytes
func (r *frameReader) remaining() int {
	return len(r.data) - r.off
}

// readUint32 reads one little-endian u32
func (r *frameReader) readUint32() (uint32, error) {
	if r.remaining() < frameLengthSize {
		return 0, NewCorruptionError(r.section, r.off,
			fmt.Sprintf("need %d bytes for length, have %d", frameLengthSize, r.remaining()))
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += frameLengthSize
	return v, nil
}

// readBytes reads n bytes without copying
func (r *frameReader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, NewCorruptionError(r.section, r.off,
			fmt.Sprintf("need %d bytes, have %d", n, r.remaining()))
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}
