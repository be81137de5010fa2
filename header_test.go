package evidence

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHeaderRoundTrip(t *testing.T) {
	h := &RecordHeader{
		Version:    VersionID,
		TypeID:     TypeCall,
		TimeHigh:   0x01d95e3a,
		TimeLow:    0xdeadbeef,
		DeviceID:   EncodeText("host1"),
		SourceID:   EncodeText("src"),
		Additional: []byte{1, 2, 3, 4},
	}

	buf := new(bytes.Buffer)
	n, err := h.WriteTo(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(h.Size()), n)
	assert.Equal(t, fixedHeaderSize+10+6+4, h.Size())
	assert.Equal(t, VersionID, binary.LittleEndian.Uint32(buf.Bytes()))

	// trailing filler after the declared fields is ignored
	buf.Write(bytes.Repeat([]byte{FillerByte}, 12))

	got := &RecordHeader{}
	read, err := got.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, n, read)
	assert.Equal(t, h.TypeID, got.TypeID)
	assert.Equal(t, h.TimeHigh, got.TimeHigh)
	assert.Equal(t, h.TimeLow, got.TimeLow)
	assert.Equal(t, h.DeviceID, got.DeviceID)
	assert.Empty(t, got.UserID)
	assert.Equal(t, h.SourceID, got.SourceID)
	assert.Equal(t, h.Additional, got.Additional)
}

func TestRecordHeaderReadErrors(t *testing.T) {
	valid := new(bytes.Buffer)
	_, err := (&RecordHeader{Version: VersionID, DeviceID: EncodeText("abc")}).WriteTo(valid)
	require.NoError(t, err)

	t.Run("short fixed words", func(t *testing.T) {
		_, err := (&RecordHeader{}).ReadFrom(bytes.NewReader(valid.Bytes()[:10]))
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("field overruns", func(t *testing.T) {
		_, err := (&RecordHeader{}).ReadFrom(bytes.NewReader(valid.Bytes()[:fixedHeaderSize+2]))
		assert.ErrorIs(t, err, ErrTruncated)
		assert.True(t, IsCorruptionError(err))
	})

	t.Run("huge declared length", func(t *testing.T) {
		data := append([]byte(nil), valid.Bytes()...)
		binary.LittleEndian.PutUint32(data[16:], 0xffffffff)
		_, err := (&RecordHeader{}).ReadFrom(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("version checked first", func(t *testing.T) {
		data := append([]byte(nil), valid.Bytes()[:fixedHeaderSize]...)
		binary.LittleEndian.PutUint32(data, 7)
		h := &RecordHeader{}
		_, err := h.ReadFrom(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrVersionMismatch)
		assert.Equal(t, uint32(7), h.Version)
		assert.Nil(t, h.DeviceID)
	})
}
