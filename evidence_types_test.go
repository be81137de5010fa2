package evidence

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallHeaderRoundTrip(t *testing.T) {
	start := time.Date(2009, 1, 2, 3, 4, 5, 0, time.UTC)
	in := Info{
		FieldChannel:    uint32(1),
		FieldProgram:    uint32(3),
		FieldSampleRate: uint32(8000),
		FieldStartTime:  start,
		FieldStopTime:   start.Add(time.Minute),
		FieldCallee:     "+15550100",
		FieldCaller:     "",
	}

	data, err := encodeCallHeader(in)
	require.NoError(t, err)
	assert.Len(t, data, callFixedSize+18)
	assert.Equal(t, CallHeaderVersion, binary.LittleEndian.Uint32(data))

	out := Info{}
	require.NoError(t, decodeCallHeader(data, out))
	assert.Equal(t, uint32(1), out[FieldChannel])
	assert.Equal(t, uint32(3), out[FieldProgram])
	assert.Equal(t, uint32(8000), out[FieldSampleRate])
	assert.Equal(t, false, out[FieldIncoming])
	assert.Equal(t, "+15550100", out[FieldCallee])
	assert.Equal(t, "", out[FieldCaller])
	assert.Equal(t, time.Minute, CallDuration(out))
}

func TestCallHeaderDefaults(t *testing.T) {
	acquired := time.Date(2010, 6, 1, 0, 0, 0, 0, time.UTC)
	data, err := encodeCallHeader(Info{FieldAcquired: acquired})
	require.NoError(t, err)

	out := Info{}
	require.NoError(t, decodeCallHeader(data, out))
	assert.Equal(t, DefaultSampleRate, out[FieldSampleRate])
	start, _ := out.Time(FieldStartTime)
	assert.True(t, start.Equal(acquired))
	assert.Equal(t, time.Duration(0), CallDuration(out))
}

func TestCallHeaderErrors(t *testing.T) {
	start := time.Date(2010, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := encodeCallHeader(Info{FieldStartTime: start, FieldStopTime: start.Add(-time.Second)})
	assert.True(t, IsValidationError(err))

	data, err := encodeCallHeader(Info{FieldStartTime: start, FieldCallee: "alice"})
	require.NoError(t, err)

	err = decodeCallHeader(data[:20], Info{})
	assert.ErrorIs(t, err, ErrTruncated)

	err = decodeCallHeader(data[:len(data)-2], Info{})
	assert.ErrorIs(t, err, ErrTruncated)

	bad := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad, 1)
	err = decodeCallHeader(bad, Info{})
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestInfoTypeContent(t *testing.T) {
	typ := InfoType()

	chunks, err := typ.generateContent(Info{FieldText: "note"})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{EncodeText("note")}, chunks)

	chunks, err = typ.generateContent(Info{FieldText: "ignored", FieldContent: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, chunks)

	chunks, err = typ.generateContent(Info{})
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestCallDurationMissing(t *testing.T) {
	assert.Equal(t, time.Duration(0), CallDuration(Info{}))
}
