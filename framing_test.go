package evidence

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignedLength(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 16},
		{15, 16},
		{16, 16},
		{17, 32},
		{42, 48},
		{4096, 4096},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AlignedLength(tt.n), "AlignedLength(%d)", tt.n)
	}
}

func TestBlockFramerSealOpen(t *testing.T) {
	tests := []struct {
		name      string
		provider  EncryptionProvider
		key       []byte
		plaintext []byte
	}{
		{"cbc empty", NewAESCBCProvider(), testKey, []byte{}},
		{"cbc short", NewAESCBCProvider(), testKey, []byte("ping")},
		{"cbc aligned", NewAESCBCProvider(), testKey, bytes.Repeat([]byte("x"), 32)},
		{"cbc unaligned", NewAESCBCProvider(), testKey, bytes.Repeat([]byte("y"), 33)},
		{"cbc aes-256", NewAESCBCProvider(), bytes.Repeat([]byte{7}, 32), []byte("hello")},
		{"xts short", NewAESXTSProvider(), bytes.Repeat([]byte{9}, 32), []byte("ping")},
		{"xts long", NewAESXTSProvider(), bytes.Repeat([]byte{9}, 64), bytes.Repeat([]byte("z"), 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			framer := NewBlockFramer(tt.provider, tt.key)

			sealed, err := framer.Seal(tt.plaintext)
			require.NoError(t, err)
			assert.Len(t, sealed, AlignedLength(len(tt.plaintext)))

			opened, err := framer.Open(sealed, len(tt.plaintext))
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, opened)
		})
	}
}

func TestBlockFramerFiller(t *testing.T) {
	framer := NewBlockFramer(NewAESCBCProvider(), testKey)

	sealed, err := framer.Seal([]byte("abc"))
	require.NoError(t, err)

	opened, err := framer.Open(sealed, len(sealed))
	require.NoError(t, err)
	assert.Equal(t, append([]byte("abc"), bytes.Repeat([]byte{FillerByte}, 13)...), opened)
}

func TestBlockFramerOpenErrors(t *testing.T) {
	framer := NewBlockFramer(NewAESCBCProvider(), testKey)

	_, err := framer.Open(nil, 4)
	assert.ErrorIs(t, err, ErrTruncated)

	sealed, err := framer.Seal([]byte("ping"))
	require.NoError(t, err)
	_, err = framer.Open(sealed, 17)
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = framer.Open(sealed[:15], 4)
	assert.ErrorIs(t, err, ErrUnaligned)
	assert.True(t, IsEncryptionError(err))
}

func TestFrameReader(t *testing.T) {
	buf := new(bytes.Buffer)
	appendFrame(buf, 3, []byte("abc"))
	assert.Equal(t, []byte{3, 0, 0, 0, 'a', 'b', 'c'}, buf.Bytes())

	r := newFrameReader(buf.Bytes(), "chunk")
	n, err := r.readUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), n)

	b, err := r.readBytes(int(n))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)
	assert.Equal(t, 0, r.remaining())

	_, err = r.readUint32()
	assert.ErrorIs(t, err, ErrTruncated)
	_, err = r.readBytes(1)
	assert.ErrorIs(t, err, ErrTruncated)
}
