package evidence

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticKeyProvider(t *testing.T) {
	key, err := NewStaticKeyProvider(testKey).Key()
	require.NoError(t, err)
	assert.Equal(t, testKey, key)

	_, err = NewStaticKeyProvider(nil).Key()
	assert.True(t, IsValidationError(err))
}

func TestPasswordKeyProvider(t *testing.T) {
	salt := []byte("0123456789abcdef")
	fast := Argon2idParams{Memory: 8 * 1024, Iterations: 1, Parallelism: 1}

	tests := []struct {
		name     string
		provider *PasswordKeyProvider
		size     int
	}{
		{"argon2id default size", NewPasswordKeyProvider([]byte("secret"), salt, fast), DefaultKeySize},
		{"argon2id 32 bytes", NewPasswordKeyProvider([]byte("secret"), salt,
			Argon2idParams{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, KeySize: 32}), 32},
		{"pbkdf2 sha256", NewPasswordKeyProviderPBKDF2([]byte("secret"), salt,
			PBKDF2Params{Iterations: 1000}), DefaultKeySize},
		{"pbkdf2 sha512", NewPasswordKeyProviderPBKDF2([]byte("secret"), salt,
			PBKDF2Params{Iterations: 1000, HashFunc: SHA512, KeySize: 24}), 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k1, err := tt.provider.Key()
			require.NoError(t, err)
			assert.Len(t, k1, tt.size)

			k2, err := tt.provider.Key()
			require.NoError(t, err)
			assert.Equal(t, k1, k2, "derivation must be deterministic")
		})
	}
}

func TestPasswordKeyProviderDiffers(t *testing.T) {
	salt := []byte("0123456789abcdef")
	params := PBKDF2Params{Iterations: 1000}

	a, err := NewPasswordKeyProviderPBKDF2([]byte("one"), salt, params).Key()
	require.NoError(t, err)
	b, err := NewPasswordKeyProviderPBKDF2([]byte("two"), salt, params).Key()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordKeyProviderErrors(t *testing.T) {
	_, err := NewPasswordKeyProviderPBKDF2(nil, []byte("salt"), PBKDF2Params{}).Key()
	assert.Error(t, err)

	_, err = NewPasswordKeyProvider([]byte("secret"), nil, Argon2idParams{}).Key()
	assert.Error(t, err)

	_, err = NewPasswordKeyProviderPBKDF2([]byte("secret"), []byte("salt"), PBKDF2Params{HashFunc: HashFunc(7)}).Key()
	assert.Error(t, err)
}

func TestEnvKeyProvider(t *testing.T) {
	const envVar = "EVIDENCE_TEST_KEY"
	key := bytes.Repeat([]byte{0xab}, 16)

	t.Setenv(envVar, hex.EncodeToString(key))
	got, err := NewEnvKeyProvider(envVar).Key()
	require.NoError(t, err)
	assert.Equal(t, key, got)

	t.Setenv(envVar, "not-hex")
	_, err = NewEnvKeyProvider(envVar).Key()
	assert.True(t, IsValidationError(err))

	t.Setenv(envVar, "")
	_, err = NewEnvKeyProvider(envVar).Key()
	assert.Error(t, err)
}

func TestDecodeHexKey(t *testing.T) {
	key, err := DecodeHexKey("000102030405060708090a0b0c0d0e0f")
	require.NoError(t, err)
	assert.Len(t, key, 16)

	_, err = DecodeHexKey("0001")
	assert.True(t, IsValidationError(err))

	_, err = DecodeHexKey("zz")
	assert.True(t, IsValidationError(err))
}
