package evidence

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// DefaultKeySize is the AES-128 key length used by the legacy format
const DefaultKeySize = 16

// HashFunc represents hash function types for PBKDF2
type HashFunc uint8

const (
	// SHA256 hash function
	SHA256 HashFunc = iota
	// SHA512 hash function
	SHA512
)

// PBKDF2Params contains parameters for PBKDF2 key derivation
type PBKDF2Params struct {
	Iterations int      // Number of iterations (minimum 100,000 recommended)
	HashFunc   HashFunc // Hash function to use
	KeySize    int      // Derived key size in bytes (default 16)
}

// Argon2idParams contains parameters for Argon2id key derivation
type Argon2idParams struct {
	Memory      uint32 // Memory in KiB (e.g., 64*1024 for 64MB)
	Iterations  uint32 // Number of iterations (time parameter)
	Parallelism uint8  // Degree of parallelism
	KeySize     int    // Derived key size in bytes (default 16)
}

// StaticKeyProvider returns a fixed key
type StaticKeyProvider struct {
	key []byte
}

// NewStaticKeyProvider creates a provider for an already derived key
func NewStaticKeyProvider(key []byte) *StaticKeyProvider {
	return &StaticKeyProvider{key: key}
}

// Key returns the key
func (s *StaticKeyProvider) Key() ([]byte, error) {
	if len(s.key) == 0 {
		return nil, NewValidationError("key", nil, "key cannot be empty")
	}
	return s.key, nil
}

// PasswordKeyProvider derives a key from a password. Records carry no salt,
// so producer and collector must share the same salt out of band.
type PasswordKeyProvider struct {
	password     []byte
	salt         []byte
	useArgon2id  bool
	pbkdf2Params PBKDF2Params
	argon2Params Argon2idParams
}

// NewPasswordKeyProviderPBKDF2 creates a new password-based key provider using PBKDF2
func NewPasswordKeyProviderPBKDF2(password, salt []byte, params PBKDF2Params) *PasswordKeyProvider {
	if params.Iterations == 0 {
		params.Iterations = 100000
	}
	if params.KeySize == 0 {
		params.KeySize = DefaultKeySize
	}

	return &PasswordKeyProvider{
		password:     password,
		salt:         salt,
		useArgon2id:  false,
		pbkdf2Params: params,
	}
}

// NewPasswordKeyProvider creates a new password-based key provider using Argon2id
func NewPasswordKeyProvider(password, salt []byte, params Argon2idParams) *PasswordKeyProvider {
	if params.Memory == 0 {
		params.Memory = 64 * 1024 // 64 MB
	}
	if params.Iterations == 0 {
		params.Iterations = 3
	}
	if params.Parallelism == 0 {
		params.Parallelism = 4
	}
	if params.KeySize == 0 {
		params.KeySize = DefaultKeySize
	}

	return &PasswordKeyProvider{
		password:     password,
		salt:         salt,
		useArgon2id:  true,
		argon2Params: params,
	}
}

// Key derives the key from the password and salt
func (p *PasswordKeyProvider) Key() ([]byte, error) {
	if len(p.password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	if len(p.salt) == 0 {
		return nil, errors.New("salt cannot be empty")
	}

	if p.useArgon2id {
		key := argon2.IDKey(
			p.password,
			p.salt,
			p.argon2Params.Iterations,
			p.argon2Params.Memory,
			p.argon2Params.Parallelism,
			uint32(p.argon2Params.KeySize),
		)
		return key, nil
	}

	var hashFunc func() hash.Hash
	switch p.pbkdf2Params.HashFunc {
	case SHA256:
		hashFunc = sha256.New
	case SHA512:
		hashFunc = sha512.New
	default:
		return nil, fmt.Errorf("unsupported hash function: %v", p.pbkdf2Params.HashFunc)
	}

	key := pbkdf2.Key(
		p.password,
		p.salt,
		p.pbkdf2Params.Iterations,
		p.pbkdf2Params.KeySize,
		hashFunc,
	)
	return key, nil
}

// EnvKeyProvider reads a hex-encoded key from an environment variable
type EnvKeyProvider struct {
	envVar string
}

// NewEnvKeyProvider creates a new environment variable key provider
func NewEnvKeyProvider(envVar string) *EnvKeyProvider {
	return &EnvKeyProvider{envVar: envVar}
}

// Key returns the decoded key from the environment variable
func (e *EnvKeyProvider) Key() ([]byte, error) {
	keyHex := strings.TrimSpace(os.Getenv(e.envVar))
	if keyHex == "" {
		return nil, fmt.Errorf("environment variable %s not set", e.envVar)
	}
	return DecodeHexKey(keyHex)
}

// DecodeHexKey decodes a hex key and checks it is a usable AES key length
func DecodeHexKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, &ValidationError{Field: "key", Message: "key is not valid hex", Err: err}
	}
	if err := ValidateKeySize(key); err != nil {
		return nil, err
	}
	return key, nil
}
