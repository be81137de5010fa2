package evidence

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/xts"
)

// BlockSize is the cipher block size every sealed region is aligned to
const BlockSize = aes.BlockSize

// EncryptionProvider seals and opens block-aligned data. Implementations
// must be length preserving and must not add padding; alignment is the
// caller's responsibility.
type EncryptionProvider interface {
	// Encrypt encrypts plaintext, whose length is a multiple of BlockSize
	Encrypt(key, plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext, whose length is a multiple of BlockSize
	Decrypt(key, ciphertext []byte) ([]byte, error)
}

// AESCBCProvider implements EncryptionProvider using AES-CBC with an
// all-zero IV. Key length selects AES-128, AES-192 or AES-256.
type AESCBCProvider struct{}

// NewAESCBCProvider creates a new AES-CBC provider
func NewAESCBCProvider() *AESCBCProvider {
	return &AESCBCProvider{}
}

// Encrypt encrypts plaintext using AES-CBC
func (p *AESCBCProvider) Encrypt(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(plaintext)%BlockSize != 0 {
		return nil, NewEncryptionError("encrypt", len(plaintext), ErrUnaligned)
	}

	iv := make([]byte, BlockSize)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)
	return ciphertext, nil
}

// Decrypt decrypts ciphertext using AES-CBC
func (p *AESCBCProvider) Decrypt(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext)%BlockSize != 0 {
		return nil, NewEncryptionError("decrypt", len(ciphertext), ErrUnaligned)
	}

	iv := make([]byte, BlockSize)
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	return plaintext, nil
}

// AESXTSProvider implements EncryptionProvider using AES-XTS on sector zero.
// The key is two AES keys concatenated (32, 48 or 64 bytes).
type AESXTSProvider struct{}

// NewAESXTSProvider creates a new AES-XTS provider
func NewAESXTSProvider() *AESXTSProvider {
	return &AESXTSProvider{}
}

// Encrypt encrypts plaintext using AES-XTS
func (p *AESXTSProvider) Encrypt(key, plaintext []byte) ([]byte, error) {
	c, err := xts.NewCipher(aes.NewCipher, key)
	if err != nil {
		return nil, err
	}
	if len(plaintext)%BlockSize != 0 {
		return nil, NewEncryptionError("encrypt", len(plaintext), ErrUnaligned)
	}

	ciphertext := make([]byte, len(plaintext))
	c.Encrypt(ciphertext, plaintext, 0)
	return ciphertext, nil
}

// Decrypt decrypts ciphertext using AES-XTS
func (p *AESXTSProvider) Decrypt(key, ciphertext []byte) ([]byte, error) {
	c, err := xts.NewCipher(aes.NewCipher, key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext)%BlockSize != 0 {
		return nil, NewEncryptionError("decrypt", len(ciphertext), ErrUnaligned)
	}

	plaintext := make([]byte, len(ciphertext))
	c.Decrypt(plaintext, ciphertext, 0)
	return plaintext, nil
}

// NewEncryptionProvider creates a new provider based on the cipher suite
func NewEncryptionProvider(suite CipherSuite) (EncryptionProvider, error) {
	switch suite {
	case CipherAESCBC:
		return NewAESCBCProvider(), nil
	case CipherAESXTS:
		return NewAESXTSProvider(), nil
	default:
		return nil, NewValidationError("cipher", suite, "unsupported cipher suite")
	}
}
