package evidence

import (
	"fmt"
	"path"
	"strings"
)

// Input validation helpers

// ValidateKeySize checks that key is usable by one of the cipher suites:
// 16, 24 or 32 bytes for AES-CBC, or 32, 48 or 64 bytes for AES-XTS
func ValidateKeySize(key []byte) error {
	if key == nil {
		return &ValidationError{
			Field:   "key",
			Message: "key cannot be nil",
		}
	}
	switch len(key) {
	case 16, 24, 32, 48, 64:
		return nil
	default:
		return &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: fmt.Sprintf("invalid key size: got %d bytes, expected 16, 24, 32, 48 or 64", len(key)),
		}
	}
}

// ValidateKeyForSuite checks that key has a length the given suite accepts
func ValidateKeyForSuite(key []byte, suite CipherSuite) error {
	if err := ValidateKeySize(key); err != nil {
		return err
	}

	var ok bool
	switch suite {
	case CipherAESCBC:
		ok = len(key) == 16 || len(key) == 24 || len(key) == 32
	case CipherAESXTS:
		ok = len(key) == 32 || len(key) == 48 || len(key) == 64
	default:
		return &ValidationError{
			Field:   "cipher",
			Value:   suite,
			Message: "unsupported cipher suite for key validation",
		}
	}

	if !ok {
		return &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: fmt.Sprintf("invalid key size for %s: got %d bytes", suite, len(key)),
		}
	}
	return nil
}

// ValidateRecordName checks that a record name is a single path element
func ValidateRecordName(name string) error {
	if name == "" {
		return &ValidationError{
			Field:   "name",
			Message: "record name cannot be empty",
		}
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || path.Base(name) != name {
		return &ValidationError{
			Field:   "name",
			Value:   name,
			Message: "record name must be a single path element",
		}
	}
	return nil
}
