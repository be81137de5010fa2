package evidence

import (
	"errors"
	"fmt"
)

// MultiKeyProvider holds several keys for decoding
// This is useful during key rotation/migration
type MultiKeyProvider struct {
	providers []KeyProvider
	primary   KeyProvider // Primary provider for new records
}

// NewMultiKeyProvider creates a new multi-key provider
// The first provider is used for new records, all of them for decoding
func NewMultiKeyProvider(providers ...KeyProvider) (*MultiKeyProvider, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one key provider required")
	}

	return &MultiKeyProvider{
		providers: providers,
		primary:   providers[0],
	}, nil
}

// Key uses the primary provider
func (m *MultiKeyProvider) Key() ([]byte, error) {
	return m.primary.Key()
}

// Keys returns every key that could be obtained, in provider order
func (m *MultiKeyProvider) Keys() ([][]byte, error) {
	var keys [][]byte
	var lastErr error
	for _, provider := range m.providers {
		key, err := provider.Key()
		if err != nil {
			lastErr = err
			continue
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("all key providers failed: %w", lastErr)
		}
		return nil, fmt.Errorf("no key providers available")
	}
	return keys, nil
}

// DeserializeWithFallback tries each key of m in order. A key is skipped
// when the record does not open under it: the cipher rejects it, or the
// decrypted header does not carry VersionID. Any other failure is final.
func DeserializeWithFallback(m *MultiKeyProvider, registry *Registry, data []byte, opts ...Option) (*Record, error) {
	keys, err := m.Keys()
	if err != nil {
		return nil, err
	}

	var r *Record
	for _, key := range keys {
		r = NewRecord(key, registry, nil, opts...)
		err = r.Deserialize(data)
		if err == nil || !wrongKey(err) {
			return r, err
		}
	}
	return r, err
}

// wrongKey reports whether err is what a record opened under the wrong key
// produces
func wrongKey(err error) bool {
	return errors.Is(err, ErrVersionMismatch) || ErrorKind(err) == "cipher"
}
