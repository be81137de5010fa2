package evidence

import (
	"time"
)

// VersionID is the protocol version carried by every record header
const VersionID uint32 = 2008121901

// CipherSuite represents the block cipher used to seal records
type CipherSuite uint8

const (
	// CipherAESCBC uses AES in CBC mode with an all-zero IV and no padding
	CipherAESCBC CipherSuite = iota
	// CipherAESXTS uses AES in XTS mode with sector number zero
	CipherAESXTS
)

// String returns the string representation of the cipher suite
func (c CipherSuite) String() string {
	switch c {
	case CipherAESCBC:
		return "aes-cbc"
	case CipherAESXTS:
		return "aes-xts"
	default:
		return "unknown"
	}
}

// ParseCipherSuite converts a cipher name back to its CipherSuite
func ParseCipherSuite(name string) (CipherSuite, error) {
	switch name {
	case "aes-cbc", "":
		return CipherAESCBC, nil
	case "aes-xts":
		return CipherAESXTS, nil
	default:
		return 0, NewValidationError("cipher", name, "unsupported cipher suite")
	}
}

// Info field names
const (
	FieldAcquired = "acquired"
	FieldReceived = "received"
	FieldDeviceID = "device_id"
	FieldUserID   = "user_id"
	FieldSourceID = "source_id"
	FieldType     = "type"

	// FieldContent holds the [][]byte chunks a generator should emit
	FieldContent = "content"
	// FieldText holds the text an info record carries as content
	FieldText = "text"
)

// Info is the open field map of a record. Fields are populated incrementally
// while a record is generated or parsed.
type Info map[string]any

// Clone returns a shallow copy of the map
func (i Info) Clone() Info {
	out := make(Info, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// String returns a string field and whether it was present
func (i Info) String(field string) (string, bool) {
	v, ok := i[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Time returns a time field and whether it was present
func (i Info) Time(field string) (time.Time, bool) {
	v, ok := i[field]
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// Uint32 returns an unsigned field, accepting the integer kinds a caller or
// a YAML decoder is likely to have stored
func (i Info) Uint32(field string) (uint32, bool) {
	switch v := i[field].(type) {
	case uint32:
		return v, true
	case int:
		return uint32(v), true
	case uint:
		return uint32(v), true
	case int64:
		return uint32(v), true
	case uint64:
		return uint32(v), true
	default:
		return 0, false
	}
}

// Bool returns a boolean field
func (i Info) Bool(field string) bool {
	b, _ := i[field].(bool)
	return b
}

// Chunks returns the content chunks stored under FieldContent
func (i Info) Chunks() [][]byte {
	switch v := i[FieldContent].(type) {
	case [][]byte:
		return v
	case []byte:
		return [][]byte{v}
	case string:
		return [][]byte{[]byte(v)}
	case []string:
		out := make([][]byte, len(v))
		for n, s := range v {
			out[n] = []byte(s)
		}
		return out
	default:
		return nil
	}
}

// Clock returns the current instant
type Clock func() time.Time

// NameGenerator returns a fresh random record name
type NameGenerator func() (string, error)

// KeyProvider is an interface for providing record keys
type KeyProvider interface {
	// Key returns the symmetric key records are sealed with
	Key() ([]byte, error)
}

// Observer receives record lifecycle events
type Observer interface {
	ObserveGenerated(typeName string, size int)
	ObserveParsed(typeName string, size int)
	ObserveFailure(operation string, err error)
}
