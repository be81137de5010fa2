package evidence

import (
	"golang.org/x/text/encoding/unicode"
)

// utf16le is the identifier encoding: little-endian UTF-16 without a BOM
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeText encodes s as UTF-16LE. The empty string encodes to no bytes.
func EncodeText(s string) []byte {
	if s == "" {
		return []byte{}
	}
	// The encoder replaces invalid UTF-8 instead of failing
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte{}
	}
	return b
}

// DecodeText decodes UTF-16LE bytes back into a string
func DecodeText(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// decodeIdentifier applies the header identifier rule: a zero-length device
// or user id is absent, while a zero-length source id is the empty string.
func decodeIdentifier(info Info, field string, b []byte) error {
	if len(b) == 0 {
		if field == FieldSourceID {
			info[field] = ""
		}
		return nil
	}
	s, err := DecodeText(b)
	if err != nil {
		return err
	}
	info[field] = s
	return nil
}
