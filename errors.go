package evidence

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrEmptyInput      = errors.New("no content to deserialize")
	ErrVersionMismatch = errors.New("mismatching version")
	ErrUnknownType     = errors.New("unknown evidence type")
	ErrTruncated       = errors.New("record truncated")
	ErrRecordFinalized = errors.New("record already generated or parsed")
	ErrUnaligned       = errors.New("data is not a multiple of the block size")
	ErrNilRegistry     = errors.New("registry cannot be nil")
)

// VersionMismatchError is returned when a decoded header carries a version
// other than VersionID
type VersionMismatchError struct {
	Expected uint32
	Found    uint32
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("mismatching version [expected %d, found %d]", e.Expected, e.Found)
}

func (e *VersionMismatchError) Is(target error) bool {
	return target == ErrVersionMismatch
}

// UnknownTypeError is returned when a type id or name has no registry entry
type UnknownTypeError struct {
	ID   uint32 // Type id, when resolving from the wire
	Name string // Type name, when resolving for generation
}

func (e *UnknownTypeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown evidence type %q", e.Name)
	}
	return fmt.Sprintf("unknown evidence type 0x%04x", e.ID)
}

func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}

// ValidationError represents a configuration or parameter validation error
type ValidationError struct {
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// EncryptionError represents a seal or open failure raised by the framing
// layer itself. Errors from the cipher primitive are never wrapped in it.
type EncryptionError struct {
	Operation string // "encrypt" or "decrypt"
	Length    int    // Length of the offending input
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("%s error: %s (length %d)", e.Operation, e.Message, e.Length)
}

func (e *EncryptionError) Unwrap() error {
	return e.Err
}

// IOError represents an archive I/O error
type IOError struct {
	Operation string // "read", "write", "remove", "mkdir", etc.
	Path      string // File path
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("io error: %s %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("io error: %s: %s", e.Operation, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// CorruptionError represents a record whose framing does not hold together
type CorruptionError struct {
	Section  string // "header", "chunk" or "additional header"
	ChunkIdx int    // Chunk index, if applicable
	Offset   int    // Byte offset where the problem was found
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *CorruptionError) Error() string {
	if e.Section == "chunk" {
		return fmt.Sprintf("corruption error: chunk %d at offset %d: %s", e.ChunkIdx, e.Offset, e.Message)
	}
	return fmt.Sprintf("corruption error: %s at offset %d: %s", e.Section, e.Offset, e.Message)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// Helper functions for creating structured errors

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewEncryptionError creates a new encryption error
func NewEncryptionError(operation string, length int, err error) error {
	return &EncryptionError{
		Operation: operation,
		Length:    length,
		Message:   err.Error(),
		Err:       err,
	}
}

// NewIOError creates a new I/O error
func NewIOError(operation, path string, err error) error {
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   err.Error(),
		Err:       err,
	}
}

// NewCorruptionError creates a new corruption error for a truncated section
func NewCorruptionError(section string, offset int, message string) error {
	return &CorruptionError{
		Section: section,
		Offset:  offset,
		Message: message,
		Err:     ErrTruncated,
	}
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsEncryptionError checks if an error is an encryption error
func IsEncryptionError(err error) bool {
	var ee *EncryptionError
	return errors.As(err, &ee)
}

// IsIOError checks if an error is an I/O error
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}

// IsCorruptionError checks if an error is a corruption error
func IsCorruptionError(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}

// ErrorKind classifies an error into a short label for logs and metrics
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrVersionMismatch):
		return "version_mismatch"
	case errors.Is(err, ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, ErrRecordFinalized):
		return "finalized"
	case IsCorruptionError(err):
		return "corruption"
	case IsEncryptionError(err):
		return "framing"
	case IsValidationError(err):
		return "validation"
	case IsIOError(err):
		return "io"
	default:
		return "cipher"
	}
}
