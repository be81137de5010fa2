package evidence

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle position of a record
type State uint8

const (
	// StateUnbound is a freshly constructed record
	StateUnbound State = iota
	// StateGenerated is a record produced by Generate
	StateGenerated
	// StateParsed is a record produced by Deserialize
	StateParsed
	// StateFailed is a record whose Generate or Deserialize returned an error
	StateFailed
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateGenerated:
		return "generated"
	case StateParsed:
		return "parsed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Record is a single evidence record. It is driven exactly once, either by
// Generate or by Deserialize, and is terminal afterwards. A Record must not
// be used by more than one goroutine at a time; its key and registry may be
// shared across records.
type Record struct {
	key      []byte
	registry *Registry
	provider EncryptionProvider
	clock    Clock
	names    NameGenerator
	observer Observer
	logger   *slog.Logger

	state   State
	err     error
	typ     *TypeBehavior
	typeID  uint32
	version uint32
	name    string
	info    Info
	content []byte
	binary  []byte
}

// Option configures a Record
type Option func(*Record)

// WithEncryptionProvider sets the cipher used to seal and open regions
func WithEncryptionProvider(p EncryptionProvider) Option {
	return func(r *Record) {
		if p != nil {
			r.provider = p
		}
	}
}

// WithClock sets the source of acquired and received timestamps
func WithClock(c Clock) Option {
	return func(r *Record) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithNameGenerator sets the source of record names
func WithNameGenerator(g NameGenerator) Option {
	return func(r *Record) {
		if g != nil {
			r.names = g
		}
	}
}

// WithObserver reports generate and parse outcomes to o
func WithObserver(o Observer) Option {
	return func(r *Record) {
		r.observer = o
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(r *Record) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithName sets the storage name of a record loaded from an archive
func WithName(name string) Option {
	return func(r *Record) {
		r.name = name
	}
}

// NewRecord creates an unbound record sealed with key. info seeds the field
// map and is copied, never retained.
func NewRecord(key []byte, registry *Registry, info Info, opts ...Option) *Record {
	r := &Record{
		key:      key,
		registry: registry,
		provider: NewAESCBCProvider(),
		clock:    time.Now,
		names:    NewRecordName,
		logger:   slog.Default().With("component", "evidence.record"),
		version:  VersionID,
		info:     info.Clone(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRecordName returns 32 hex characters of fresh randomness
func NewRecordName() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate record name: %w", err)
	}
	return hex.EncodeToString(id[:]), nil
}

// Generate binds the record to typeName and serializes it
func (r *Record) Generate(typeName string) error {
	if r.state != StateUnbound {
		return ErrRecordFinalized
	}
	if err := r.generate(typeName); err != nil {
		r.fail("generate", err)
		return err
	}

	r.state = StateGenerated
	r.logger.Debug("evidence generated",
		"name", r.name,
		"type", r.typ.Name,
		"size", len(r.binary),
	)
	if r.observer != nil {
		r.observer.ObserveGenerated(r.typ.Name, len(r.binary))
	}
	return nil
}

func (r *Record) generate(typeName string) error {
	if r.registry == nil {
		return ErrNilRegistry
	}
	t, err := r.registry.ResolveByName(typeName)
	if err != nil {
		return err
	}
	r.bind(t)

	name, err := r.names()
	if err != nil {
		return err
	}
	r.name = name
	r.info[FieldAcquired] = r.clock().UTC()

	framer := NewBlockFramer(r.provider, r.key)

	header, err := r.generateHeader(framer)
	if err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	appendFrame(buf, len(header), header)

	chunks, err := t.generateContent(r.info)
	if err != nil {
		return fmt.Errorf("failed to generate %s content: %w", t.Name, err)
	}
	for _, c := range chunks {
		sealed, err := framer.Seal(c)
		if err != nil {
			return err
		}
		appendFrame(buf, len(c), sealed)
	}

	r.binary = buf.Bytes()
	return nil
}

// generateHeader builds and seals the header plaintext
func (r *Record) generateHeader(framer *BlockFramer) ([]byte, error) {
	additional, err := r.typ.additionalHeader(r.info)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s additional header: %w", r.typ.Name, err)
	}

	acquired, _ := r.info.Time(FieldAcquired)
	high, low := ToFiletime(acquired)
	deviceID, _ := r.info.String(FieldDeviceID)
	userID, _ := r.info.String(FieldUserID)
	sourceID, _ := r.info.String(FieldSourceID)

	h := &RecordHeader{
		Version:    VersionID,
		TypeID:     r.typ.ID,
		TimeHigh:   high,
		TimeLow:    low,
		DeviceID:   EncodeText(deviceID),
		UserID:     EncodeText(userID),
		SourceID:   EncodeText(sourceID),
		Additional: additional,
	}

	plain := new(bytes.Buffer)
	if _, err := h.WriteTo(plain); err != nil {
		return nil, err
	}
	return framer.Seal(plain.Bytes())
}

// Deserialize parses data into the record
func (r *Record) Deserialize(data []byte) error {
	if r.state != StateUnbound {
		return ErrRecordFinalized
	}
	if err := r.deserialize(data); err != nil {
		r.fail("deserialize", err)
		return err
	}

	r.state = StateParsed
	r.logger.Debug("evidence parsed",
		"name", r.name,
		"type", r.typ.Name,
		"size", len(r.binary),
		"content_size", len(r.content),
	)
	if r.observer != nil {
		r.observer.ObserveParsed(r.typ.Name, len(r.binary))
	}
	return nil
}

func (r *Record) deserialize(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}
	if r.registry == nil {
		return ErrNilRegistry
	}

	r.binary = data
	framer := NewBlockFramer(r.provider, r.key)
	outer := newFrameReader(data, "header")

	headerLen, err := outer.readUint32()
	if err != nil {
		return err
	}
	sealed, err := outer.readBytes(int(headerLen))
	if err != nil {
		return err
	}
	plain, err := framer.Open(sealed, len(sealed))
	if err != nil {
		return err
	}

	// Fields are read relative to the header plaintext; trailing filler is ignored
	h := &RecordHeader{}
	_, err = h.ReadFrom(bytes.NewReader(plain))
	r.version = h.Version
	r.typeID = h.TypeID
	if err != nil {
		return err
	}

	r.info[FieldReceived] = r.clock().UTC()
	r.info[FieldAcquired] = FromFiletime(h.TimeHigh, h.TimeLow)

	if err := decodeIdentifier(r.info, FieldDeviceID, h.DeviceID); err != nil {
		return fmt.Errorf("failed to decode device id: %w", err)
	}
	if err := decodeIdentifier(r.info, FieldUserID, h.UserID); err != nil {
		return fmt.Errorf("failed to decode user id: %w", err)
	}
	if err := decodeIdentifier(r.info, FieldSourceID, h.SourceID); err != nil {
		return fmt.Errorf("failed to decode source id: %w", err)
	}

	t, err := r.registry.ResolveByID(h.TypeID)
	if err != nil {
		return err
	}
	r.bind(t)

	if len(h.Additional) != 0 {
		if err := t.decodeAdditionalHeader(h.Additional, r.info); err != nil {
			return err
		}
	}

	content, err := r.readChunks(outer, framer)
	if err != nil {
		return err
	}
	r.content = content
	return nil
}

// readChunks opens every chunk frame left in outer and concatenates them
func (r *Record) readChunks(outer *frameReader, framer *BlockFramer) ([]byte, error) {
	outer.section = "chunk"
	content := []byte{}

	for idx := 0; outer.remaining() > 0; idx++ {
		trueLen, err := outer.readUint32()
		if err != nil {
			return nil, withChunkIndex(err, idx)
		}
		sealed, err := outer.readBytes(AlignedLength(int(trueLen)))
		if err != nil {
			return nil, withChunkIndex(err, idx)
		}
		plain, err := framer.Open(sealed, int(trueLen))
		if err != nil {
			return nil, withChunkIndex(err, idx)
		}
		content = append(content, plain...)
	}

	return content, nil
}

func withChunkIndex(err error, idx int) error {
	var ce *CorruptionError
	if errors.As(err, &ce) {
		ce.Section = "chunk"
		ce.ChunkIdx = idx
	}
	return err
}

func (r *Record) bind(t *TypeBehavior) {
	r.typ = t
	r.typeID = t.ID
	r.info[FieldType] = t.Name
}

func (r *Record) fail(operation string, err error) {
	r.state = StateFailed
	r.err = err
	r.logger.Warn("evidence "+operation+" failed",
		"name", r.name,
		"kind", ErrorKind(err),
		"error", err,
	)
	if r.observer != nil {
		r.observer.ObserveFailure(operation, err)
	}
}

// Name returns the storage name of the record
func (r *Record) Name() string {
	return r.name
}

// Binary returns the serialized record
func (r *Record) Binary() []byte {
	return r.binary
}

// Size returns the length of the serialized record
func (r *Record) Size() int {
	return len(r.binary)
}

// Content returns the concatenated content of a parsed record
func (r *Record) Content() []byte {
	return r.content
}

// Info returns the field map of the record
func (r *Record) Info() Info {
	return r.info
}

// Version returns the protocol version, as read from the wire once parsed
func (r *Record) Version() uint32 {
	return r.version
}

// TypeID returns the type id of the record
func (r *Record) TypeID() uint32 {
	return r.typeID
}

// TypeName returns the name of the bound type, or "" while unbound
func (r *Record) TypeName() string {
	if r.typ == nil {
		return ""
	}
	return r.typ.Name
}

// State returns the lifecycle state of the record
func (r *Record) State() State {
	return r.state
}

// Err returns the error that moved the record to StateFailed
func (r *Record) Err() error {
	return r.err
}
