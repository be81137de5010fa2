package evidence

import (
	"fmt"
	"sort"
	"strings"
)

// TypeBehavior is the capability set a record type contributes to the header
// and content shape. Every capability is optional; a nil func is a no-op.
type TypeBehavior struct {
	// ID is the numeric type identifier written to the wire
	ID uint32

	// Name is the human-readable type name used at generation time
	Name string

	// AdditionalHeader returns type-specific bytes appended to the header
	AdditionalHeader func(info Info) ([]byte, error)

	// DecodeAdditionalHeader parses those bytes back into info
	DecodeAdditionalHeader func(data []byte, info Info) error

	// GenerateContent returns the ordered content chunks of a new record
	GenerateContent func(info Info) ([][]byte, error)
}

func (t *TypeBehavior) additionalHeader(info Info) ([]byte, error) {
	if t.AdditionalHeader == nil {
		return []byte{}, nil
	}
	return t.AdditionalHeader(info)
}

func (t *TypeBehavior) decodeAdditionalHeader(data []byte, info Info) error {
	if t.DecodeAdditionalHeader == nil {
		return nil
	}
	return t.DecodeAdditionalHeader(data, info)
}

func (t *TypeBehavior) generateContent(info Info) ([][]byte, error) {
	if t.GenerateContent == nil {
		return nil, nil
	}
	return t.GenerateContent(info)
}

// Registry maps type ids and names to behaviors. It is immutable once built
// and safe for concurrent use by any number of records.
type Registry struct {
	byID   map[uint32]*TypeBehavior
	byName map[string]*TypeBehavior
}

// NewRegistry builds a registry from the given behaviors. Ids and names
// must be unique; names are matched case-insensitively.
func NewRegistry(types ...TypeBehavior) (*Registry, error) {
	r := &Registry{
		byID:   make(map[uint32]*TypeBehavior, len(types)),
		byName: make(map[string]*TypeBehavior, len(types)),
	}

	for i := range types {
		t := types[i]
		name := normalizeTypeName(t.Name)
		if name == "" {
			return nil, NewValidationError("name", t.ID, "type name cannot be empty")
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, NewValidationError("id", t.ID, fmt.Sprintf("duplicate type id 0x%04x", t.ID))
		}
		if _, dup := r.byName[name]; dup {
			return nil, NewValidationError("name", t.Name, fmt.Sprintf("duplicate type name %q", t.Name))
		}
		t.Name = name
		r.byID[t.ID] = &t
		r.byName[name] = &t
	}

	return r, nil
}

// NewDefaultRegistry builds a registry holding the standard record types
func NewDefaultRegistry() *Registry {
	r, err := NewRegistry(DeviceType(), CallType(), InfoType())
	if err != nil {
		// The standard table is static; a failure here is a programming error
		panic(err)
	}
	return r
}

// ResolveByID returns the behavior registered under id
func (r *Registry) ResolveByID(id uint32) (*TypeBehavior, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, &UnknownTypeError{ID: id}
	}
	return t, nil
}

// ResolveByName returns the behavior registered under name
func (r *Registry) ResolveByName(name string) (*TypeBehavior, error) {
	t, ok := r.byName[normalizeTypeName(name)]
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	return t, nil
}

// Types returns the registered behaviors ordered by id
func (r *Registry) Types() []*TypeBehavior {
	out := make([]*TypeBehavior, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func normalizeTypeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
