package evidence

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/absfs/absfs"
)

// Archive persists serialized records as files named after the record in a
// single directory of an absfs.FileSystem
type Archive struct {
	fs     absfs.FileSystem
	dir    string
	logger *slog.Logger
}

// NewArchive creates an archive rooted at dir, creating the directory if needed
func NewArchive(fs absfs.FileSystem, dir string) (*Archive, error) {
	if fs == nil {
		return nil, NewValidationError("fs", nil, "filesystem cannot be nil")
	}
	if dir == "" {
		return nil, NewValidationError("dir", dir, "archive directory cannot be empty")
	}

	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, NewIOError("mkdir", dir, err)
	}

	return &Archive{
		fs:     fs,
		dir:    dir,
		logger: slog.Default().With("component", "evidence.archive"),
	}, nil
}

// Dir returns the archive directory
func (a *Archive) Dir() string {
	return a.dir
}

// Path returns the file path a record name is stored under
func (a *Archive) Path(name string) string {
	return path.Join(a.dir, name)
}

// Save writes the binary of a generated record under its name
func (a *Archive) Save(r *Record) (string, error) {
	if r == nil || r.State() != StateGenerated {
		return "", NewValidationError("record", nil, "only generated records can be saved")
	}
	if err := a.Write(r.Name(), r.Binary()); err != nil {
		return "", err
	}
	return r.Name(), nil
}

// Write stores data under name, replacing any previous content
func (a *Archive) Write(name string, data []byte) error {
	if err := ValidateRecordName(name); err != nil {
		return err
	}

	p := a.Path(name)
	f, err := a.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return NewIOError("open", p, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return NewIOError("write", p, err)
	}
	if err := f.Close(); err != nil {
		return NewIOError("close", p, err)
	}

	a.logger.Debug("evidence stored", "name", name, "size", len(data))
	return nil
}

// Load reads the bytes stored under name
func (a *Archive) Load(name string) ([]byte, error) {
	if err := ValidateRecordName(name); err != nil {
		return nil, err
	}

	p := a.Path(name)
	f, err := a.fs.Open(p)
	if err != nil {
		return nil, NewIOError("open", p, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, NewIOError("read", p, err)
	}
	return data, nil
}

// Open loads the record stored under name and deserializes it
func (a *Archive) Open(name string, key []byte, registry *Registry, opts ...Option) (*Record, error) {
	data, err := a.Load(name)
	if err != nil {
		return nil, err
	}

	opts = append(opts, WithName(name))
	r := NewRecord(key, registry, nil, opts...)
	if err := r.Deserialize(data); err != nil {
		return r, err
	}
	return r, nil
}

// Exists reports whether a record is stored under name
func (a *Archive) Exists(name string) (bool, error) {
	if err := ValidateRecordName(name); err != nil {
		return false, err
	}
	_, err := a.fs.Stat(a.Path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, NewIOError("stat", a.Path(name), err)
}

// Remove deletes the record stored under name
func (a *Archive) Remove(name string) error {
	if err := ValidateRecordName(name); err != nil {
		return err
	}
	if err := a.fs.Remove(a.Path(name)); err != nil {
		return NewIOError("remove", a.Path(name), err)
	}
	return nil
}
