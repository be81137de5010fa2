package evidence

import (
	"testing"

	"github.com/absfs/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupArchive(t *testing.T) *Archive {
	t.Helper()
	fs, err := memfs.NewFS()
	require.NoError(t, err)

	a, err := NewArchive(fs, "/evidence")
	require.NoError(t, err)
	return a
}

func TestArchiveSaveOpen(t *testing.T) {
	a := setupArchive(t)
	registry := NewDefaultRegistry()

	rec := generate(t, testKey, "device", Info{
		FieldDeviceID: "host1",
		FieldContent:  [][]byte{[]byte("ping")},
	})

	name, err := a.Save(rec)
	require.NoError(t, err)
	assert.Equal(t, rec.Name(), name)
	assert.Equal(t, "/evidence/"+name, a.Path(name))

	exists, err := a.Exists(name)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := a.Load(name)
	require.NoError(t, err)
	assert.Equal(t, rec.Binary(), data)

	opened, err := a.Open(name, testKey, registry)
	require.NoError(t, err)
	assert.Equal(t, name, opened.Name())
	assert.Equal(t, []byte("ping"), opened.Content())
	assert.Equal(t, "host1", opened.Info()[FieldDeviceID])
}

func TestArchiveWriteReplaces(t *testing.T) {
	a := setupArchive(t)

	require.NoError(t, a.Write("record", []byte("a much longer first version")))
	require.NoError(t, a.Write("record", []byte("short")))

	data, err := a.Load("record")
	require.NoError(t, err)
	assert.Equal(t, []byte("short"), data)
}

func TestArchiveRemove(t *testing.T) {
	a := setupArchive(t)
	require.NoError(t, a.Write("record", []byte("data")))
	require.NoError(t, a.Remove("record"))

	_, err := a.Load("record")
	assert.True(t, IsIOError(err))
}

func TestArchiveOpenFailure(t *testing.T) {
	a := setupArchive(t)
	require.NoError(t, a.Write("empty", []byte{}))

	rec, err := a.Open("empty", testKey, NewDefaultRegistry())
	assert.ErrorIs(t, err, ErrEmptyInput)
	require.NotNil(t, rec)
	assert.Equal(t, StateFailed, rec.State())

	_, err = a.Open("missing", testKey, NewDefaultRegistry())
	assert.True(t, IsIOError(err))
}

func TestArchiveRejects(t *testing.T) {
	a := setupArchive(t)

	_, err := a.Save(NewRecord(testKey, NewDefaultRegistry(), nil))
	assert.True(t, IsValidationError(err))

	assert.True(t, IsValidationError(a.Write("../escape", []byte("x"))))
	_, err = a.Load("")
	assert.True(t, IsValidationError(err))

	_, err = NewArchive(nil, "/evidence")
	assert.True(t, IsValidationError(err))
}
