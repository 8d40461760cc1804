package stream

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoconv/internal/geo"
)

type countingCloser struct{ n int }

func (c *countingCloser) Close() error {
	c.n++
	return nil
}

func sliceCursor(features []*geo.Feature, closer io.Closer) *Cursor {
	i := 0
	return NewCursor(func() (*geo.Feature, error) {
		if i >= len(features) {
			return nil, io.EOF
		}
		f := features[i]
		i++
		return f, nil
	}, closer)
}

func TestCursorExhaustion(t *testing.T) {
	c := sliceCursor([]*geo.Feature{{ID: "a"}, {ID: "b"}}, nil)

	var ids []string
	for c.HasNext() {
		f, err := c.Next()
		require.NoError(t, err)
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.False(t, c.HasNext())

	_, err := c.Next()
	assert.True(t, errors.Is(err, geo.ErrNoMoreElements))
}

func TestCursorNextWithoutHasNext(t *testing.T) {
	c := sliceCursor([]*geo.Feature{{ID: "a"}}, nil)
	f, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", f.ID)
	_, err = c.Next()
	assert.True(t, errors.Is(err, geo.ErrNoMoreElements))
}

func TestCursorDecodeError(t *testing.T) {
	boom := geo.Wrap(geo.ErrMalformedSource, "decode", errors.New("bad token"))
	c := NewCursor(func() (*geo.Feature, error) { return nil, boom }, nil)

	assert.True(t, c.HasNext())
	_, err := c.Next()
	assert.True(t, errors.Is(err, geo.ErrMalformedSource))
	assert.False(t, c.HasNext())
}

func TestCursorCloseOnce(t *testing.T) {
	closer := &countingCloser{}
	c := sliceCursor([]*geo.Feature{{ID: "a"}}, closer)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, closer.n)
	assert.False(t, c.HasNext())
}

func TestLayout(t *testing.T) {
	assert.Equal(t, "  ", Layout{}.IndentString())
	assert.Equal(t, "    ", Layout{Indent: 4}.IndentString())
	assert.Equal(t, "", Layout{Compact: true, Indent: 4}.IndentString())
	assert.Equal(t, "", Layout{Compact: true}.Newline())
}

func TestAtomicFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	a, err := CreateAtomic(path)
	require.NoError(t, err)
	_, err = a.WriteString("{}")
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, a.Commit())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAtomicFileAbort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	a, err := CreateAtomic(path)
	require.NoError(t, err)
	_, err = a.WriteString("partial")
	require.NoError(t, err)
	a.Abort()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.kml"))
	assert.True(t, errors.Is(err, geo.ErrResourceIO))
}
