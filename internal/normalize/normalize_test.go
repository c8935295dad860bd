package normalize

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := map[string]time.Time{
		"2024-03-01":          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"03/01/2024":          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"2024-03-01 10:30:00": time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		" Mar 1, 2024 ":       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got := ParseDate(in)
		require.NotNil(t, got, in)
		assert.True(t, want.Equal(*got), "%s: got %v", in, got)
	}

	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("not a date"))
}

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	sum, err := FileHash(path)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)

	_, err = FileHash(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "unit_price", FileName("unit price"))
	assert.Equal(t, "total_amount", FileName("  total \t amount "))
	assert.Equal(t, "ab", FileName("a/b"))
	assert.Equal(t, "unnamed", FileName("///"))
	assert.Equal(t, "unnamed", FileName(".."))
}
