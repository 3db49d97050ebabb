package files

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "license_config.json")

	require.NoError(t, WriteFileAtomic(path, []byte(`{"license_code":"A"}`), 0600))
	require.NoError(t, WriteFileAtomic(path, []byte(`{"license_code":"B"}`), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"license_code":"B"}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomic_FailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Volumen_Mensual.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	errWrite := errors.New("disk full")
	err := WriteAtomic(path, 0644, func(w io.Writer) error {
		if _, err := w.Write([]byte("partial")); err != nil {
			return err
		}
		return errWrite
	})
	require.ErrorIs(t, err, errWrite)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "the temporary file is removed")
}
