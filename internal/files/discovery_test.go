package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/internal/shared/testutil"
)

func TestFindWorkbooks(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "ventas")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "archivo.xlsx"), 0755))

	testutil.WriteFile(t, dir, "b_febrero.xlsx", []byte("feb"))
	testutil.WriteFile(t, dir, "a_enero.XLSX", []byte("jan"))
	testutil.WriteFile(t, dir, "PLANES.xlsx", []byte("plans"))
	testutil.WriteFile(t, dir, "~$a_enero.xlsx", []byte("lock"))
	testutil.WriteFile(t, dir, "viejo.xls", []byte("legacy"))
	testutil.WriteFile(t, dir, "binario.xlsb", []byte("binary"))
	testutil.WriteFile(t, dir, "notas.txt", []byte("text"))

	d := NewDiscovery(base, infrastructure.DiscardLogger())

	tests := []struct {
		name string
		dir  string
	}{
		{"relative to base", "ventas"},
		{"absolute", dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := d.FindWorkbooks(tt.dir)
			require.NoError(t, err)

			names := make([]string, len(found))
			for i, f := range found {
				names[i] = f.Name
			}
			assert.Equal(t, []string{"PLANES.xlsx", "a_enero.XLSX", "b_febrero.xlsx", "viejo.xls"}, names)
			assert.Equal(t, filepath.Join(dir, "PLANES.xlsx"), found[0].Path)
			assert.Equal(t, int64(5), found[0].Size)
		})
	}
}

func TestFindWorkbooks_Errors(t *testing.T) {
	base := t.TempDir()
	testutil.WriteFile(t, base, "file.xlsx", []byte("x"))
	require.NoError(t, os.Mkdir(filepath.Join(base, "empty"), 0755))

	d := NewDiscovery(base, infrastructure.DiscardLogger())

	tests := []struct {
		name    string
		dir     string
		wantErr string
	}{
		{"missing", "nope", "does not exist"},
		{"not a directory", "file.xlsx", "is not a directory"},
		{"no workbooks", "empty", "no workbooks found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.FindWorkbooks(tt.dir)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadUploads(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a.xlsx", []byte("first"))
	testutil.WriteFile(t, dir, "b.xlsx", []byte("second"))

	d := NewDiscovery("", nil)
	found, err := d.FindWorkbooks(dir)
	require.NoError(t, err)

	uploads, err := d.ReadUploads(found)
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, "a.xlsx", uploads[0].Name)
	assert.Equal(t, "second", string(uploads[1].Data))

	require.NoError(t, os.Remove(found[0].Path))
	_, err = d.ReadUploads(found)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
