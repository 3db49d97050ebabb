package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

var codePattern = regexp.MustCompile(`[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}`)

func readRegistry(t *testing.T, path string) domain.LicenseRegistry {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var registry domain.LicenseRegistry
	require.NoError(t, json.Unmarshal(data, &registry))
	return registry
}

func TestRun_CreateListToggle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Licencias.txt")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-registry", path, "create", "-desc", "Distribuidora Norte"}, &out, &bytes.Buffer{}))
	code := codePattern.FindString(out.String())
	require.NotEmpty(t, code)
	assert.Contains(t, out.String(), "(activa)")

	out.Reset()
	require.NoError(t, run([]string{"-registry", path, "create", "-inactive"}, &out, &bytes.Buffer{}))
	assert.Contains(t, out.String(), "(inactiva)")

	registry := readRegistry(t, path)
	require.Len(t, registry.Licencias, 2)
	assert.Equal(t, code, registry.Licencias[0].Codigo)
	assert.True(t, registry.Licencias[0].Activo)
	assert.Equal(t, "Distribuidora Norte", registry.Licencias[0].Descripcion)
	assert.False(t, registry.Licencias[1].Activo)

	out.Reset()
	require.NoError(t, run([]string{"-registry", path, "toggle", code}, &out, &bytes.Buffer{}))
	assert.Equal(t, "Licencia "+code+": inactiva\n", out.String())
	registry = readRegistry(t, path)
	assert.False(t, registry.Licencias[0].Activo)
	assert.NotEmpty(t, registry.Licencias[0].Modificada)

	out.Reset()
	require.NoError(t, run([]string{"-registry", path, "list"}, &out, &bytes.Buffer{}))
	assert.Contains(t, out.String(), "Codigo")
	assert.Contains(t, out.String(), code)
	assert.Contains(t, out.String(), "Distribuidora Norte")
}

func TestRun_EmptyList(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-registry", filepath.Join(t.TempDir(), "Licencias.txt"), "list"}, &out, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "No hay licencias registradas\n", out.String())
}

func TestRun_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Licencias.txt")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no command", []string{"-registry", path}, "missing command"},
		{"unknown command", []string{"-registry", path, "delete"}, `unknown command "delete"`},
		{"toggle without code", []string{"-registry", path, "toggle"}, "exactly one license code"},
		{"toggle unknown code", []string{"-registry", path, "toggle", "ZZZZ-0000-ZZZZ-0000"}, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			err := run(tt.args, &bytes.Buffer{}, &stderr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
