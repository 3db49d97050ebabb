package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
	"salespulse/internal/infrastructure"
	"salespulse/internal/license"
	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

const testCode = "AAAA-1111-BBBB-2222"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	registry := testutil.NewRegistryServer(t, domain.LicenseRegistry{Licencias: []domain.LicenseRecord{
		{Codigo: testCode, Activo: true},
	}})
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.License.RegistryURL = registry.URL
	return cfg
}

func writeSales(t *testing.T, dir string) {
	t.Helper()
	testutil.WriteFile(t, dir, "ventas_enero.xlsx", testutil.SalesWorkbook(t, []domain.RawTransaction{
		{CodigoCliente: "A", RazonSocial: "Almacén A", Descripcion: "Cerveza Heineken 330cc", Marcas: "Heineken",
			Canal: "MINORISTA", Fecha: "2025-01-15", KgLt: 300, NetoSD: 1000},
		{CodigoCliente: "A", RazonSocial: "Almacén A", Descripcion: "Miller 330cc", Marcas: "Miller",
			Canal: "MINORISTA", Fecha: "2025-01-20", KgLt: 200, NetoSD: 500},
	}))
	testutil.WriteFile(t, dir, "notas.txt", []byte("ignored"))
	testutil.WriteFile(t, dir, "~$ventas_enero.xlsx", []byte("lock"))
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	out := t.TempDir()
	writeSales(t, dir)

	var stdout bytes.Buffer
	err := run(context.Background(), []string{
		"-dir", dir, "-out", out, "-from", "2025-01-01", "-to", "2025-01-31",
		"-license", testCode, "-segments",
	}, &stdout, &bytes.Buffer{}, cfg, infrastructure.DiscardLogger())
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), domain.KPIHectoliters)
	assert.Contains(t, stdout.String(), "Archivo generado")

	for _, pattern := range []string{"Resumen_Global_*.xlsx", "CCC_Nandu_PV_Levite_*.xlsx", "Volumen_Mensual_*.csv", "Volumen_Canal_*.csv"} {
		matches, err := filepath.Glob(filepath.Join(out, pattern))
		require.NoError(t, err)
		assert.Len(t, matches, 1, pattern)
	}

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)
	assert.FileExists(t, paths.LicenseFile)
}

func TestRun_RequiresLicense(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	writeSales(t, dir)

	err := run(context.Background(), []string{"-dir", dir, "-out", t.TempDir(), "-from", "2025-01-01", "-to", "2025-01-31"},
		&bytes.Buffer{}, &bytes.Buffer{}, cfg, infrastructure.DiscardLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "No hay licencia configurada")
}

func TestRun_SavedLicense(t *testing.T) {
	cfg := testConfig(t)
	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, license.NewStateStore(paths.LicenseFile, infrastructure.DiscardLogger()).Save(testCode))

	dir := t.TempDir()
	writeSales(t, dir)
	var stdout bytes.Buffer
	err = run(context.Background(), []string{"-dir", dir, "-out", t.TempDir(), "-from", "2024-01-01", "-to", "2024-01-31"},
		&stdout, &bytes.Buffer{}, cfg, infrastructure.DiscardLogger())

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Sin datos para el período seleccionado")
}

func TestRun_NoWorkbooks(t *testing.T) {
	cfg := testConfig(t)

	err := run(context.Background(), []string{"-dir", t.TempDir(), "-from", "2025-01-01", "-to", "2025-01-31", "-license", testCode},
		&bytes.Buffer{}, &bytes.Buffer{}, cfg, infrastructure.DiscardLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no workbooks found")
}

func TestRun_FlagErrorsGoToStderr(t *testing.T) {
	cfg := testConfig(t)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-from", "2025-01-01", "-to", "2025-01-31", "-cartera", "muchos"},
		&stdout, &stderr, cfg, infrastructure.DiscardLogger())

	require.Error(t, err)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "-cartera")
	assert.Contains(t, stderr.String(), "Usage of report")
}

func TestParseFlags(t *testing.T) {
	paths := &config.Paths{DataDir: "/data", OutputDir: "/out"}

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing from", []string{"-to", "2025-01-31"}, "-from is required"},
		{"bad to", []string{"-from", "2025-01-01", "-to", "31/01/2025"}, "-to must be a date"},
		{"reversed", []string{"-from", "2025-02-01", "-to", "2025-01-31"}, "precedes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, paths, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	opts, err := parseFlags([]string{"-from", "2025-01-01", "-to", "2025-01-31", "-cartera", "40", "-plan", "Plan Norte"}, paths, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "/data", opts.dir)
	assert.Equal(t, "/out", opts.out)
	assert.Equal(t, 40.0, opts.portfolio)
	assert.Equal(t, "Plan Norte", opts.plan)
}
