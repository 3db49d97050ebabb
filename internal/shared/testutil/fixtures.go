package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"

	"salespulse/pkg/contracts/domain"
)

// SalesHeader is the column layout written by SalesWorkbook.
var SalesHeader = []interface{}{
	"CodigoCliente", "RazonSocial", "Nombre", "Descripcion", "Marcas", "Rubro",
	"Canal", "Fecha", "Kg_Lt", "NetoSD", "PorcDescLinea",
}

// SalesWorkbook builds an xlsx export with one row per transaction.
// A Fecha that parses as a number is written as a numeric serial cell.
func SalesWorkbook(t *testing.T, rows []domain.RawTransaction) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &SalesHeader); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for i, r := range rows {
		var fecha interface{} = r.Fecha
		if serial, err := strconv.ParseFloat(r.Fecha, 64); err == nil {
			fecha = serial
		}
		values := []interface{}{
			r.CodigoCliente, r.RazonSocial, r.Nombre, r.Descripcion, r.Marcas, r.Rubro,
			r.Canal, fecha, r.KgLt, r.NetoSD, r.PorcDescLinea,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}

	return workbookBytes(t, f)
}

// PlansWorkbook builds a headerless plans file, one plan per column.
func PlansWorkbook(t *testing.T, columns [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for c, column := range columns {
		for r, value := range column {
			if value == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("write plan cell: %v", err)
			}
		}
	}

	return workbookBytes(t, f)
}

// WriteFile writes data under dir and returns the full path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// NewRegistryServer serves the registry document as the remote license list.
func NewRegistryServer(t *testing.T, registry domain.LicenseRegistry) *httptest.Server {
	t.Helper()
	body, err := json.Marshal(registry)
	if err != nil {
		t.Fatalf("marshal registry: %v", err)
	}
	return NewRawRegistryServer(t, http.StatusOK, string(body))
}

// NewRawRegistryServer serves a fixed status and body, for malformed registry cases.
func NewRawRegistryServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func workbookBytes(t *testing.T, f *excelize.File) []byte {
	t.Helper()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("serialize workbook: %v", err)
	}
	return buf.Bytes()
}
