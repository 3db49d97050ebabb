// Package domain contains the core domain models for SalesPulse.
// These types are shared by the ingestion, reporting, export and transport layers.
package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Default channel tags
const (
	ChannelUnknown         = "SIN_CANAL"
	ChannelSubdistributor  = "SUBDISTRIBUIDOR"
	PackageSizeUnknown     = "Sin Calibre"
	DefaultUnitsPerPackage = 1
)

// RawTransaction is one sale line exactly as read from an export workbook.
// Fecha keeps the raw cell text: either a spreadsheet serial day or a date string.
type RawTransaction struct {
	CodigoCliente string  `json:"codigo_cliente"`
	RazonSocial   string  `json:"razon_social"`
	Nombre        string  `json:"nombre,omitempty"`
	Descripcion   string  `json:"descripcion"`
	Marcas        string  `json:"marcas"`
	Rubro         string  `json:"rubro,omitempty"`
	Canal         string  `json:"canal,omitempty"`
	Fecha         string  `json:"fecha"`
	KgLt          float64 `json:"kg_lt"`
	NetoSD        float64 `json:"neto_sd"`
	PorcDescLinea float64 `json:"porc_desc_linea"`
	SourceFile    string  `json:"source_file,omitempty"`
}

// Columns records which optional columns were present in at least one source file.
type Columns struct {
	HasNombre      bool `json:"has_nombre"`
	HasRazonSocial bool `json:"has_razon_social"`
	HasCanal       bool `json:"has_canal"`
	HasRubro       bool `json:"has_rubro"`
	HasMarcas      bool `json:"has_marcas"`
}

// Merge returns the union of both column sets.
func (c Columns) Merge(other Columns) Columns {
	return Columns{
		HasNombre:      c.HasNombre || other.HasNombre,
		HasRazonSocial: c.HasRazonSocial || other.HasRazonSocial,
		HasCanal:       c.HasCanal || other.HasCanal,
		HasRubro:       c.HasRubro || other.HasRubro,
		HasMarcas:      c.HasMarcas || other.HasMarcas,
	}
}

// Dataset is the combined table built from one upload.
type Dataset struct {
	Key     string           `json:"key"`
	Files   []string         `json:"files"`
	Columns Columns          `json:"columns"`
	Rows    []RawTransaction `json:"-"`
	Plans   Plans            `json:"plans,omitempty"`
}

// Empty reports whether the dataset has no transaction rows.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Rows) == 0
}

// Transaction is a cleaned sale line with its derived fields.
type Transaction struct {
	CodigoCliente string    `json:"codigo_cliente"`
	RazonSocial   string    `json:"razon_social"`
	Nombre        string    `json:"nombre,omitempty"`
	Descripcion   string    `json:"descripcion"`
	Marcas        string    `json:"marcas"`
	Rubro         string    `json:"rubro,omitempty"`
	Canal         string    `json:"canal"`
	Fecha         time.Time `json:"fecha"`
	KgLt          float64   `json:"kg_lt"`
	HL            float64   `json:"hl"`
	Calibre       string    `json:"calibre"`
	CalibreCC     int       `json:"calibre_cc,omitempty"`
	Bultos        int       `json:"bultos"`
	Bruto         float64   `json:"bruto"`
	Neto          float64   `json:"neto"`
}

// Plan is a named list of client codes.
type Plan struct {
	Name    string   `json:"name"`
	Clients []string `json:"clients"`
}

// Plans keeps plans in the column order of the plans file.
type Plans []Plan

// Find returns the plan with the given name.
func (p Plans) Find(name string) (Plan, bool) {
	for _, plan := range p {
		if plan.Name == name {
			return plan, true
		}
	}
	return Plan{}, false
}

// Names returns plan names in file order.
func (p Plans) Names() []string {
	names := make([]string, 0, len(p))
	for _, plan := range p {
		names = append(names, plan.Name)
	}
	return names
}

// NormalizeClientCode trims a code and strips a numeric fraction so that
// "123", "123.0" and " 123 " compare equal.
func NormalizeClientCode(raw string) string {
	code := strings.TrimSpace(raw)
	if code == "" || strings.EqualFold(code, "nan") {
		return ""
	}
	if f, err := strconv.ParseFloat(code, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return code
}
