package dataprocessing

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"

	"salespulse/pkg/contracts/domain"
)

type column int

const (
	colCodigoCliente column = iota
	colRazonSocial
	colNombre
	colDescripcion
	colMarcas
	colRubro
	colCanal
	colFecha
	colKgLt
	colNetoSD
	colPorcDescLinea
)

// headerAliases maps folded header text to a column.
var headerAliases = map[string]column{
	"codigocliente":       colCodigoCliente,
	"codcliente":          colCodigoCliente,
	"cliente":             colCodigoCliente,
	"razonsocial":         colRazonSocial,
	"nombre":              colNombre,
	"nombrefantasia":      colNombre,
	"descripcion":         colDescripcion,
	"descripcionarticulo": colDescripcion,
	"marca":               colMarcas,
	"marcas":              colMarcas,
	"rubro":               colRubro,
	"canal":               colCanal,
	"fecha":               colFecha,
	"kglt":                colKgLt,
	"netosd":              colNetoSD,
	"porcdesclinea":       colPorcDescLinea,
}

// ParseWorkbook reads the first sheet of a sales export. Row 1 is the header.
func ParseWorkbook(ctx context.Context, name string, r io.Reader) (*domain.Dataset, error) {
	rows, err := sheetRows(name, r)
	if err != nil {
		return nil, err
	}

	dataset := &domain.Dataset{Files: []string{name}}
	if len(rows) == 0 {
		return dataset, nil
	}

	index := make(map[column]int)
	for i, header := range rows[0] {
		if col, ok := headerAliases[foldHeader(header)]; ok {
			if _, seen := index[col]; !seen {
				index[col] = i
			}
		}
	}
	_, dataset.Columns.HasNombre = index[colNombre]
	_, dataset.Columns.HasRazonSocial = index[colRazonSocial]
	_, dataset.Columns.HasCanal = index[colCanal]
	_, dataset.Columns.HasRubro = index[colRubro]
	_, dataset.Columns.HasMarcas = index[colMarcas]

	dataset.Rows = make([]domain.RawTransaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if blankRow(row) {
			continue
		}

		cell := func(c column) string {
			idx, ok := index[c]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		dataset.Rows = append(dataset.Rows, domain.RawTransaction{
			CodigoCliente: domain.NormalizeClientCode(cell(colCodigoCliente)),
			RazonSocial:   cell(colRazonSocial),
			Nombre:        cell(colNombre),
			Descripcion:   cell(colDescripcion),
			Marcas:        cell(colMarcas),
			Rubro:         cell(colRubro),
			Canal:         cell(colCanal),
			Fecha:         cell(colFecha),
			KgLt:          parseNumber(cell(colKgLt)),
			NetoSD:        parseNumber(cell(colNetoSD)),
			PorcDescLinea: parseNumber(cell(colPorcDescLinea)),
			SourceFile:    name,
		})
	}

	return dataset, nil
}

// parseNumber reads a numeric cell. Blank and unparseable cells count as 0.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
