package exporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"salespulse/pkg/contracts/domain"
)

// Segment workbook sheets.
const (
	SheetMultiBrand = "CCC Ñandú"
	SheetFlavors    = "PV Levite"
	SheetOverview   = "Resumen"
)

const (
	multiBrandDescription = "Clientes que compraron 2+ marcas entre Heineken, Miller, Imperial Golden (calibre 330)"
	flavorDescription     = "Clientes que compraron sabores Levite (excluyendo limonada)"
)

type sheetSpec struct {
	name    string
	headers []string
	widths  []float64
}

var (
	multiBrandSheet = sheetSpec{
		name:    SheetMultiBrand,
		headers: []string{"Código Cliente", "Razón Social", "Cantidad Marcas", "Marcas Compradas", "Total Kg/Lt"},
		widths:  []float64{15, 40, 15, 30, 15},
	}
	flavorSheet = sheetSpec{
		name:    SheetFlavors,
		headers: []string{"Código Cliente", "Razón Social", "Cantidad Sabores", "Sabores Comprados", "Total Kg/Lt"},
		widths:  []float64{15, 40, 18, 40, 15},
	}
	overviewSheet = sheetSpec{
		name:    SheetOverview,
		headers: []string{"Indicador", "Descripción", "Total Clientes"},
		widths:  []float64{15, 60, 15},
	}
)

// SegmentWorkbook writes the client detail of both segments plus an
// overview. Empty segments still get their header row.
func SegmentWorkbook(multi []domain.MultiBrandClient, flavors []domain.FlavorClient, now time.Time) (*Workbook, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), multiBrandSheet.name); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	multiRows := make([][]interface{}, 0, len(multi))
	for _, c := range multi {
		multiRows = append(multiRows, []interface{}{c.Code, c.Name, len(c.Brands), strings.Join(c.Brands, ", "), c.Volume})
	}
	if err := writeSheet(f, multiBrandSheet, multiRows); err != nil {
		return nil, err
	}

	flavorRows := make([][]interface{}, 0, len(flavors))
	for _, c := range flavors {
		flavorRows = append(flavorRows, []interface{}{c.Code, c.Name, len(c.Flavors), strings.Join(c.Flavors, ", "), c.Volume})
	}
	if err := writeSheet(f, flavorSheet, flavorRows); err != nil {
		return nil, err
	}

	overview := [][]interface{}{
		{SheetMultiBrand, multiBrandDescription, len(multi)},
		{SheetFlavors, flavorDescription, len(flavors)},
	}
	if err := writeSheet(f, overviewSheet, overview); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return &Workbook{Filename: SegmentFilename(now), Data: buf.Bytes()}, nil
}

func writeSheet(f *excelize.File, spec sheetSpec, rows [][]interface{}) error {
	if idx, _ := f.GetSheetIndex(spec.name); idx < 0 {
		if _, err := f.NewSheet(spec.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", spec.name, err)
		}
	}

	header := make([]interface{}, len(spec.headers))
	for i, h := range spec.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(spec.name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", spec.name, err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(spec.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", spec.name, i+2, err)
		}
	}

	for i, width := range spec.widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(spec.name, col, col, width); err != nil {
			return fmt.Errorf("failed to size %s column %s: %w", spec.name, col, err)
		}
	}
	return nil
}
