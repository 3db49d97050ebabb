package dataprocessing

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"salespulse/pkg/contracts/domain"
)

// PlansFilePrefix marks the upload that carries the client plans.
const PlansFilePrefix = "PLANES"

// IsPlansFile reports whether an upload is the plans file rather than a sales export.
func IsPlansFile(name string) bool {
	return strings.HasPrefix(strings.ToUpper(filepath.Base(name)), PlansFilePrefix)
}

// ParsePlans reads a headerless plans workbook. Each column is one plan:
// the first cell names it and the cells below list client codes.
// Columns without a name or without codes are skipped. A repeated name
// replaces the earlier codes and keeps the earlier position.
func ParsePlans(ctx context.Context, name string, r io.Reader) (domain.Plans, error) {
	rows, err := sheetRows(name, r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cols := sheetColumns(rows)

	var plans domain.Plans
	position := make(map[string]int)
	for _, col := range cols {
		if len(col) == 0 {
			continue
		}
		planName := strings.TrimSpace(col[0])
		if planName == "" {
			continue
		}

		var codes []string
		for _, cell := range col[1:] {
			if code := domain.NormalizeClientCode(cell); code != "" {
				codes = append(codes, code)
			}
		}
		if len(codes) == 0 {
			continue
		}

		if i, ok := position[planName]; ok {
			plans[i].Clients = codes
			continue
		}
		position[planName] = len(plans)
		plans = append(plans, domain.Plan{Name: planName, Clients: codes})
	}

	return plans, nil
}
