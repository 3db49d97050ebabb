package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// serialEpoch is day zero of spreadsheet serial dates.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// dateLayouts are tried in order. Slash and dash forms are day first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
}

// Processor applies the business rules to datasets.
type Processor struct {
	rules  *RuleSet
	logger *slog.Logger
}

// NewProcessor creates a processor. A nil rule set uses the embedded rules.
func NewProcessor(rules *RuleSet, logger *slog.Logger) *Processor {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		rules:  rules,
		logger: infrastructure.WithComponent(logger, "processor"),
	}
}

// Rules returns the processor's rule set.
func (p *Processor) Rules() *RuleSet {
	return p.rules
}

// Clean filters the dataset to [from, to] by calendar day and derives the
// per-row fields. When plan is non-empty only that plan's clients are kept.
func (p *Processor) Clean(ctx context.Context, ds *domain.Dataset, from, to time.Time, plan string) ([]domain.Transaction, error) {
	if ds.Empty() {
		return []domain.Transaction{}, nil
	}

	var planClients map[string]struct{}
	if plan != "" {
		found, ok := ds.Plans.Find(plan)
		if !ok {
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("unknown plan %q", plan)).
				WithContext("plans", ds.Plans.Names())
		}
		planClients = make(map[string]struct{}, len(found.Clients))
		for _, c := range found.Clients {
			planClients[c] = struct{}{}
		}
	}

	first := dayOf(from)
	last := dayOf(to)

	var excluded, undated, outOfRange int
	out := make([]domain.Transaction, 0, len(ds.Rows))
	for i, raw := range ds.Rows {
		if i%5000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if p.rules.Excluded(raw.Descripcion) {
			excluded++
			continue
		}

		fecha, ok := ParseDate(raw.Fecha)
		if !ok {
			undated++
			continue
		}
		day := dayOf(fecha)
		if day.Before(first) || day.After(last) {
			outOfRange++
			continue
		}

		if planClients != nil {
			if _, ok := planClients[raw.CodigoCliente]; !ok {
				continue
			}
		}

		out = append(out, p.transaction(ds.Columns, raw, fecha))
	}

	p.logger.DebugContext(ctx, "dataset cleaned",
		slog.Int("input_rows", len(ds.Rows)),
		slog.Int("kept_rows", len(out)),
		slog.Int("excluded_products", excluded),
		slog.Int("undated", undated),
		slog.Int("out_of_range", outOfRange))

	return out, nil
}

func (p *Processor) transaction(cols domain.Columns, raw domain.RawTransaction, fecha time.Time) domain.Transaction {
	size, cc := p.rules.PackageSize(raw.Descripcion)

	clientName := raw.RazonSocial
	if cols.HasNombre {
		clientName = raw.Nombre
	}

	return domain.Transaction{
		CodigoCliente: raw.CodigoCliente,
		RazonSocial:   raw.RazonSocial,
		Nombre:        raw.Nombre,
		Descripcion:   raw.Descripcion,
		Marcas:        raw.Marcas,
		Rubro:         raw.Rubro,
		Canal:         p.rules.Channel(clientName, raw.Canal),
		Fecha:         fecha,
		KgLt:          raw.KgLt,
		HL:            raw.KgLt / 100,
		Calibre:       size,
		CalibreCC:     cc,
		Bultos:        p.rules.Units(raw.Descripcion),
		Bruto:         raw.NetoSD,
		Neto:          raw.NetoSD * (1 - raw.PorcDescLinea/100),
	}
}

// ParseDate reads a spreadsheet serial day or a date string.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(serial) || math.IsInf(serial, 0) {
			return time.Time{}, false
		}
		days := math.Floor(serial)
		seconds := math.Round((serial - days) * 86400)
		return serialEpoch.AddDate(0, 0, int(days)).Add(time.Duration(seconds) * time.Second), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
