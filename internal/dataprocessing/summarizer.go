package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"salespulse/pkg/contracts/domain"
)

// Summarize computes the KPI record for cleaned rows. Rows are expected to be
// the output of Clean for the same date range. HL covers only the month of
// params.To; every other indicator covers all rows.
func (p *Processor) Summarize(ctx context.Context, rows []domain.Transaction, params domain.ReportParams) domain.Summary {
	if len(rows) == 0 {
		return domain.Summary{Empty: true}
	}

	s := domain.Summary{Portfolio: params.Portfolio}

	toYear, toMonth, _ := params.To.Date()
	var units int
	for _, r := range rows {
		if y, m, _ := r.Fecha.Date(); y == toYear && m == toMonth {
			s.Hectoliters += r.HL
		}
		s.CumulativeHL += r.HL
		s.Gross += r.Bruto
		s.Net += r.Neto
		units += r.Bultos
	}

	if params.ActualShipments != 0 {
		s.ProjectedHectoliters = s.Hectoliters / params.ActualShipments * params.TargetShipments
	}
	if s.Gross != 0 {
		s.DiscountRate = (s.Gross - s.Net) / s.Gross * 100
	}

	s.ActiveClients = activeClients(rows, nil)
	s.ActivePureWater = activeClients(rows, func(r domain.Transaction) bool { return p.rules.IsPureWater(r.Rubro) })
	s.ActiveFlavoredWater = activeClients(rows, func(r domain.Transaction) bool { return p.rules.IsFlavoredWater(r.Rubro) })

	if params.Portfolio != 0 {
		s.Coverage = float64(s.ActiveClients) / params.Portfolio
	}
	if s.ActiveClients != 0 {
		s.Drop = float64(units) / float64(s.ActiveClients)
	}

	s.FlavorsPerOutlet = p.flavorsPerOutlet(rows)
	minBrands, maxBrands := p.rules.BrandRange()
	s.MultiBrandClients = countLabels(p.multiBrandGroups(rows), minBrands, maxBrands)

	p.logger.DebugContext(ctx, "summary computed",
		slog.Int("rows", len(rows)),
		slog.Float64("hl", s.Hectoliters),
		slog.Int("cce", s.ActiveClients),
		slog.Int("ccc", s.MultiBrandClients),
		slog.Float64("sabores_por_pv", s.FlavorsPerOutlet))

	return s
}

// CountMultiBrand counts clients that bought at least threshold distinct
// multi-brand labels.
func (p *Processor) CountMultiBrand(rows []domain.Transaction, threshold int) int {
	return countLabels(p.multiBrandGroups(rows), threshold, -1)
}

// activeClients counts clients whose Kg/Lt sum over the selected rows is positive.
func activeClients(rows []domain.Transaction, keep func(domain.Transaction) bool) int {
	volume := make(map[string]float64)
	for _, r := range rows {
		if keep != nil && !keep(r) {
			continue
		}
		volume[r.CodigoCliente] += r.KgLt
	}
	n := 0
	for _, v := range volume {
		if v > 0 {
			n++
		}
	}
	return n
}

// clientGroup accumulates the qualifying rows of one client for a segment.
type clientGroup struct {
	code   string
	name   string
	labels map[string]struct{}
	volume float64
}

func (g *clientGroup) sortedLabels() []string {
	out := make([]string, 0, len(g.labels))
	for l := range g.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

type groups map[string]*clientGroup

func (gs groups) add(r domain.Transaction, label string) {
	g, ok := gs[r.CodigoCliente]
	if !ok {
		g = &clientGroup{code: r.CodigoCliente, name: r.RazonSocial, labels: make(map[string]struct{})}
		gs[r.CodigoCliente] = g
	}
	if label != "" {
		g.labels[label] = struct{}{}
	}
	g.volume += r.KgLt
}

// sorted returns the groups ordered by client code.
func (gs groups) sorted() []*clientGroup {
	out := make([]*clientGroup, 0, len(gs))
	for _, g := range gs {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].code < out[j].code })
	return out
}

// multiBrandGroups labels the target-size rows with positive volume and
// groups them by client. Rows without a label are dropped.
func (p *Processor) multiBrandGroups(rows []domain.Transaction) groups {
	gs := make(groups)
	for _, r := range rows {
		if r.KgLt <= 0 || !p.rules.IsMultiBrandSize(r.Descripcion) {
			continue
		}
		label := p.rules.BrandLabel(r.Marcas, r.Descripcion)
		if label == "" {
			continue
		}
		gs.add(r, label)
	}
	return gs
}

// countLabels counts positive-volume clients with a label count in [lo, hi].
// A negative hi has no upper bound.
func countLabels(gs groups, lo, hi int) int {
	n := 0
	for _, g := range gs {
		if g.volume <= 0 {
			continue
		}
		c := len(g.labels)
		if c >= lo && (hi < 0 || c <= hi) {
			n++
		}
	}
	return n
}

// flavorRows returns the flavored-line rows with positive volume.
func (p *Processor) flavorRows(rows []domain.Transaction) []domain.Transaction {
	var out []domain.Transaction
	for _, r := range rows {
		if r.KgLt > 0 && p.rules.IsFlavorBrand(r.Marcas) {
			out = append(out, r)
		}
	}
	return out
}

// flavorGroups groups flavored-line rows that carry a qualifying flavor.
func (p *Processor) flavorGroups(rows []domain.Transaction) groups {
	gs := make(groups)
	for _, r := range rows {
		if flavor, ok := p.rules.Flavor(r.Descripcion); ok {
			gs.add(r, flavor)
		}
	}
	return gs
}

// flavorsPerOutlet divides the summed per-client distinct flavor counts by
// the number of flavored-line buyers, including buyers whose rows carry no
// qualifying flavor.
func (p *Processor) flavorsPerOutlet(rows []domain.Transaction) float64 {
	levite := p.flavorRows(rows)
	if len(levite) == 0 {
		return 0
	}
	buyers := make(map[string]struct{})
	for _, r := range levite {
		buyers[r.CodigoCliente] = struct{}{}
	}

	total := 0
	for _, g := range p.flavorGroups(levite) {
		total += len(g.labels)
	}
	return float64(total) / float64(len(buyers))
}
