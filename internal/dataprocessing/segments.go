package dataprocessing

import "salespulse/pkg/contracts/domain"

// MultiBrandSegment lists the clients counted by the multi-brand indicator,
// ordered by client code. Volume sums the labeled rows only.
func (p *Processor) MultiBrandSegment(rows []domain.Transaction) []domain.MultiBrandClient {
	minBrands, maxBrands := p.rules.BrandRange()
	out := []domain.MultiBrandClient{}
	for _, g := range p.multiBrandGroups(rows).sorted() {
		if g.volume <= 0 || len(g.labels) < minBrands || len(g.labels) > maxBrands {
			continue
		}
		out = append(out, domain.MultiBrandClient{
			Code:   g.code,
			Name:   g.name,
			Brands: g.sortedLabels(),
			Volume: g.volume,
		})
	}
	return out
}

// FlavorSegment lists the flavored-line buyers with at least one qualifying
// flavor, ordered by client code. Volume sums the flavored rows only.
func (p *Processor) FlavorSegment(rows []domain.Transaction) []domain.FlavorClient {
	out := []domain.FlavorClient{}
	for _, g := range p.flavorGroups(p.flavorRows(rows)).sorted() {
		if len(g.labels) == 0 {
			continue
		}
		out = append(out, domain.FlavorClient{
			Code:    g.code,
			Name:    g.name,
			Flavors: g.sortedLabels(),
			Volume:  g.volume,
		})
	}
	return out
}
