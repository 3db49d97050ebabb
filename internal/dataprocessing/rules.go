package dataprocessing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"salespulse/internal/config"
)

// RuleSet is the compiled form of config.Rules used by the cleaning and
// aggregation steps. It is immutable and safe for concurrent use.
type RuleSet struct {
	defaultChannel  string
	subdistributor  string
	subdistributors map[string]struct{}

	excludedProduct string
	requiredMarker  string

	packageSize    *regexp.Regexp
	packageSizeCC  *regexp.Regexp
	packageDefault string

	units        *regexp.Regexp
	unitsDefault int

	pureWater     string
	flavoredWater string

	flavorBrand    *regexp.Regexp
	flavorPattern  *regexp.Regexp
	flavorExcluded string

	multiBrandSize *regexp.Regexp
	minBrands      int
	maxBrands      int
	brands         []brandMatcher
}

type brandMatcher struct {
	label       string
	brand       string
	description string
}

// NewRuleSet compiles rules. The rules are validated first.
func NewRuleSet(rules *config.Rules) (*RuleSet, error) {
	if rules == nil {
		return nil, fmt.Errorf("rules must not be nil")
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	rs := &RuleSet{
		defaultChannel:  rules.Channels.Default,
		subdistributor:  rules.Channels.Subdistributor,
		subdistributors: make(map[string]struct{}, len(rules.Channels.SubdistributorNames)),
		excludedProduct: strings.ToLower(rules.Exclusion.Product),
		requiredMarker:  strings.ToLower(rules.Exclusion.RequiredMarker),
		packageSize:     regexp.MustCompile(rules.PackageSize.Pattern),
		packageSizeCC:   regexp.MustCompile(rules.PackageSize.CCPattern),
		packageDefault:  rules.PackageSize.Default,
		units:           regexp.MustCompile(rules.Units.Pattern),
		unitsDefault:    rules.Units.Default,
		pureWater:       strings.ToUpper(rules.Categories.PureWater),
		flavoredWater:   strings.ToUpper(rules.Categories.FlavoredWater),
		flavorBrand:     regexp.MustCompile(rules.Flavors.BrandPattern),
		flavorPattern:   regexp.MustCompile(rules.Flavors.FlavorPattern),
		flavorExcluded:  strings.ToLower(rules.Flavors.Excluded),
		multiBrandSize:  regexp.MustCompile(rules.MultiBrand.SizePattern),
		minBrands:       rules.MultiBrand.MinBrands,
		maxBrands:       rules.MultiBrand.MaxBrands,
	}
	if rs.packageDefault == "" {
		rs.packageDefault = "Sin Calibre"
	}

	for _, name := range rules.Channels.SubdistributorNames {
		if folded := FoldName(name); folded != "" {
			rs.subdistributors[folded] = struct{}{}
		}
	}
	for _, b := range rules.MultiBrand.Brands {
		rs.brands = append(rs.brands, brandMatcher{
			label:       b.Label,
			brand:       FoldName(b.BrandContains),
			description: FoldName(b.DescriptionContains),
		})
	}

	return rs, nil
}

// DefaultRuleSet compiles the embedded rules document.
func DefaultRuleSet() *RuleSet {
	rules, err := config.DefaultRules()
	if err != nil {
		panic(fmt.Sprintf("embedded rules are invalid: %v", err))
	}
	rs, err := NewRuleSet(rules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules do not compile: %v", err))
	}
	return rs
}

// Excluded reports whether a product description is dropped before reporting.
func (rs *RuleSet) Excluded(description string) bool {
	if rs.excludedProduct == "" {
		return false
	}
	lower := strings.ToLower(description)
	if !strings.Contains(lower, rs.excludedProduct) {
		return false
	}
	return rs.requiredMarker == "" || !strings.Contains(lower, rs.requiredMarker)
}

// PackageSize returns the size token of a description and its volume in cc, if stated.
func (rs *RuleSet) PackageSize(description string) (string, int) {
	lower := strings.ToLower(description)

	size := rs.packageDefault
	if m := rs.packageSize.FindStringSubmatch(lower); len(m) > 1 && m[1] != "" {
		size = m[1]
	}

	var cc int
	if m := rs.packageSizeCC.FindStringSubmatch(lower); len(m) > 1 {
		cc, _ = strconv.Atoi(m[1])
	}
	return size, cc
}

// Units returns the number of units per package stated in a description.
func (rs *RuleSet) Units(description string) int {
	if m := rs.units.FindStringSubmatch(description); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return rs.unitsDefault
}

// Channel resolves the sales channel of a client. Subdistributors override
// whatever channel the export carries.
func (rs *RuleSet) Channel(clientName, channel string) string {
	if _, ok := rs.subdistributors[FoldName(clientName)]; ok {
		return rs.subdistributor
	}
	if strings.TrimSpace(channel) == "" {
		return rs.defaultChannel
	}
	return channel
}

// IsPureWater reports whether a category is the pure water line.
func (rs *RuleSet) IsPureWater(category string) bool {
	return strings.ToUpper(category) == rs.pureWater
}

// IsFlavoredWater reports whether a category is the flavored water line.
func (rs *RuleSet) IsFlavoredWater(category string) bool {
	return strings.ToUpper(category) == rs.flavoredWater
}

// IsFlavorBrand reports whether a brand belongs to the flavored product line.
func (rs *RuleSet) IsFlavorBrand(brand string) bool {
	return rs.flavorBrand.MatchString(brand)
}

// Flavor extracts the title-cased flavor of a description. Excluded flavors
// and descriptions without a flavor return false.
func (rs *RuleSet) Flavor(description string) (string, bool) {
	m := rs.flavorPattern.FindStringSubmatch(strings.ToLower(description))
	if len(m) < 2 {
		return "", false
	}
	flavor := strings.TrimSpace(m[1])
	if flavor == "" {
		return "", false
	}
	if rs.flavorExcluded != "" && strings.Contains(strings.ToLower(flavor), rs.flavorExcluded) {
		return "", false
	}
	return TitleCase(flavor), true
}

// IsMultiBrandSize reports whether a description is in the multi-brand package size.
func (rs *RuleSet) IsMultiBrandSize(description string) bool {
	return rs.multiBrandSize.MatchString(description)
}

// BrandLabel returns the first multi-brand label matching a row, or "".
func (rs *RuleSet) BrandLabel(brand, description string) string {
	foldedBrand := FoldName(brand)
	foldedDesc := FoldName(description)
	for _, b := range rs.brands {
		if !strings.Contains(foldedBrand, b.brand) {
			continue
		}
		if b.description != "" && !strings.Contains(foldedDesc, b.description) {
			continue
		}
		return b.label
	}
	return ""
}

// BrandRange returns the inclusive distinct-label range of the multi-brand segment.
func (rs *RuleSet) BrandRange() (int, int) {
	return rs.minBrands, rs.maxBrands
}

// Channels returns the default and subdistributor channel tags.
func (rs *RuleSet) Channels() (string, string) {
	return rs.defaultChannel, rs.subdistributor
}
