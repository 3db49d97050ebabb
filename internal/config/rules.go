package config

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"
)

// RulesVersion is the rules document version this build understands.
const RulesVersion = 1

//go:embed rules.yaml
var defaultRules []byte

// Rules is the versioned business configuration used by the report pipeline.
type Rules struct {
	Version     int             `yaml:"version"`
	Channels    ChannelRules    `yaml:"channels"`
	Exclusion   ExclusionRule   `yaml:"exclusion"`
	PackageSize PackageSizeRule `yaml:"package_size"`
	Units       UnitsRule       `yaml:"units"`
	Categories  CategoryRules   `yaml:"categories"`
	Flavors     FlavorRule      `yaml:"flavors"`
	MultiBrand  MultiBrandRule  `yaml:"multi_brand"`
}

// ChannelRules names the channel tags and the subdistributor client list.
type ChannelRules struct {
	Default             string   `yaml:"default"`
	Subdistributor      string   `yaml:"subdistributor"`
	SubdistributorNames []string `yaml:"subdistributor_names"`
}

// ExclusionRule drops products matching Product unless RequiredMarker is also present.
type ExclusionRule struct {
	Product        string `yaml:"product"`
	RequiredMarker string `yaml:"required_marker"`
}

// PackageSizeRule extracts the package size from a product description.
type PackageSizeRule struct {
	Pattern   string `yaml:"pattern"`
	CCPattern string `yaml:"cc_pattern"`
	Default   string `yaml:"default"`
}

// UnitsRule extracts the units per package from a product description.
type UnitsRule struct {
	Pattern string `yaml:"pattern"`
	Default int    `yaml:"default"`
}

// CategoryRules names the product categories with their own active-client count.
type CategoryRules struct {
	PureWater     string `yaml:"pure_water"`
	FlavoredWater string `yaml:"flavored_water"`
}

// FlavorRule selects the flavored product line and extracts its flavor token.
type FlavorRule struct {
	BrandPattern  string `yaml:"brand_pattern"`
	FlavorPattern string `yaml:"flavor_pattern"`
	Excluded      string `yaml:"excluded"`
}

// MultiBrandRule defines the multi-brand segment.
type MultiBrandRule struct {
	SizePattern string      `yaml:"size_pattern"`
	MinBrands   int         `yaml:"min_brands"`
	MaxBrands   int         `yaml:"max_brands"`
	Brands      []BrandRule `yaml:"brands"`
}

// BrandRule labels a row when its brand contains BrandContains and,
// if set, its description contains DescriptionContains.
type BrandRule struct {
	Label               string `yaml:"label"`
	BrandContains       string `yaml:"brand_contains"`
	DescriptionContains string `yaml:"description_contains,omitempty"`
}

// DefaultRules returns the embedded rules document.
func DefaultRules() (*Rules, error) {
	return ParseRules(defaultRules)
}

// LoadRules reads the rules file at path, or the embedded document when path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a rules document.
func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.UnmarshalStrict(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

// Validate checks the version, required fields and that every pattern compiles.
func (r *Rules) Validate() error {
	if r.Version != RulesVersion {
		return fmt.Errorf("unsupported rules version %d, expected %d", r.Version, RulesVersion)
	}
	if strings.TrimSpace(r.Channels.Default) == "" || strings.TrimSpace(r.Channels.Subdistributor) == "" {
		return fmt.Errorf("channel tags must not be empty")
	}
	if r.Units.Default <= 0 {
		return fmt.Errorf("units default must be positive")
	}
	if r.MultiBrand.MinBrands < 1 || r.MultiBrand.MaxBrands < r.MultiBrand.MinBrands {
		return fmt.Errorf("invalid multi brand range %d..%d", r.MultiBrand.MinBrands, r.MultiBrand.MaxBrands)
	}
	if len(r.MultiBrand.Brands) == 0 {
		return fmt.Errorf("multi brand rule needs at least one brand")
	}
	for i, b := range r.MultiBrand.Brands {
		if b.Label == "" || b.BrandContains == "" {
			return fmt.Errorf("brand rule %d needs a label and a brand match", i)
		}
	}

	patterns := map[string]string{
		"package_size.pattern":     r.PackageSize.Pattern,
		"package_size.cc_pattern":  r.PackageSize.CCPattern,
		"units.pattern":            r.Units.Pattern,
		"flavors.brand_pattern":    r.Flavors.BrandPattern,
		"flavors.flavor_pattern":   r.Flavors.FlavorPattern,
		"multi_brand.size_pattern": r.MultiBrand.SizePattern,
	}
	for name, pattern := range patterns {
		if pattern == "" {
			return fmt.Errorf("rule %s must not be empty", name)
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("rule %s does not compile: %w", name, err)
		}
	}

	return nil
}
