package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Nandu", StripAccents("Ñandú"))
	assert.Equal(t, "nieto raul edgardo", FoldName("  Nieto Raúl Edgardo "))
	assert.Equal(t, "codigocliente", foldHeader("Código Cliente"))
	assert.Equal(t, "kglt", foldHeader(" Kg_Lt "))
	assert.Equal(t, "Pomelo Rosado", TitleCase("pomelo rosado"))
}

func TestRuleSet_Excluded(t *testing.T) {
	rs := DefaultRuleSet()

	tests := []struct {
		desc string
		want bool
	}{
		{"CCC Ñandu 473", true},
		{"ccc ÑANDU lata", true},
		{"Ñandu 330", false},
		{"Heineken 330cc", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.Excluded(tt.desc))
		})
	}
}

func TestRuleSet_PackageSizeAndUnits(t *testing.T) {
	rs := DefaultRuleSet()

	tests := []struct {
		desc     string
		wantSize string
		wantCC   int
		wantUnit int
	}{
		{"Heineken 330cc", "330", 330, 1},
		{"Agua 6x1500ml", "1500", 0, 6},
		{"Cerveza 330 pack 12x", "330", 0, 12},
		{"Soda sifon", "Sin Calibre", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			size, cc := rs.PackageSize(tt.desc)
			assert.Equal(t, tt.wantSize, size)
			assert.Equal(t, tt.wantCC, cc)
			assert.Equal(t, tt.wantUnit, rs.Units(tt.desc))
		})
	}
}

func TestRuleSet_Channel(t *testing.T) {
	rs := DefaultRuleSet()

	assert.Equal(t, "SUBDISTRIBUIDOR", rs.Channel("  PALMA José Lucas ", "MAYORISTA"))
	assert.Equal(t, "SUBDISTRIBUIDOR", rs.Channel("Distribuciones Aldana S.R.L", ""))
	assert.Equal(t, "SIN_CANAL", rs.Channel("Kiosco Centro", ""))
	assert.Equal(t, "SIN_CANAL", rs.Channel("Kiosco Centro", "   "))
	assert.Equal(t, "MAYORISTA", rs.Channel("Kiosco Centro", "MAYORISTA"))
}

func TestRuleSet_Flavor(t *testing.T) {
	rs := DefaultRuleSet()

	tests := []struct {
		desc   string
		want   string
		wantOK bool
	}{
		{"LEVITE POMELO 1.5L", "Pomelo", true},
		{"Levite manzana verde 500", "Manzana Verde", true},
		{"Levite Limonada 2L", "", false},
		{"Levite 500", "", false},
		{"Agua mineral", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, ok := rs.Flavor(tt.desc)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, rs.IsFlavorBrand("levite"))
	assert.True(t, rs.IsFlavorBrand("AGUAS LEVITE"))
	assert.False(t, rs.IsFlavorBrand("LEVITEX"))
}

func TestRuleSet_BrandLabel(t *testing.T) {
	rs := DefaultRuleSet()

	tests := []struct {
		brand string
		desc  string
		want  string
	}{
		{"HEINEKEN", "Heineken 330cc", "Heineken"},
		{"Miller Genuine Draft", "Miller 330", "Miller"},
		{"Imperial", "Imperial Golden 330", "Imperial Golden"},
		{"Imperial", "Imperial Stout 330", ""},
		{"Schneider", "Schneider 330", ""},
	}
	for _, tt := range tests {
		t.Run(tt.brand+"/"+tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.BrandLabel(tt.brand, tt.desc))
		})
	}

	assert.True(t, rs.IsMultiBrandSize("Heineken 330cc"))
	assert.False(t, rs.IsMultiBrandSize("Heineken 3300"))
}

func TestNewRuleSet_CustomRules(t *testing.T) {
	rules, err := config.DefaultRules()
	require.NoError(t, err)
	rules.Channels.SubdistributorNames = []string{"Kiosco Centro"}

	rs, err := NewRuleSet(rules)
	require.NoError(t, err)
	assert.Equal(t, "SUBDISTRIBUIDOR", rs.Channel("kiosco centro", ""))

	_, err = NewRuleSet(nil)
	assert.Error(t, err)

	rules.MultiBrand.SizePattern = "("
	_, err = NewRuleSet(rules)
	assert.Error(t, err)
}
