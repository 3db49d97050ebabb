package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClientCode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "integer", raw: "123", want: "123"},
		{name: "float with zero fraction", raw: "123.0", want: "123"},
		{name: "surrounding spaces", raw: "  456 ", want: "456"},
		{name: "alphanumeric kept", raw: "C-001", want: "C-001"},
		{name: "nan is empty", raw: "nan", want: ""},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeClientCode(tt.raw))
		})
	}
}

func TestPlansFind(t *testing.T) {
	plans := Plans{
		{Name: "Plan A", Clients: []string{"1", "2"}},
		{Name: "Plan B", Clients: []string{"3"}},
	}

	plan, ok := plans.Find("Plan B")
	require.True(t, ok)
	assert.Equal(t, []string{"3"}, plan.Clients)

	_, ok = plans.Find("Plan C")
	assert.False(t, ok)
	assert.Equal(t, []string{"Plan A", "Plan B"}, plans.Names())
}

func TestSummaryEntries(t *testing.T) {
	t.Run("empty summary has no entries", func(t *testing.T) {
		assert.Nil(t, Summary{Empty: true}.Entries())
	})

	t.Run("order and formatting", func(t *testing.T) {
		s := Summary{
			Hectoliters:      1.26,
			DiscountRate:     12.345,
			ActiveClients:    4,
			Portfolio:        10,
			Coverage:         0.4,
			Drop:             2.25,
			FlavorsPerOutlet: 1.3333,
			Gross:            1000,
			Net:              900.04,
		}
		entries := s.Entries()
		require.Len(t, entries, 16)

		assert.Equal(t, KPIHectoliters, entries[0].Name)
		assert.Equal(t, 1.3, entries[0].Value)
		assert.Equal(t, "12.3%", entries[3].Display())
		assert.Equal(t, KPICoverage, entries[8].Name)
		assert.Equal(t, "40.0%", entries[8].Display())
		assert.Equal(t, 1.3333, entries[10].Value)
		assert.Equal(t, 100.0, entries[14].Value)
		assert.Equal(t, KPIGrossFunction, entries[15].Name)
		assert.Equal(t, 1000.0, entries[15].Display())
	})
}

func TestLicenseRegistryFind(t *testing.T) {
	reg := LicenseRegistry{Licencias: []LicenseRecord{
		{Codigo: "AAAA-1111-BBBB-2222", Activo: false},
	}}

	rec, ok := reg.Find("AAAA-1111-BBBB-2222")
	require.True(t, ok)
	assert.False(t, rec.Activo)

	rec.Activo = true
	assert.True(t, reg.Licencias[0].Activo, "Find returns a pointer into the registry")

	_, ok = reg.Find("ZZZZ-0000-ZZZZ-0000")
	assert.False(t, ok)
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.25, 0.2},
		{0.75, 0.8},
		{1.25, 1.2},
		{-0.25, -0.2},
		{3.14, 3.1},
		{123.456, 123.5},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round1(tt.in), "Round1(%v)", tt.in)
	}
}
