package charts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

func sampleYoY() domain.YearOverYear {
	return domain.YearOverYear{
		Months: []domain.MonthlyVolume{
			{Year: 2024, Month: 1, Volume: 10, Clients: 4},
			{Year: 2024, Month: 3, Volume: 12, Clients: 5},
			{Year: 2025, Month: 1, Volume: 11, Clients: 6},
		},
		Channels: []domain.ChannelVolume{
			{Year: 2023, Channel: "MAYORISTA", Volume: 5, Clients: 1},
			{Year: 2024, Channel: "MAYORISTA", Volume: 20, Clients: 3},
			{Year: 2024, Channel: "SIN_CANAL", Volume: 2, Clients: 2},
			{Year: 2025, Channel: "MAYORISTA", Volume: 15, Clients: 4},
			{Year: 2025, Channel: "SUBDISTRIBUIDOR", Volume: 8, Clients: 1},
		},
	}
}

func TestYearlyTotals(t *testing.T) {
	fig := YearlyTotals(sampleYoY().Channels, MetricVolume)

	assert.Equal(t, KindBar, fig.Kind)
	assert.Equal(t, "Total Anual Volumen", fig.Title)
	assert.Equal(t, []string{"2023", "2024", "2025"}, fig.Categories)
	require.Len(t, fig.Series, 3)
	assert.Equal(t, ColorOtherYear, fig.Series[0].Color)
	assert.Equal(t, ColorYear2024, fig.Series[1].Color)
	assert.Equal(t, ColorYear2025, fig.Series[2].Color)
	assert.InDelta(t, 22, fig.Series[1].Points[0].Value, 1e-9)

	clients := YearlyTotals(sampleYoY().Channels, MetricClients)
	assert.Equal(t, ChartYearlyClients, clients.Name)
	assert.InDelta(t, 5, clients.Series[2].Points[0].Value, 1e-9)

	assert.True(t, YearlyTotals(nil, MetricVolume).Empty())
}

func TestMonthlyComparison(t *testing.T) {
	fig := MonthlyComparison(sampleYoY().Months, MetricClients)

	assert.Equal(t, []string{"Enero", "Marzo"}, fig.Categories)
	require.Len(t, fig.Series, 2)
	assert.Equal(t, "2024", fig.Series[0].Name)
	assert.Equal(t, []Point{{Category: "Enero", Value: 6}}, fig.Series[1].Points)
}

func TestChannelBreakdown(t *testing.T) {
	fig := ChannelBreakdown(sampleYoY().Channels, MetricVolume)
	assert.Equal(t, []string{"MAYORISTA", "SIN_CANAL", "SUBDISTRIBUIDOR"}, fig.Categories)
	assert.Len(t, fig.Series, 3)
	assert.Equal(t, "Desglose de Volumen por Canal", fig.Title)
}

func TestVolumeMix(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.True(t, VolumeMix(nil).Empty())
	})

	t.Run("single year", func(t *testing.T) {
		fig := VolumeMix([]domain.ChannelVolume{{Year: 2025, Channel: "A", Volume: 3}})
		assert.Equal(t, KindPie, fig.Kind)
		require.Len(t, fig.Pies, 1)
		assert.Equal(t, "2025", fig.Pies[0].Title)
		assert.Empty(t, fig.Gap)
	})

	t.Run("two most recent years", func(t *testing.T) {
		fig := VolumeMix(sampleYoY().Channels)
		assert.Equal(t, KindMix, fig.Kind)
		assert.Equal(t, "Mix de Volumen por Canal - Comparativo 2024 vs 2025", fig.Title)
		require.Len(t, fig.Pies, 2)
		assert.Equal(t, "2024", fig.Pies[0].Title)
		assert.Equal(t, "2025", fig.Pies[1].Title)

		require.Len(t, fig.Gap, 3)
		mayorista, sinCanal, subdist := fig.Gap[0], fig.Gap[1], fig.Gap[2]

		assert.Equal(t, "MAYORISTA", mayorista.Channel)
		assert.InDelta(t, -0.25, mayorista.Gap, 1e-9)
		assert.Equal(t, "-25.0%", mayorista.Text())
		assert.Equal(t, ColorGapDown, mayorista.Color())

		assert.Equal(t, "-100.0%", sinCanal.Text())
		assert.InDelta(t, 0, sinCanal.Current, 1e-9)

		assert.False(t, subdist.HasGap)
		assert.Equal(t, "s/d", subdist.Text())
		assert.Equal(t, ColorGapMissing, subdist.Color())
	})
}

func TestGapRowColor(t *testing.T) {
	assert.Equal(t, ColorGapUp, GapRow{Gap: 0, HasGap: true}.Color())
	assert.Equal(t, "12.5%", GapRow{Gap: 0.125, HasGap: true}.Text())
}

func TestMonthNameAndMetric(t *testing.T) {
	assert.Equal(t, "Enero", MonthName(1))
	assert.Equal(t, "Diciembre", MonthName(12))
	assert.Equal(t, "13", MonthName(13))

	m, err := ParseMetric("ccc")
	require.NoError(t, err)
	assert.Equal(t, MetricClients, m)
	_, err = ParseMetric("hl")
	assert.Error(t, err)
}

func TestReportFiguresAndLookup(t *testing.T) {
	figs := ReportFigures(sampleYoY())
	assert.Len(t, figs, 7)

	fig, ok := Lookup(sampleYoY(), ChartVolumeMix)
	require.True(t, ok)
	assert.Equal(t, KindMix, fig.Kind)

	_, ok = Lookup(sampleYoY(), "unknown")
	assert.False(t, ok)
}

func TestSVG(t *testing.T) {
	for _, fig := range append(ReportFigures(sampleYoY()), VolumeMix(nil)) {
		t.Run(fig.Name, func(t *testing.T) {
			out, err := SVG(fig)
			require.NoError(t, err)
			doc := string(out)
			assert.True(t, strings.HasPrefix(doc, "<svg"))
			assert.Contains(t, doc, "</svg>")
			assert.Contains(t, doc, fig.Title)
		})
	}
}

func TestSVG_EscapesText(t *testing.T) {
	fig := ChannelBreakdown([]domain.ChannelVolume{{Year: 2025, Channel: "<Bar & Co>", Volume: 1}}, MetricVolume)
	out, err := SVG(fig)
	require.NoError(t, err)
	assert.Contains(t, string(out), "&lt;Bar &amp; Co&gt;")
	assert.NotContains(t, string(out), "<Bar")
}

func TestSVG_MixTableShowsGap(t *testing.T) {
	out, err := SVG(VolumeMix(sampleYoY().Channels))
	require.NoError(t, err)
	doc := string(out)
	assert.Contains(t, doc, "GAP por Canal")
	assert.Contains(t, doc, "s/d")
	assert.Contains(t, doc, ColorGapDown)
}
