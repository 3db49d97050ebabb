package charts

import (
	"fmt"
	"sort"
	"strconv"

	"salespulse/pkg/contracts/domain"
)

// Chart names used in URLs and figure lists.
const (
	ChartYearlyVolume   = "yearly-volume"
	ChartYearlyClients  = "yearly-ccc"
	ChartMonthlyVolume  = "monthly-volume"
	ChartMonthlyClients = "monthly-ccc"
	ChartChannelVolume  = "channel-volume"
	ChartChannelClients = "channel-ccc"
	ChartVolumeMix      = "volume-mix"
)

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish month name for 1..12.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return strconv.Itoa(m)
	}
	return monthNames[m-1]
}

// YearColor is the fixed bar color of a year in the yearly totals chart.
func YearColor(year int) string {
	switch year {
	case 2024:
		return ColorYear2024
	case 2025:
		return ColorYear2025
	default:
		return ColorOtherYear
	}
}

func channelValue(c domain.ChannelVolume, metric Metric) float64 {
	if metric == MetricClients {
		return float64(c.Clients)
	}
	return c.Volume
}

func monthValue(m domain.MonthlyVolume, metric Metric) float64 {
	if metric == MetricClients {
		return float64(m.Clients)
	}
	return m.Volume
}

// YearlyTotals sums the channel aggregates per year, one bar per year.
func YearlyTotals(channels []domain.ChannelVolume, metric Metric) Figure {
	fig := Figure{
		Name:   chartName(ChartYearlyVolume, ChartYearlyClients, metric),
		Kind:   KindBar,
		Title:  fmt.Sprintf("Total Anual %s", metric),
		XTitle: "Año",
		YTitle: string(metric),
		Width:  1000,
		Height: 400,
	}
	if len(channels) == 0 {
		return fig
	}

	totals := make(map[int]float64)
	for _, c := range channels {
		totals[c.Year] += channelValue(c, metric)
	}
	years := make([]int, 0, len(totals))
	for y := range totals {
		years = append(years, y)
	}
	sort.Ints(years)

	for _, y := range years {
		label := strconv.Itoa(y)
		fig.Categories = append(fig.Categories, label)
		fig.Series = append(fig.Series, Series{
			Name:   label,
			Color:  YearColor(y),
			Points: []Point{{Category: label, Value: totals[y]}},
		})
	}
	return fig
}

// MonthlyComparison plots one series per year over the months present.
func MonthlyComparison(months []domain.MonthlyVolume, metric Metric) Figure {
	fig := Figure{
		Name:   chartName(ChartMonthlyVolume, ChartMonthlyClients, metric),
		Kind:   KindBar,
		Title:  fmt.Sprintf("%s Mensual - Año Actual vs. Anterior", metric),
		XTitle: "Mes",
		YTitle: string(metric),
	}
	if len(months) == 0 {
		return fig
	}

	present := make(map[int]bool)
	byYear := make(map[int][]Point)
	var years []int
	for _, m := range months {
		present[m.Month] = true
		if _, ok := byYear[m.Year]; !ok {
			years = append(years, m.Year)
		}
		byYear[m.Year] = append(byYear[m.Year], Point{Category: MonthName(m.Month), Value: monthValue(m, metric)})
	}
	for m := 1; m <= 12; m++ {
		if present[m] {
			fig.Categories = append(fig.Categories, MonthName(m))
		}
	}
	sort.Ints(years)
	for i, y := range years {
		fig.Series = append(fig.Series, Series{
			Name:   strconv.Itoa(y),
			Color:  palette[i%len(palette)],
			Points: byYear[y],
		})
	}
	return fig
}

// ChannelBreakdown plots one series per year over channels.
func ChannelBreakdown(channels []domain.ChannelVolume, metric Metric) Figure {
	fig := Figure{
		Name:   chartName(ChartChannelVolume, ChartChannelClients, metric),
		Kind:   KindBar,
		Title:  fmt.Sprintf("Desglose de %s por Canal", metric),
		XTitle: "Canal",
		YTitle: string(metric),
	}
	if len(channels) == 0 {
		return fig
	}

	seen := make(map[string]bool)
	byYear := make(map[int][]Point)
	var years []int
	for _, c := range channels {
		if !seen[c.Channel] {
			seen[c.Channel] = true
			fig.Categories = append(fig.Categories, c.Channel)
		}
		if _, ok := byYear[c.Year]; !ok {
			years = append(years, c.Year)
		}
		byYear[c.Year] = append(byYear[c.Year], Point{Category: c.Channel, Value: channelValue(c, metric)})
	}
	sort.Ints(years)
	for i, y := range years {
		fig.Series = append(fig.Series, Series{
			Name:   strconv.Itoa(y),
			Color:  palette[i%len(palette)],
			Points: byYear[y],
		})
	}
	return fig
}

// VolumeMix shows the channel share of volume. With one year it is a single
// pie. With more it compares the two most recent years over the union of
// their channels and adds a GAP table.
func VolumeMix(channels []domain.ChannelVolume) Figure {
	fig := Figure{Name: ChartVolumeMix, Kind: KindPie, Title: "Mix de Volumen por Canal"}
	if len(channels) == 0 {
		return fig
	}

	byYear := make(map[int]map[string]float64)
	for _, c := range channels {
		if byYear[c.Year] == nil {
			byYear[c.Year] = make(map[string]float64)
		}
		byYear[c.Year][c.Channel] += c.Volume
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	current := years[0]
	if len(years) == 1 {
		fig.Kind = KindPie
		fig.Title = fmt.Sprintf("Mix de Volumen por Canal (%d)", current)
		fig.Width, fig.Height = 900, 500
		fig.Pies = []Pie{pieOf(strconv.Itoa(current), byYear[current], sortedKeys(byYear[current]))}
		return fig
	}

	previous := years[1]
	union := make(map[string]float64)
	for ch := range byYear[current] {
		union[ch] = 0
	}
	for ch := range byYear[previous] {
		union[ch] = 0
	}
	labels := sortedKeys(union)

	fig.Kind = KindMix
	fig.Title = fmt.Sprintf("Mix de Volumen por Canal - Comparativo %d vs %d", previous, current)
	fig.Width, fig.Height = 1200, 550
	fig.Pies = []Pie{
		pieOf(strconv.Itoa(previous), byYear[previous], labels),
		pieOf(strconv.Itoa(current), byYear[current], labels),
	}
	for _, ch := range labels {
		row := GapRow{Channel: ch, Current: byYear[current][ch], Previous: byYear[previous][ch]}
		if row.Previous > 0 {
			row.Gap = row.Current/row.Previous - 1
			row.HasGap = true
		}
		fig.Gap = append(fig.Gap, row)
	}
	return fig
}

// ReportFigures is the figure set exported with the summary workbook.
func ReportFigures(yoy domain.YearOverYear) []Figure {
	return []Figure{
		YearlyTotals(yoy.Channels, MetricVolume),
		YearlyTotals(yoy.Channels, MetricClients),
		MonthlyComparison(yoy.Months, MetricVolume),
		MonthlyComparison(yoy.Months, MetricClients),
		ChannelBreakdown(yoy.Channels, MetricVolume),
		ChannelBreakdown(yoy.Channels, MetricClients),
		VolumeMix(yoy.Channels),
	}
}

// Lookup returns the named figure of the report set.
func Lookup(yoy domain.YearOverYear, name string) (Figure, bool) {
	for _, f := range ReportFigures(yoy) {
		if f.Name == name {
			return f, true
		}
	}
	return Figure{}, false
}

func pieOf(title string, values map[string]float64, labels []string) Pie {
	p := Pie{Title: title}
	for _, l := range labels {
		p.Slices = append(p.Slices, Slice{Label: l, Value: values[l]})
	}
	return p
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func chartName(volume, clients string, metric Metric) string {
	if metric == MetricClients {
		return clients
	}
	return volume
}

// ResolveName maps a chart kind (yearly, monthly, channel or mix) and a
// metric to the name of the figure that plots it. The mix chart ignores metric.
func ResolveName(kind string, metric Metric) (string, bool) {
	switch kind {
	case "yearly":
		return chartName(ChartYearlyVolume, ChartYearlyClients, metric), true
	case "monthly":
		return chartName(ChartMonthlyVolume, ChartMonthlyClients, metric), true
	case "channel":
		return chartName(ChartChannelVolume, ChartChannelClients, metric), true
	case "mix":
		return ChartVolumeMix, true
	}
	return "", false
}
