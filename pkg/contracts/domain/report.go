package domain

import (
	"fmt"
	"math"
	"time"
)

// KPI indicator names, in report order.
const (
	KPIHectoliters          = "HL (Litros Vendidos)"
	KPIProjectedHectoliters = "HL Proyectado"
	KPICumulativeHL         = "HectoLitro Real (Acumulado)"
	KPIDiscountRate         = "% Bonificación"
	KPIActiveClients        = "CCE (Clientes con compra)"
	KPIActivePureWater      = "CCE Agua Pura"
	KPIActiveFlavoredWater  = "CCE Agua Saborizada"
	KPIPortfolio            = "Cartera"
	KPICoverage             = "Cobertura"
	KPIDrop                 = "Drop (Bultos/Clientes)"
	KPIFlavorsPerOutlet     = "Sabores por PV (Levite)"
	KPIMultiBrandClients    = "CCC Ñandú (Multi-marca)"
	KPIGross                = "$ Bruto"
	KPINet                  = "$ Neto"
	KPIGrossNetDifference   = "Diferencia Bruto - Neto"
	KPIGrossFunction        = "Función del Bruto"
)

// ReportParams are the user inputs of a KPI report.
type ReportParams struct {
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	TargetShipments float64   `json:"salidas_mes"`
	ActualShipments float64   `json:"salidas_actuales"`
	Portfolio       float64   `json:"cartera"`
	Plan            string    `json:"plan,omitempty"`
}

// Summary is the KPI record for one date range.
type Summary struct {
	Empty                bool    `json:"empty"`
	Hectoliters          float64 `json:"hl"`
	ProjectedHectoliters float64 `json:"hl_proyectado"`
	CumulativeHL         float64 `json:"hl_acumulado"`
	DiscountRate         float64 `json:"porc_bonificacion"`
	ActiveClients        int     `json:"cce"`
	ActivePureWater      int     `json:"cce_agua_pura"`
	ActiveFlavoredWater  int     `json:"cce_agua_saborizada"`
	Portfolio            float64 `json:"cartera"`
	Coverage             float64 `json:"cobertura"`
	Drop                 float64 `json:"drop"`
	FlavorsPerOutlet     float64 `json:"sabores_por_pv"`
	MultiBrandClients    int     `json:"ccc"`
	Gross                float64 `json:"bruto"`
	Net                  float64 `json:"neto"`
}

// KPIEntry is one indicator of the summary table.
// Text is set for percent-formatted indicators.
type KPIEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Text  string  `json:"text,omitempty"`
}

// Display returns the value as it appears in the exported sheet.
func (e KPIEntry) Display() interface{} {
	if e.Text != "" {
		return e.Text
	}
	return e.Value
}

// Entries returns the indicators in report order. An empty summary has none.
func (s Summary) Entries() []KPIEntry {
	if s.Empty {
		return nil
	}
	return []KPIEntry{
		{Name: KPIHectoliters, Value: Round1(s.Hectoliters)},
		{Name: KPIProjectedHectoliters, Value: Round1(s.ProjectedHectoliters)},
		{Name: KPICumulativeHL, Value: Round1(s.CumulativeHL)},
		{Name: KPIDiscountRate, Value: s.DiscountRate, Text: fmt.Sprintf("%.1f%%", s.DiscountRate)},
		{Name: KPIActiveClients, Value: float64(s.ActiveClients)},
		{Name: KPIActivePureWater, Value: float64(s.ActivePureWater)},
		{Name: KPIActiveFlavoredWater, Value: float64(s.ActiveFlavoredWater)},
		{Name: KPIPortfolio, Value: Round1(s.Portfolio)},
		{Name: KPICoverage, Value: s.Coverage, Text: fmt.Sprintf("%.1f%%", s.Coverage*100)},
		{Name: KPIDrop, Value: Round1(s.Drop)},
		{Name: KPIFlavorsPerOutlet, Value: s.FlavorsPerOutlet},
		{Name: KPIMultiBrandClients, Value: float64(s.MultiBrandClients)},
		{Name: KPIGross, Value: Round1(s.Gross)},
		{Name: KPINet, Value: Round1(s.Net)},
		{Name: KPIGrossNetDifference, Value: Round1(s.Gross - s.Net)},
		{Name: KPIGrossFunction, Value: Round1(s.Gross)},
	}
}

// Round1 rounds to one decimal, ties to even.
func Round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}

// MonthlyVolume is one year/month aggregate of the year-over-year dataset.
type MonthlyVolume struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Volume  float64 `json:"volumen"`
	Clients int     `json:"ccc"`
}

// ChannelVolume is one year/channel aggregate of the year-over-year dataset.
type ChannelVolume struct {
	Year    int     `json:"year"`
	Channel string  `json:"canal"`
	Volume  float64 `json:"volumen"`
	Clients int     `json:"ccc"`
}

// YearOverYear bundles both year-to-date aggregates.
type YearOverYear struct {
	Months   []MonthlyVolume `json:"months"`
	Channels []ChannelVolume `json:"channels"`
}

// MultiBrandClient is a client that bought two or more target brands.
type MultiBrandClient struct {
	Code   string   `json:"codigo_cliente"`
	Name   string   `json:"razon_social"`
	Brands []string `json:"marcas"`
	Volume float64  `json:"total_kg_lt"`
}

// FlavorClient is a client that bought at least one qualifying flavor.
type FlavorClient struct {
	Code    string   `json:"codigo_cliente"`
	Name    string   `json:"razon_social"`
	Flavors []string `json:"sabores"`
	Volume  float64  `json:"total_kg_lt"`
}
