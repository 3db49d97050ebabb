package http

import (
	"net/url"
	"strconv"
	"time"

	"salespulse/internal/middleware"
	"salespulse/internal/services"
	"salespulse/pkg/contracts/domain"
)

// RangeQuery holds the date range and plan shared by every report endpoint.
type RangeQuery struct {
	From string `query:"from" validate:"required,date"`
	To   string `query:"to" validate:"required,date"`
	Plan string `query:"plan" validate:"max=200"`
}

// SummaryQuery adds the manual KPI inputs and the chart switch.
type SummaryQuery struct {
	RangeQuery
	TargetShipments string `query:"salidas_mes" validate:"omitempty,numeric"`
	ActualShipments string `query:"salidas_actuales" validate:"omitempty,numeric"`
	Portfolio       string `query:"cartera" validate:"omitempty,numeric"`
	Charts          string `query:"charts" validate:"omitempty,boolean"`
}

// ChartQuery selects the plotted metric of a chart.
type ChartQuery struct {
	RangeQuery
	Metric string `query:"metric" validate:"omitempty,oneof=volumen ccc"`
}

func rangeQueryFrom(q url.Values) RangeQuery {
	return RangeQuery{
		From: q.Get("from"),
		To:   q.Get("to"),
		Plan: q.Get("plan"),
	}
}

func summaryQueryFrom(q url.Values) SummaryQuery {
	return SummaryQuery{
		RangeQuery:      rangeQueryFrom(q),
		TargetShipments: q.Get("salidas_mes"),
		ActualShipments: q.Get("salidas_actuales"),
		Portfolio:       q.Get("cartera"),
		Charts:          q.Get("charts"),
	}
}

func chartQueryFrom(q url.Values) ChartQuery {
	return ChartQuery{
		RangeQuery: rangeQueryFrom(q),
		Metric:     q.Get("metric"),
	}
}

// Range converts a validated query into a report range.
func (q RangeQuery) Range() services.Range {
	from, _ := time.Parse(middleware.DateLayout, q.From)
	to, _ := time.Parse(middleware.DateLayout, q.To)
	return services.Range{From: from, To: to, Plan: q.Plan}
}

// Params converts a validated query into report parameters. Missing
// numbers count as zero.
func (q SummaryQuery) Params() domain.ReportParams {
	r := q.Range()
	return domain.ReportParams{
		From:            r.From,
		To:              r.To,
		Plan:            r.Plan,
		TargetShipments: parseFloat(q.TargetShipments),
		ActualShipments: parseFloat(q.ActualShipments),
		Portfolio:       parseFloat(q.Portfolio),
	}
}

// WithCharts reports whether the chart sheet was requested.
func (q SummaryQuery) WithCharts() bool {
	b, _ := strconv.ParseBool(q.Charts)
	return b
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
