// Package exporter writes report downloads.
//
// SummaryExporter builds the KPI workbook with an optional chart sheet,
// SegmentWorkbook builds the client detail of the multi-brand and flavor
// segments, and FileWriter saves workbooks and year-over-year CSV files to
// the output directory for the command line tools.
package exporter
