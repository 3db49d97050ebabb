// Package services holds the application logic between the transports
// (HTTP handlers and the report CLI) and the processing packages.
//
// ReportService loads uploads through the dataset memo, cleans and
// aggregates them and produces the exported workbooks. LicenseService wraps
// the license gate and records license checks. HealthService reports
// process health.
package services
