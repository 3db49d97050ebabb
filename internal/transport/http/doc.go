// Package http implements the HTTP handlers of the SalesPulse web service.
// Handlers are a thin layer over internal/services: they parse and validate
// the request, call one service method and render the result.
//
// # Handlers
//
//   - HealthHandler serves GET /healthz and the version endpoint.
//   - LicenseHandler serves the license status, activation and removal.
//   - DatasetHandler serves uploads and every report of a loaded dataset.
//
// # Errors
//
// Every failure goes through errors.ErrorHandler, which renders RFC 7807
// problem details carrying the request ID as trace_id.
//
// # Query parameters
//
// Report endpoints share the from, to and plan parameters. Dates use the
// YYYY-MM-DD layout and both ends are inclusive:
//
//	GET /api/datasets/{key}/summary?from=2025-02-01&to=2025-02-28&salidas_mes=20
//	GET /api/datasets/{key}/charts/monthly.svg?from=2024-01-01&to=2025-02-28&metric=ccc
package http
