// Package middleware contains the HTTP middleware of the API: request IDs,
// structured request logging, rate limiting, CORS and security headers,
// OpenTelemetry spans and metrics, the license gate and request validation.
package middleware
