// Package config provides centralized configuration management for SalesPulse.
//
// # Configuration Sources
//
// Configuration is assembled from three sources, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. An optional YAML file (config.yaml, configs/config.yaml, or SALESPULSE_CONFIG_FILE)
//  3. Environment variables with the SALESPULSE_ prefix
//
// Environment variables follow the section layout of Config:
//
//	SALESPULSE_SERVER_PORT=8080
//	SALESPULSE_LICENSE_REGISTRY_URL=https://example.com/Licencias.txt
//	SALESPULSE_LICENSE_TIMEOUT=10s
//	SALESPULSE_LOGGING_LEVEL=debug
//	SALESPULSE_CACHE_MAX_ENTRIES=16
//
// # Business Rules
//
// The report rules (subdistributor names, product patterns, the multi-brand
// and flavor definitions) are a versioned YAML document embedded in the
// binary. SALESPULSE_RULES_FILE points at a replacement document; LoadRules
// rejects documents with an unknown version or patterns that do not compile.
package config
