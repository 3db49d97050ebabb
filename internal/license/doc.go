// Package license implements the license gate.
//
// The gate has two states, UNLICENSED and LICENSED. A code moves the gate to
// LICENSED only when the remote registry lists it with its active flag set.
// The registry is fetched on every check and a failed fetch counts as not
// valid. Only the code is stored locally, never its validity, so revoking a
// code in the registry takes effect on the next check.
//
// # Components
//
//   - Registry: fetches the remote registry document over HTTP
//   - StateStore: reads and writes license_config.json
//   - Manager: Verify, Status, Activate and Deactivate
//   - RegistryFile: admin operations on a local copy of the registry
//
// # Usage
//
//	registry := license.NewRegistry(cfg.License.RegistryURL, cfg.License.Timeout, logger)
//	manager := license.NewManager(registry, license.NewStateStore(paths.LicenseFile, logger), logger)
//	status := manager.Status(ctx)
//	if !status.Valid {
//		// show status.Message
//	}
package license
