// Package app wires the SalesPulse web service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, the YAML file and the environment
//  2. Initialize logging and OpenTelemetry
//  3. Build the license gate, the dataset cache and the report pipeline
//  4. Set up handlers and middleware on a chi router
//  5. Start the HTTP server and wait for SIGINT or SIGTERM
//
// # Routes
//
//	GET    /healthz
//	GET    /metrics
//	GET    /api/version
//	GET    /api/license/status
//	POST   /api/license/activate
//	DELETE /api/license
//	POST   /api/datasets                      (license required)
//	GET    /api/datasets/{key}/...            (license required)
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
