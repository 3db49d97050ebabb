// Package files finds the sales exports to load from a directory on disk.
//
// Discovery skips subdirectories, Office lock files (~$name.xlsx) and
// formats the workbook reader cannot open, then returns the rest in name
// order:
//
//	discovery := files.NewDiscovery(paths.BaseDir, logger)
//	found, err := discovery.FindWorkbooks("data")
//	uploads, err := discovery.ReadUploads(found)
package files
