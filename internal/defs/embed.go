// Package defs locates and loads service definition files. Definitions for
// the bundled services are baked into the binary with go:embed; additional
// definition trees can be mounted through search paths, the RAL_DATA_PATH
// environment variable, or a registered source.
//
// A definition tree is laid out as:
//
//	<service>/<api-version>/api.json
//	<service>/<api-version>/resources.json
//	<service>/<api-version>/waiters.json
package defs

import (
	"embed"
	"io/fs"
)

// embeddedData holds the bundled service definitions.
//
//go:embed data
var embeddedData embed.FS

// EmbeddedFS returns the bundled definition tree rooted at the service
// directories.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedData, "data")
	if err != nil {
		// The data directory is compiled in; failing to root it means the
		// binary itself is broken.
		panic("defs: embedded data unavailable: " + err.Error())
	}
	return sub
}
