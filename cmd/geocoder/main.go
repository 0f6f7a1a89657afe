// Command geocoder looks up addresses, coordinates and IP addresses through
// pluggable geocoding providers, from the command line or as an HTTP service.
package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
