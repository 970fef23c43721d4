// cmd/portal/main.go
//
// Nasabah portal entry point.
//
// Commands
// --------
//
//	portal serve   start the web portal (default)
//	portal forms   load and check every form definition, then print them
//
// Components register themselves from init(); the blank imports below are
// the whole list of pages the binary serves.
package main

import (
	"os"

	_ "github.com/yanizio/nasabah/components/auth"
	_ "github.com/yanizio/nasabah/components/dashboard"
	_ "github.com/yanizio/nasabah/components/matkul"
	_ "github.com/yanizio/nasabah/components/profile"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
