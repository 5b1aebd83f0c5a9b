// Package main is the entry point for the MyDevJourney server and CLI.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package should be kept minimal — its job is to:
// 1. Read configuration (config file + env vars, see internal/config)
// 2. Create dependencies (logger, database connections, etc.)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/service, etc.).
//
// COMMANDS:
//
//	mydevjourney [serve]                  run the HTTP server (default)
//	mydevjourney stats                    print 30-day GitHub stats as JSON
//	mydevjourney recap --month 2026-10    print a monthly recap as JSON
//
// stats and recap read GITHUB_TOKEN and talk to GitHub directly; they need
// neither a database nor OAuth credentials.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
