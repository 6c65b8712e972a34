package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	flag.Parse()

	if err := run(flag.Arg(0)); err != nil {
		log.Fatalf("error: %s", err)
	}
}

func run(command string) error {
	switch command {
	case "version":
		fmt.Fprintf(os.Stdout, "varchess %s\n", Version)
		return nil
	case "migrate":
		return migrateDatabase()
	case "serve":
		return serve()
	case "dev:fixtures":
		return loadFixtures()
	case "help":
		fmt.Fprint(os.Stdout, help())
		return nil
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
		return nil
	}
}

func help() string {
	return fmt.Sprintf(`
varchess is the backend of the chess-variant web application, it owns the
skill ratings of every player across every game variant.

Usage: %[1]s COMMAND [ARGS…]

COMMANDS
    dev:fixtures create default data for quick testing during development
    help         display this help
    migrate      apply all pending database migrations
    serve        run the rating engine and its HTTP API
    version      display the current version
`,
		os.Args[0],
	)
}
