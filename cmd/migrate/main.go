// migrate applies the embedded SQL migrations to the configured database.
// Run with -direction=down to roll everything back (local resets only).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/crowdspire/orgcore/internal/orgcore/app"
	"github.com/crowdspire/orgcore/internal/orgcore/store/drivers/sqlite"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	db, err := sqlite.NewStore(cfg.DatabaseFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	defer db.Close()

	switch *direction {
	case "up":
		err = db.ApplyMigrations()
	case "down":
		err = db.MigrateDown()
	default:
		fmt.Fprintf(os.Stderr, "unknown direction %q\n", *direction)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
