// Command import_legacy loads a legacy collection export (users, portfolios,
// companies, jobposts, applications) into the candidates, jobs and applications
// tables so that `match_agent train --from-db` can learn from it.
//
// Usage:
//
//	go run cmd/tools/import_legacy/main.go export.json
//
// Requires DATABASE_URL environment variable to be set.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/candidate-matcher/internal/db"
	"github.com/jonathan/candidate-matcher/internal/legacy"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: import_legacy <export.json>")
		os.Exit(2)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "ERROR: DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to open export: %v\n", err)
		os.Exit(1)
	}
	export, err := legacy.ReadExport(f)
	_ = f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	if err := database.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to migrate schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Legacy Import ===")
	fmt.Println()

	ds := export.Decode()
	for _, msg := range ds.Skipped {
		fmt.Printf("  • Skipped: %s\n", msg)
	}

	failed := 0
	candidates := 0
	for id, p := range ds.Profiles {
		if err := database.SaveCandidate(ctx, p); err != nil {
			fmt.Printf("  ✗ candidate %s: %v\n", id, err)
			failed++
			continue
		}
		candidates++
	}

	jobs := 0
	for _, j := range ds.JobList() {
		if err := database.SaveJob(ctx, j); err != nil {
			fmt.Printf("  ✗ job %s: %v\n", j.ID, err)
			failed++
			continue
		}
		jobs++
	}

	applications := 0
	for _, app := range ds.Applications {
		if _, err := database.SaveApplication(ctx, app); err != nil {
			fmt.Printf("  ✗ application %s/%s: %v\n", app.CandidateID, app.JobID, err)
			failed++
			continue
		}
		applications++
	}

	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("  Candidates: %d\n", candidates)
	fmt.Printf("  Jobs: %d\n", jobs)
	fmt.Printf("  Applications: %d\n", applications)
	fmt.Printf("  Skipped documents: %d\n", len(ds.Skipped))
	fmt.Printf("  Failed: %d\n", failed)

	if failed > 0 {
		os.Exit(1)
	}
}
