//go:build ignore

// generate_testdata.go writes sample content trees for local previews and
// benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/sites/small/   (50 pages)
//	testdata/sites/medium/  (1000 pages)
//	testdata/sites/large/   (10000 pages)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/conceptnav/pkg/conceptnav"
	"github.com/vanderheijden86/conceptnav/pkg/testutil"
)

type siteLayout struct {
	name  string
	pages int
}

var sites = []siteLayout{
	{"small", 50},
	{"medium", 1000},
	{"large", 10000},
}

func main() {
	outputDir := filepath.Join("testdata", "sites")

	for _, s := range sites {
		fmt.Printf("Generating %s site (%d pages)...\n", s.name, s.pages)

		cfg := testutil.DefaultGeneratorConfig()
		cfg.Seed = int64(s.pages) // Reproducible per-size
		cfg.Pages = s.pages
		pages := testutil.GeneratePages(cfg)

		dir := filepath.Join(outputDir, s.name)
		if err := os.RemoveAll(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to clear %s: %v\n", dir, err)
			os.Exit(1)
		}
		if err := testutil.WriteSite(dir, pages); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", dir, err)
			os.Exit(1)
		}

		items := conceptnav.New(nil).Items(pages)
		fmt.Printf("  Written %s, top concept %s (%d pages)\n", dir, items[0].Concept.Name, items[0].Count)
	}

	fmt.Println("\nDone! Sample sites created in", outputDir)
}
