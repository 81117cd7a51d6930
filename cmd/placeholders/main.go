// Command placeholders writes small JPEG stand-ins for every local image the
// gardening catalog references, so the pages render before real photos exist.
package main

import (
	"flag"
	"log"

	"cookfeed/internal/garden"
)

func main() {
	staticDir := flag.String("static", "static", "Static assets directory")
	overwrite := flag.Bool("overwrite", false, "Replace images that already exist")
	flag.Parse()

	// Validation of the catalog itself still applies; missing files are expected here.
	catalog, _, err := garden.Load("")
	if err != nil {
		log.Fatalf("Invalid gardening catalog: %v", err)
	}

	written, err := garden.WritePlaceholders(catalog, *staticDir, *overwrite)
	if err != nil {
		log.Fatalf("Failed to write placeholders: %v", err)
	}
	for _, path := range written {
		log.Printf("Created %s", path)
	}
	log.Printf("%d placeholder(s) written", len(written))
}
