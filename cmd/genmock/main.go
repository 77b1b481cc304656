// Command genmock writes the synthetic MSF HAPPY trajectory as a CSV fixture.
// The -at flag pins the generation time so fixtures are reproducible.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/msf_happy_trajectory.csv \
//	  -at 2025-07-20T15:00:00Z
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/vessel-tracking-service/internal/simulator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the CSV fixture")
	at := flag.String("at", "", "generation time in RFC 3339; defaults to now")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	now := time.Now().UTC()
	if *at != "" {
		parsed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parse -at: %w", err)
		}
		now = parsed
	}

	csv := simulator.GenerateCSV(now)

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(*out, []byte(csv), 0o600); err != nil {
		return err
	}

	log.Printf("wrote %s (%d bytes, generated at %s)", *out, len(csv), now.Format(time.RFC3339))
	return nil
}
