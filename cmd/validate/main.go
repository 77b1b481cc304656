// Command validate runs a position CSV file through the normalizer and
// reports what the ingest pipeline would keep and drop. Useful for vetting a
// new feed before pointing the service at it.
//
// Usage:
//
//	go run ./cmd/validate -csv data/mock/msf_happy_trajectory.csv \
//	  -at 2025-07-20T15:00:00Z
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/vessel-tracking-service/internal/domain"
)

func main() {
	path := flag.String("csv", "", "path to the position CSV file")
	at := flag.String("at", "", "reference time in RFC 3339 for timestamp plausibility; defaults to now")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	if *at != "" {
		parsed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: parse -at: %v\n", err)
			os.Exit(1)
		}
		domain.SetClock(clockwork.NewFakeClockAt(parsed))
		defer domain.SetClock(nil)
	}

	if code := run(*path); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read header: %v\n", err)
		return 1
	}
	for i, h := range header {
		header[i] = strings.Join(strings.Fields(h), " ")
	}

	var kept, indexIDs int
	drops := map[string]int{}
	categories := map[string]int{}
	routes := map[string]int{}

	index := 0
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			drops["parse_error"]++
			continue
		}

		raw := make(domain.RawRow, len(header))
		for i, h := range header {
			if i < len(row) {
				raw[h] = strings.TrimSpace(row[i])
			}
		}

		p := domain.Normalize(raw, index)
		index++

		switch {
		case p.VesselID == "":
			drops["missing_id"]++
		case !p.HasValidCoordinates():
			drops["invalid_coordinates"]++
		default:
			kept++
			categories[p.VesselCategory]++
			if p.Route != "" {
				routes[p.Route]++
			}
			if strings.HasPrefix(p.VesselID, "VESSEL-") {
				indexIDs++
			}
		}
	}

	fmt.Printf("=== %s ===\n", path)
	fmt.Printf("Kept: %d\n", kept)
	fmt.Printf("Dropped: %d\n", total(drops))
	printCounts("  ", drops)
	fmt.Printf("Synthetic index IDs: %d\n", indexIDs)
	fmt.Println("By category:")
	printCounts("  ", categories)
	fmt.Println("By route:")
	printCounts("  ", routes)

	if kept == 0 {
		fmt.Println("\nNo usable rows. Check the header names against the normalizer aliases.")
		return 1
	}
	return 0
}

func total(m map[string]int) int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}

func printCounts(indent string, m map[string]int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s%s=%d\n", indent, k, m[k])
	}
}
