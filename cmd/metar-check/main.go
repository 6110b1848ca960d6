// Command metar-check decodes a file of METAR reports, one per line, and
// prints the flight condition and ceiling of each. It exits non-zero when
// any line fails to decode, which makes it usable as a regression check for
// the decoder against archived reports.
//
// Usage:
//
//	go run ./cmd/metar-check -in reports.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/metar-signage/internal/adapter/metar"
	"github.com/couchcryptid/metar-signage/internal/domain"
)

func main() {
	in := flag.String("in", "", "file with one METAR per line (default: stdin)")
	ref := flag.String("ref", "", "reference date for day-of-month groups, RFC 3339 (default: now)")
	flag.Parse()

	refTime := time.Now().UTC()
	if *ref != "" {
		t, err := time.Parse(time.RFC3339, *ref)
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse -ref: %v\n", err)
			os.Exit(2)
		}
		refTime = t
	}

	src := os.Stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open input: %v\n", err)
			os.Exit(2)
		}
		defer f.Close()
		src = f
	}

	total, failed := 0, 0
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		total++

		r, err := metar.Parse(line, refTime)
		if err != nil {
			failed++
			fmt.Printf("FAIL  %s\n      %v\n", line, err)
			continue
		}
		fmt.Printf("%-5s %-4s ceiling=%s wind=%q\n",
			domain.ClassifyFlightCondition(r), r.Station, ceiling(r), domain.DescribeWind(r))
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("\n%d reports, %d failed\n", total, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func ceiling(r domain.Report) string {
	c := domain.Ceiling(r)
	if math.IsInf(c, 1) {
		return "none"
	}
	return fmt.Sprintf("%.0fft", c)
}
