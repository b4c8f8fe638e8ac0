package core

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// ============================================================================
// Conversion Benchmarks
// ============================================================================

// BenchmarkToDecimal benchmarks numeric cell conversion.
// Scores, values and amounts all pass through here.
func BenchmarkToDecimal(b *testing.B) {
	testCases := []string{
		"123",
		"-456.78",
		"$1,234.56",
		"1,234,567.89",
		"  999.99  ",
		"n/a",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ToDecimal(tc)
		}
	}
}

// BenchmarkToInteger benchmarks integer conversion, including the
// spreadsheet "3.0" form.
func BenchmarkToInteger(b *testing.B) {
	testCases := []string{"3", "3.0", "1,200", "abc"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ToInteger(tc)
		}
	}
}

func BenchmarkToBool(b *testing.B) {
	testCases := []string{"true", "Yes", "0", "N", "maybe"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ToBool(tc)
		}
	}
}

// ============================================================================
// Cell Cleaning Benchmarks
// ============================================================================

// BenchmarkCleanCell benchmarks CSV cell cleaning.
// Called for every cell during import.
func BenchmarkCleanCell(b *testing.B) {
	testCases := []string{
		"normal value",
		`="12345"`,
		"  whitespace  ",
		"\ufeffAccount Number",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			CleanCell(tc)
		}
	}
}

// BenchmarkCleanCell_Simple benchmarks the common case: no cleaning needed.
func BenchmarkCleanCell_Simple(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CleanCell("simple value")
	}
}

func BenchmarkNormalizeKey(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NormalizeKey(" 12-345-A ")
	}
}

// ============================================================================
// Pipeline Benchmarks
// ============================================================================

func benchCSV(rows int) []byte {
	var buf bytes.Buffer
	buf.WriteString("Account Number,Owner,Type,Beds,Baths,Estate\n")
	for i := 0; i < rows; i++ {
		// Every tenth row repeats an earlier key.
		key := i
		if i%10 == 9 {
			key = i - 1
		}
		fmt.Fprintf(&buf, "%d-%d,Owner %d,SFR,%d,%d.5,%t\n", key/100, key%100, i, i%5, i%3, i%2 == 0)
	}
	return buf.Bytes()
}

// BenchmarkReadCSV benchmarks parsing a 10k row export.
func BenchmarkReadCSV(b *testing.B) {
	data := benchCSV(10000)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadCSV(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkNormalize benchmarks mapping raw records onto the profile schema.
func BenchmarkNormalize(b *testing.B) {
	records, err := ReadCSV(bytes.NewReader(benchCSV(10000)))
	if err != nil {
		b.Fatal(err)
	}
	m := testMapping()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Normalize(records, m)
	}
}

func BenchmarkDeduplicate(b *testing.B) {
	records, err := ReadCSV(bytes.NewReader(benchCSV(10000)))
	if err != nil {
		b.Fatal(err)
	}
	entries, _ := Normalize(records, testMapping())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Deduplicate(entries)
	}
}

// BenchmarkGapFill benchmarks computing an update payload for one record.
func BenchmarkGapFill(b *testing.B) {
	m := testMapping()
	remote := Record{
		"account_number":  "12_345",
		"owner_name":      "Existing Owner",
		"property_type":   nil,
		"beds":            "",
		"approval_status": nil,
	}
	local := Record{
		"account_number":  "12_345",
		"owner_name":      "New Owner",
		"property_type":   "sfr",
		"beds":            int64(3),
		"baths":           2.5,
		"approval_status": "approved",
		"image_url":       strings.Repeat("x", 64),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GapFill(remote, local, m)
	}
}
