package core

import (
	"fmt"
	"strings"
)

// HeaderIndex maps lowercase column names to the original column name.
type HeaderIndex map[string]string

// MakeHeaderIndex builds a case-insensitive index over a record's columns.
func MakeHeaderIndex(r Record) HeaderIndex {
	idx := make(HeaderIndex, len(r))
	for col := range r {
		idx[strings.ToLower(strings.TrimSpace(col))] = col
	}
	return idx
}

// Normalize maps raw records onto the canonical schema of m.
//
// For each canonical field the first source column holding a non-empty value
// wins; the canonical name itself is always tried last, so already-canonical
// input passes through unchanged. Typed fields are coerced and become nil
// when unparsable. Records whose key is empty after normalization are
// excluded and reported as skipped-unmatched.
func Normalize(records []Record, m *Mapping) ([]Entry, []Outcome) {
	entries := make([]Entry, 0, len(records))
	var excluded []Outcome

	for i, raw := range records {
		row := i + 1
		rec := normalizeRecord(raw, m)

		key := ""
		if s, ok := ToText(rec[m.Key]).(string); ok {
			key = NormalizeKey(s)
		}
		if key == "" {
			excluded = append(excluded, Outcome{
				Row:    row,
				Status: StatusSkippedUnmatched,
				Detail: fmt.Sprintf("row %d: empty %s", row, m.Key),
			})
			continue
		}
		rec[m.Key] = key

		entries = append(entries, Entry{Row: row, Key: key, Record: rec})
	}

	return entries, excluded
}

func normalizeRecord(raw Record, m *Mapping) Record {
	idx := MakeHeaderIndex(raw)
	rec := make(Record, len(m.Fields))

	for _, f := range m.Fields {
		var v any
		for _, src := range sourcesOf(f) {
			col, ok := idx[strings.ToLower(src)]
			if !ok {
				continue
			}
			if cand := coerceField(raw[col], f); cand != nil {
				v = cand
				break
			}
		}
		if v == nil && f.Default != nil {
			v = Coerce(f.Default, f.Type)
		}
		rec[f.Name] = v
	}

	return rec
}

func sourcesOf(f FieldSpec) []string {
	if len(f.Sources) == 0 {
		return []string{f.Name}
	}
	for _, s := range f.Sources {
		if strings.EqualFold(s, f.Name) {
			return f.Sources
		}
	}
	return append(f.Sources[:len(f.Sources):len(f.Sources)], f.Name)
}

func coerceField(v any, f FieldSpec) any {
	if s, ok := v.(string); ok && f.Normalizer != nil {
		s = CleanCell(s)
		if s == "" {
			return nil
		}
		v = f.Normalizer(s)
	}
	return Coerce(v, f.Type)
}

// Deduplicate keeps the first entry for each key and drops later repeats.
// It returns the unique entries in input order and the number dropped.
func Deduplicate(entries []Entry) ([]Entry, int) {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]Entry, 0, len(entries))
	dropped := 0

	for _, e := range entries {
		if _, dup := seen[e.Key]; dup {
			dropped++
			continue
		}
		seen[e.Key] = struct{}{}
		unique = append(unique, e)
	}

	return unique, dropped
}
