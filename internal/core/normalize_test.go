package core

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ============================================================================
// Normalize Tests
// ============================================================================

func TestNormalize_CanonicalFieldSet(t *testing.T) {
	m := testMapping()
	want := m.Columns()
	sort.Strings(want)

	inputs := []Record{
		{"Account Number": "101"},
		{"Account Number": "102", "Owner": "Smith", "Beds": "3", "Unrelated": "x", "Another": "y"},
		{"parcel_id": "103", "beds": "2", "lead_status": "contacted"},
		{"account_number": "104", "image_url": "https://cdn/x.jpg", "approval_status": "approved"},
	}

	entries, excluded := Normalize(inputs, m)
	if len(excluded) != 0 {
		t.Fatalf("excluded = %v, want none", excluded)
	}

	for _, e := range entries {
		got := make([]string, 0, len(e.Record))
		for k := range e.Record {
			got = append(got, k)
		}
		sort.Strings(got)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("row %d fields mismatch (-want +got):\n%s", e.Row, diff)
		}
	}
}

func TestNormalize_Fields(t *testing.T) {
	m := testMapping()

	tests := []struct {
		name string
		raw  Record
		want Record
	}{
		{
			name: "mapped and coerced",
			raw: Record{
				"Account Number": "29-22-28-0000",
				"Owner":          " Smith ",
				"Type":           "Single Family",
				"Beds":           "3.0",
				"Baths":          "2.5",
				"Estate":         "Yes",
			},
			want: Record{
				"account_number":  "29_22_28_0000",
				"owner_name":      "Smith",
				"property_type":   "single family",
				"beds":            int64(3),
				"baths":           2.5,
				"is_estate":       true,
				"lead_status":     "new",
				"approval_status": nil,
				"image_url":       nil,
			},
		},
		{
			name: "unparsable typed fields become null",
			raw: Record{
				"Account Number": "101",
				"Beds":           "three",
				"Baths":          "n/a",
				"Estate":         "maybe",
			},
			want: Record{
				"account_number":  "101",
				"owner_name":      nil,
				"property_type":   nil,
				"beds":            nil,
				"baths":           nil,
				"is_estate":       nil,
				"lead_status":     "new",
				"approval_status": nil,
				"image_url":       nil,
			},
		},
		{
			name: "first non-empty source wins",
			raw:  Record{"Account Number": "  ", "parcel_id": "55", "account_number": "99"},
			want: Record{
				"account_number":  "55",
				"owner_name":      nil,
				"property_type":   nil,
				"beds":            nil,
				"baths":           nil,
				"is_estate":       nil,
				"lead_status":     "new",
				"approval_status": nil,
				"image_url":       nil,
			},
		},
		{
			name: "source lookup is case-insensitive",
			raw:  Record{"ACCOUNT NUMBER": "7", "owner": "Lee", "lead_status": "contacted"},
			want: Record{
				"account_number":  "7",
				"owner_name":      "Lee",
				"property_type":   nil,
				"beds":            nil,
				"baths":           nil,
				"is_estate":       nil,
				"lead_status":     "contacted",
				"approval_status": nil,
				"image_url":       nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, excluded := Normalize([]Record{tt.raw}, m)
			if len(excluded) != 0 || len(entries) != 1 {
				t.Fatalf("entries = %d, excluded = %d, want 1 and 0", len(entries), len(excluded))
			}
			if diff := cmp.Diff(tt.want, entries[0].Record); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
			if entries[0].Key != tt.want["account_number"] {
				t.Errorf("Key = %q, want %v", entries[0].Key, tt.want["account_number"])
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	m := testMapping()
	raw := []Record{
		{"Account Number": "29-22-28", "Owner": "'Smith'", "Type": "CONDO", "Beds": "$3", "Baths": "1.0", "Estate": "0"},
		{"Account Number": "30", "Beds": "", "Baths": "(2)"},
		{"parcel_id": "31", "image_url": "https://cdn/31.jpg"},
	}

	once, _ := Normalize(raw, m)

	canonical := make([]Record, len(once))
	for i, e := range once {
		canonical[i] = e.Record
	}
	twice, excluded := Normalize(canonical, m)

	if len(excluded) != 0 {
		t.Fatalf("second pass excluded %d records", len(excluded))
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Normalize not idempotent (-once +twice):\n%s", diff)
	}
}

func TestNormalize_ExcludesEmptyKey(t *testing.T) {
	m := testMapping()
	raw := []Record{
		{"Account Number": "101"},
		{"Account Number": ""},
		{"Account Number": "  ", "Owner": "No Key"},
		{"Owner": "Missing column"},
		{"Account Number": "102"},
	}

	entries, excluded := Normalize(raw, m)

	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Row != 1 || entries[1].Row != 5 {
		t.Errorf("rows = %d, %d, want 1, 5", entries[0].Row, entries[1].Row)
	}

	if len(excluded) != 3 {
		t.Fatalf("excluded = %d, want 3", len(excluded))
	}
	for i, o := range excluded {
		if o.Status != StatusSkippedUnmatched {
			t.Errorf("excluded[%d].Status = %s, want %s", i, o.Status, StatusSkippedUnmatched)
		}
		if want := i + 2; o.Row != want {
			t.Errorf("excluded[%d].Row = %d, want %d", i, o.Row, want)
		}
	}
}

// ============================================================================
// Deduplicate Tests
// ============================================================================

func TestDeduplicate_FirstSeenWins(t *testing.T) {
	m := testMapping()
	raw := []Record{
		{"Account Number": "29-22", "Owner": "first A"},
		{"Account Number": "40", "Owner": "B"},
		{"Account Number": "29_22", "Owner": "second A"},
	}

	entries, _ := Normalize(raw, m)
	unique, dropped := Deduplicate(entries)

	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(unique) != 2 {
		t.Fatalf("unique = %d, want 2", len(unique))
	}
	if unique[0].Row != 1 || unique[0].Record["owner_name"] != "first A" {
		t.Errorf("unique[0] = row %d owner %v, want row 1 owner first A", unique[0].Row, unique[0].Record["owner_name"])
	}
	if unique[1].Key != "40" {
		t.Errorf("unique[1].Key = %q, want 40", unique[1].Key)
	}
}

func TestDeduplicate_NoDuplicates(t *testing.T) {
	entries := []Entry{{Row: 1, Key: "a"}, {Row: 2, Key: "b"}}
	unique, dropped := Deduplicate(entries)
	if dropped != 0 || len(unique) != 2 {
		t.Errorf("Deduplicate() = %d entries, %d dropped, want 2 and 0", len(unique), dropped)
	}
}

func TestMakeHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex(Record{"Account Number": "1", " Owner ": "x"})

	if idx["account number"] != "Account Number" {
		t.Errorf(`idx["account number"] = %q`, idx["account number"])
	}
	if idx["owner"] != " Owner " {
		t.Errorf(`idx["owner"] = %q`, idx["owner"])
	}
}
