package core

import (
	"context"
	"strings"
)

// testMapping is a small lead profile exercising every field type.
func testMapping() *Mapping {
	return &Mapping{
		Name:  "leads",
		Table: "leads",
		Key:   "account_number",
		Fields: []FieldSpec{
			{Name: "account_number", Sources: []string{"Account Number", "parcel_id"}},
			{Name: "owner_name", Sources: []string{"Owner"}},
			{Name: "property_type", Sources: []string{"Type"}, Normalizer: strings.ToLower},
			{Name: "beds", Sources: []string{"Beds"}, Type: FieldInteger},
			{Name: "baths", Sources: []string{"Baths"}, Type: FieldDecimal},
			{Name: "is_estate", Sources: []string{"Estate"}, Type: FieldBool},
			{Name: "lead_status", Default: "new"},
			{Name: "approval_status"},
			{Name: "image_url"},
		},
		Protected:      []string{"approval_status"},
		InsertDefaults: Record{"approval_status": "pending"},
		ImageField:     "image_url",
	}
}

type fakeUpdate struct {
	key     string
	payload Record
}

// fakeTable is an in-memory Table. Hooks inject failures by call number or key.
type fakeTable struct {
	key       string
	remote    map[string]Record
	inserts   [][]Record
	updates   []fakeUpdate
	lookups   int
	lookupErr map[string]error
	updateErr map[string]error

	// insertErr runs before each BulkInsert with the 1-based call number.
	insertErr func(call int, batch []Record) error
}

func newFakeTable(remote ...Record) *fakeTable {
	ft := &fakeTable{key: "account_number", remote: make(map[string]Record)}
	for _, r := range remote {
		ft.remote[r["account_number"].(string)] = r.Clone()
	}
	return ft
}

func (f *fakeTable) Lookup(_ context.Context, key string) (Record, error) {
	f.lookups++
	if err := f.lookupErr[key]; err != nil {
		return nil, err
	}
	rec, ok := f.remote[key]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (f *fakeTable) BulkInsert(_ context.Context, records []Record) error {
	batch := make([]Record, len(records))
	for i, r := range records {
		batch[i] = r.Clone()
	}
	f.inserts = append(f.inserts, batch)

	if f.insertErr != nil {
		if err := f.insertErr(len(f.inserts), batch); err != nil {
			return err
		}
	}

	for _, r := range batch {
		if _, exists := f.remote[r[f.key].(string)]; exists {
			return &RemoteError{Status: 409, Body: "duplicate key value violates unique constraint", Kind: ErrConflict}
		}
	}
	for _, r := range batch {
		f.remote[r[f.key].(string)] = r
	}
	return nil
}

func (f *fakeTable) Update(_ context.Context, key string, partial Record) error {
	f.updates = append(f.updates, fakeUpdate{key: key, payload: partial.Clone()})
	if err := f.updateErr[key]; err != nil {
		return err
	}
	rec, ok := f.remote[key]
	if !ok {
		return ErrNotFound
	}
	for k, v := range partial {
		rec[k] = v
	}
	return nil
}

func (f *fakeTable) insertedCount() int {
	n := 0
	for _, b := range f.inserts {
		n += len(b)
	}
	return n
}
