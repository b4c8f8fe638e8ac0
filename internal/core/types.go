// Package core provides the reconciliation and batch upload logic for lead data.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"context"
	"strings"
)

// Record maps a field name to a scalar value.
// Values are one of: nil, string, int64, float64, bool.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Entry is a canonical record together with its normalized key and input position.
type Entry struct {
	Row    int // 1-based position in the input collection
	Key    string
	Record Record
}

// FieldType represents the declared type of a canonical field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldDecimal
	FieldBool
)

func (t FieldType) String() string {
	switch t {
	case FieldInteger:
		return "integer"
	case FieldDecimal:
		return "decimal"
	case FieldBool:
		return "bool"
	default:
		return "text"
	}
}

// FieldSpec declares one canonical field and the source columns that feed it.
type FieldSpec struct {
	Name       string              // Canonical (destination) field name
	Sources    []string            // Source column names, first non-empty wins
	Type       FieldType           // Target type for coercion
	Default    any                 // Value used when no source provides one
	Normalizer func(string) string // Optional text transformation, must be idempotent
}

// Mapping translates heterogeneous input schemas into one canonical schema.
type Mapping struct {
	Name      string      // Profile name: "priority_leads"
	Table     string      // Default remote table
	Key       string      // Canonical key field, also the remote lookup column
	Fields    []FieldSpec // Canonical schema, in output order
	Protected []string    // Fields never overwritten on an existing remote record

	// InsertDefaults are forced onto new records (workflow status and the like).
	// Keys must be canonical fields.
	InsertDefaults Record

	// ImageField, if set, receives the public URL of the record's image.
	ImageField string
}

// Columns returns the canonical field names in schema order.
func (m *Mapping) Columns() []string {
	cols := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		cols[i] = f.Name
	}
	return cols
}

// IsProtected reports whether a field must never appear in an update payload.
func (m *Mapping) IsProtected(field string) bool {
	for _, p := range m.Protected {
		if strings.EqualFold(p, field) {
			return true
		}
	}
	return false
}

// Field returns the spec for a canonical field.
func (m *Mapping) Field(name string) (FieldSpec, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Finder looks up the existing remote record for a normalized key.
// It returns (nil, nil) when no record exists.
type Finder interface {
	Lookup(ctx context.Context, key string) (Record, error)
}

// Table is the remote table collaborator.
// Implementations return errors that wrap ErrConflict, ErrNotFound or
// ErrRelationMissing when the remote signals those conditions.
type Table interface {
	Finder
	BulkInsert(ctx context.Context, records []Record) error
	Update(ctx context.Context, key string, partial Record) error
}

// Status is the terminal outcome of one record.
type Status string

const (
	StatusCreated          Status = "created"
	StatusUpdated          Status = "updated"
	StatusSkippedDuplicate Status = "skipped-duplicate"
	StatusSkippedUnmatched Status = "skipped-unmatched"
	StatusFailed           Status = "failed"
)

// Outcome is the result for a single record or object.
type Outcome struct {
	Key    string // Normalized key, empty when the record had none
	Row    int    // 1-based position in the input collection
	Status Status
	Remote int    // Remote status indicator (HTTP status), 0 if none
	Detail string // Error detail on failure, truncated
}

// Action is the planned operation for one record.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// Step is one planned action.
// For inserts Payload is the full canonical record, for updates only the gap fields.
type Step struct {
	Action  Action
	Key     string
	Row     int
	Payload Record
}

// Plan is the per-record decision computed before any write is made.
type Plan struct {
	Inserts []Step
	Updates []Step
	Skips   []Step

	// Outcomes already decided during planning: excluded rows and failed lookups.
	Decided []Outcome

	// Deduplicated counts in-file repeats dropped by first-seen-wins.
	Deduplicated int
}

// Len returns the number of records represented by the plan.
func (p *Plan) Len() int {
	return len(p.Inserts) + len(p.Updates) + len(p.Skips) + len(p.Decided)
}
