// Package core provides the reconciling batch uploader for lead data.
//
// This package holds all domain logic independent of any transport. The
// REST, PostgreSQL and storage backends implement its interfaces; the CLI
// is a thin caller.
//
// # Pipeline
//
// Every command runs the same four steps:
//
//  1. [Normalize] maps raw CSV records onto a [Mapping]'s canonical schema,
//     coercing typed fields and excluding records without a key.
//  2. [Deduplicate] keeps the first record per normalized key.
//  3. [Reconcile] looks each key up through a [Finder] and plans an insert,
//     a gap-filling update, or a skip.
//  4. [Upload] submits inserts in batches and updates one at a time against
//     a [Table], recording an [Outcome] per record in a [Summary].
//
// [Uploader] wires the steps together with the run's batch size, timeouts
// and logger.
//
// # Mapping Profiles
//
// Profiles are registered at init time using [Register]:
//
//	core.Register(&core.Mapping{
//	    Name:  "priority_leads",
//	    Table: "priority_leads",
//	    Key:   "account_number",
//	    Fields: []core.FieldSpec{
//	        {Name: "account_number", Sources: []string{"Account Number"}},
//	        {Name: "beds", Type: core.FieldInteger},
//	    },
//	})
//
// # Error Handling
//
// Backends wrap [ErrConflict], [ErrNotFound] and [ErrRelationMissing]. Only a
// missing relation stops a run; it surfaces as a [*ConfigError]. Every other
// failure is recorded against its record and the run continues. Failure
// details are annotated for display with [MapError].
package core
