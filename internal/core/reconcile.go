package core

import (
	"context"
	"errors"
	"time"
)

// ReconcileOptions tune how entries are classified against the remote table.
type ReconcileOptions struct {
	// UpdateOnly reports absent records as skipped-unmatched instead of
	// planning an insert.
	UpdateOnly bool

	// CallTimeout bounds each lookup. Zero means no per-call deadline.
	CallTimeout time.Duration

	// DetailLength truncates failure details. Zero keeps them whole.
	DetailLength int
}

type appendOnly struct{}

func (appendOnly) Lookup(context.Context, string) (Record, error) { return nil, nil }

// AppendOnly is a Finder that reports every key as absent. It is used with the
// restricted credential, which cannot read rows owned by others.
var AppendOnly Finder = appendOnly{}

// Reconcile decides insert, update or skip for each unique entry.
//
// An absent key plans an insert of the full record with the mapping's insert
// defaults forced on top. A present key plans an update carrying only the
// fields that are empty remotely, non-empty locally and not protected; when
// none qualify the entry is skipped. A failed lookup marks that entry failed.
// A missing remote relation aborts with a *ConfigError.
func Reconcile(ctx context.Context, entries []Entry, finder Finder, m *Mapping, opts ReconcileOptions) (*Plan, error) {
	plan := &Plan{}

	for _, e := range entries {
		existing, err := lookup(ctx, finder, e.Key, opts.CallTimeout)
		if err != nil {
			if errors.Is(err, ErrRelationMissing) {
				return plan, relationMissingErr(err)
			}
			plan.Decided = append(plan.Decided, failedOutcome(e.Key, e.Row, err, opts.DetailLength))
			continue
		}

		if existing == nil {
			if opts.UpdateOnly {
				plan.Decided = append(plan.Decided, Outcome{
					Key:    e.Key,
					Row:    e.Row,
					Status: StatusSkippedUnmatched,
					Detail: "no remote record",
				})
				continue
			}
			plan.Inserts = append(plan.Inserts, Step{
				Action:  ActionInsert,
				Key:     e.Key,
				Row:     e.Row,
				Payload: insertPayload(e.Record, m),
			})
			continue
		}

		payload := GapFill(existing, e.Record, m)
		if len(payload) == 0 {
			plan.Skips = append(plan.Skips, Step{Action: ActionSkip, Key: e.Key, Row: e.Row})
			continue
		}
		plan.Updates = append(plan.Updates, Step{
			Action:  ActionUpdate,
			Key:     e.Key,
			Row:     e.Row,
			Payload: payload,
		})
	}

	return plan, nil
}

// GapFill returns the fields of local that may be written onto remote:
// canonical, not protected, not the key, empty on remote and non-empty locally.
func GapFill(remote, local Record, m *Mapping) Record {
	payload := Record{}
	for _, f := range m.Fields {
		if f.Name == m.Key || m.IsProtected(f.Name) {
			continue
		}
		if !IsEmpty(remote[f.Name]) {
			continue
		}
		v := local[f.Name]
		if IsEmpty(v) {
			continue
		}
		payload[f.Name] = v
	}
	return payload
}

func insertPayload(rec Record, m *Mapping) Record {
	payload := rec.Clone()
	for k, v := range m.InsertDefaults {
		payload[k] = v
	}
	return payload
}

func lookup(ctx context.Context, finder Finder, key string, timeout time.Duration) (Record, error) {
	callCtx, cancel := withCallTimeout(ctx, timeout)
	defer cancel()
	return finder.Lookup(callCtx, key)
}

func withCallTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func failedOutcome(key string, row int, err error, n int) Outcome {
	o := Outcome{
		Key:    key,
		Row:    row,
		Status: StatusFailed,
		Detail: Truncate(err.Error(), n),
	}
	var re *RemoteError
	if errors.As(err, &re) {
		o.Remote = re.Status
	}
	return o
}
