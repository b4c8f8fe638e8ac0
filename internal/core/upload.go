package core

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultBatchSize is the number of records per bulk insert call.
const DefaultBatchSize = 50

// ProgressInterval is how often (in records) upload progress is logged.
var ProgressInterval = 20

// UploadOptions configure one Upload call.
type UploadOptions struct {
	BatchSize         int
	MaxFailureDetails int
	DetailLength      int
	CallTimeout       time.Duration
	Logger            *slog.Logger
}

// SplitBatches splits items into ordered slices of at most size elements.
// All batches except possibly the last hold exactly size items.
func SplitBatches[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if len(items) == 0 {
		return nil
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end:end])
	}
	return batches
}

// Upload applies a plan to the table and returns the run summary.
//
// Inserts go out in ordered batches, one BulkInsert call per batch. A batch
// rejected with a conflict is retried record by record so that only the
// records actually present count as skipped-duplicate. Updates are sent one
// at a time. Any other failure marks the batch or record failed and
// processing continues. A missing relation aborts immediately with a
// *ConfigError; the summary returned alongside reflects the work done so far.
func Upload(ctx context.Context, plan *Plan, table Table, opts UploadOptions) (*Summary, error) {
	u := &uploadRun{
		table:   table,
		opts:    opts,
		summary: NewSummary(opts.MaxFailureDetails),
		logger:  opts.Logger,
		total:   plan.Len(),
	}
	if u.logger == nil {
		u.logger = slog.Default()
	}
	u.summary.Deduplicated = plan.Deduplicated

	for _, o := range plan.Decided {
		u.record(o)
	}
	for _, s := range plan.Skips {
		u.record(Outcome{Key: s.Key, Row: s.Row, Status: StatusSkippedDuplicate, Detail: "nothing to fill"})
	}

	for i, batch := range SplitBatches(plan.Inserts, opts.BatchSize) {
		if err := u.insertBatch(ctx, i+1, batch); err != nil {
			return u.summary, err
		}
	}

	for _, step := range plan.Updates {
		if err := u.update(ctx, step); err != nil {
			return u.summary, err
		}
	}

	return u.summary, nil
}

type uploadRun struct {
	table   Table
	opts    UploadOptions
	summary *Summary
	logger  *slog.Logger
	total   int
}

func (u *uploadRun) record(o Outcome) {
	u.summary.Record(o)
	if ProgressInterval > 0 && u.summary.Total%ProgressInterval == 0 {
		u.logger.Info("upload progress",
			"processed", u.summary.Total,
			"total", u.total,
			"created", u.summary.Created,
			"updated", u.summary.Updated,
			"failed", u.summary.Failed,
		)
	}
}

func (u *uploadRun) insertBatch(ctx context.Context, n int, batch []Step) error {
	u.summary.Batches++
	err := u.bulkInsert(ctx, batch)

	switch {
	case err == nil:
		for _, s := range batch {
			u.record(Outcome{Key: s.Key, Row: s.Row, Status: StatusCreated})
		}
		return nil

	case errors.Is(err, ErrRelationMissing):
		return relationMissingErr(err)

	case errors.Is(err, ErrConflict) && len(batch) > 1:
		u.logger.Debug("batch conflict, retrying records individually", "batch", n, "size", len(batch))
		for _, s := range batch {
			if err := u.insertOne(ctx, s); err != nil {
				return err
			}
		}
		return nil

	case errors.Is(err, ErrConflict):
		u.record(Outcome{Key: batch[0].Key, Row: batch[0].Row, Status: StatusSkippedDuplicate, Remote: remoteStatus(err)})
		return nil

	default:
		u.logger.Warn("batch failed", "batch", n, "size", len(batch), "error", err)
		for _, s := range batch {
			u.record(failedOutcome(s.Key, s.Row, err, u.opts.DetailLength))
		}
		return nil
	}
}

func (u *uploadRun) insertOne(ctx context.Context, s Step) error {
	err := u.bulkInsert(ctx, []Step{s})
	switch {
	case err == nil:
		u.record(Outcome{Key: s.Key, Row: s.Row, Status: StatusCreated})
	case errors.Is(err, ErrRelationMissing):
		return relationMissingErr(err)
	case errors.Is(err, ErrConflict):
		u.record(Outcome{Key: s.Key, Row: s.Row, Status: StatusSkippedDuplicate, Remote: remoteStatus(err)})
	default:
		u.record(failedOutcome(s.Key, s.Row, err, u.opts.DetailLength))
	}
	return nil
}

func (u *uploadRun) bulkInsert(ctx context.Context, batch []Step) error {
	records := make([]Record, len(batch))
	for i, s := range batch {
		records[i] = s.Payload
	}

	callCtx, cancel := withCallTimeout(ctx, u.opts.CallTimeout)
	defer cancel()
	return u.table.BulkInsert(callCtx, records)
}

func (u *uploadRun) update(ctx context.Context, s Step) error {
	callCtx, cancel := withCallTimeout(ctx, u.opts.CallTimeout)
	err := u.table.Update(callCtx, s.Key, s.Payload)
	cancel()

	switch {
	case err == nil:
		u.record(Outcome{Key: s.Key, Row: s.Row, Status: StatusUpdated})
	case errors.Is(err, ErrRelationMissing):
		return relationMissingErr(err)
	case errors.Is(err, ErrConflict):
		u.record(Outcome{Key: s.Key, Row: s.Row, Status: StatusSkippedDuplicate, Remote: remoteStatus(err)})
	case errors.Is(err, ErrNotFound):
		u.record(Outcome{Key: s.Key, Row: s.Row, Status: StatusSkippedUnmatched, Remote: remoteStatus(err), Detail: "no remote record"})
	default:
		u.logger.Warn("update failed", "key", s.Key, "error", err)
		u.record(failedOutcome(s.Key, s.Row, err, u.opts.DetailLength))
	}
	return nil
}

func relationMissingErr(err error) *ConfigError {
	return &ConfigError{
		Field:       "table",
		Problem:     "remote table does not exist: " + Truncate(err.Error(), 200),
		Remediation: "create the table or point LEADS_TABLE at an existing one",
		Err:         err,
	}
}

func remoteStatus(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// =============================================================================
// Uploader
// =============================================================================

// Uploader is the reconciling batch uploader shared by every command.
// Commands supply a mapping profile and a table sink; the uploader runs
// normalize, deduplicate, reconcile and upload in that order.
type Uploader struct {
	Table   Table
	Mapping *Mapping

	// Finder overrides Table for lookups (AppendOnly with a restricted key).
	Finder Finder

	BatchSize         int
	MaxFailureDetails int
	DetailLength      int
	CallTimeout       time.Duration
	Logger            *slog.Logger

	// UpdateOnly never inserts; absent records become skipped-unmatched.
	UpdateOnly bool

	// Limit caps the number of raw rows processed. Zero means all.
	Limit int

	// Enrich, if set, runs on each entry after normalization, before dedupe.
	Enrich func(*Entry)
}

// Plan normalizes, deduplicates and reconciles records without writing.
func (u *Uploader) Plan(ctx context.Context, records []Record) (*Plan, error) {
	if u.Limit > 0 && len(records) > u.Limit {
		records = records[:u.Limit]
	}

	entries, excluded := Normalize(records, u.Mapping)
	if u.Enrich != nil {
		for i := range entries {
			u.Enrich(&entries[i])
		}
	}
	unique, dropped := Deduplicate(entries)

	logger := u.logger()
	logger.Info("records normalized",
		"rows", len(records),
		"excluded", len(excluded),
		"deduplicated", dropped,
		"unique", len(unique),
	)

	finder := u.Finder
	if finder == nil {
		finder = u.Table
	}

	plan, err := Reconcile(ctx, unique, finder, u.Mapping, ReconcileOptions{
		UpdateOnly:   u.UpdateOnly,
		CallTimeout:  u.CallTimeout,
		DetailLength: u.detailLength(),
	})
	if err != nil {
		return nil, err
	}
	plan.Decided = append(excluded, plan.Decided...)
	plan.Deduplicated = dropped

	logger.Info("plan ready",
		"inserts", len(plan.Inserts),
		"updates", len(plan.Updates),
		"skips", len(plan.Skips),
		"decided", len(plan.Decided),
	)
	return plan, nil
}

// Run plans and uploads records, returning the run summary.
// The error is non-nil only for a fatal *ConfigError.
func (u *Uploader) Run(ctx context.Context, records []Record) (*Summary, error) {
	start := time.Now()

	plan, err := u.Plan(ctx, records)
	if err != nil {
		return NewSummary(u.MaxFailureDetails), err
	}

	summary, err := Upload(ctx, plan, u.Table, UploadOptions{
		BatchSize:         u.BatchSize,
		MaxFailureDetails: u.MaxFailureDetails,
		DetailLength:      u.detailLength(),
		CallTimeout:       u.CallTimeout,
		Logger:            u.Logger,
	})

	u.logger().Info("upload finished",
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped_duplicate", summary.SkippedDuplicate,
		"skipped_unmatched", summary.SkippedUnmatched,
		"failed", summary.Failed,
		"batches", summary.Batches,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return summary, err
}

func (u *Uploader) logger() *slog.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return slog.Default()
}

func (u *Uploader) detailLength() int {
	if u.DetailLength > 0 {
		return u.DetailLength
	}
	return 200
}
