package images

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/JonMunkholm/leadsync/internal/core"
)

// UploadOptions configure UploadAll.
type UploadOptions struct {
	MaxFailureDetails int
	DetailLength      int
	CallTimeout       time.Duration
	Limit             int

	// MissingSample is how many missing keys are kept for the report.
	MissingSample int

	Logger *slog.Logger
}

// UploadResult is the outcome of an image upload run.
type UploadResult struct {
	Summary    *core.Summary
	Matched    int
	Missing    int
	MissingIDs []string // First MissingSample keys with no local image
	ExampleURL string   // Public URL of the first uploaded or existing object
}

// UploadAll uploads the image of every key that has one in idx. Keys with
// no local image are counted as missing, not failed. A nil keys slice means
// every indexed image. Existing objects are skipped-duplicate. A missing
// bucket aborts with a *core.ConfigError.
func UploadAll(ctx context.Context, store ObjectStore, idx *Index, keys []string, opts UploadOptions) (*UploadResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if keys == nil {
		keys = idx.Keys()
	}
	if opts.MissingSample <= 0 {
		opts.MissingSample = 10
	}

	res := &UploadResult{Summary: core.NewSummary(opts.MaxFailureDetails)}

	var matched []File
	for _, k := range keys {
		f, ok := idx.Lookup(k)
		if !ok {
			res.Missing++
			if len(res.MissingIDs) < opts.MissingSample {
				res.MissingIDs = append(res.MissingIDs, k)
			}
			continue
		}
		matched = append(matched, f)
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	res.Matched = len(matched)

	logger.Info("images matched", "matched", res.Matched, "missing", res.Missing)

	contentType := ContentType(idx.ext)
	for i, f := range matched {
		o, err := putOne(ctx, store, f, contentType, opts)
		if err != nil {
			return res, err
		}
		res.Summary.Record(o)

		if res.ExampleURL == "" && o.Status != core.StatusFailed {
			res.ExampleURL = store.PublicURL(f.Object)
		}
		if n := i + 1; core.ProgressInterval > 0 && n%core.ProgressInterval == 0 {
			logger.Info("image upload progress", "processed", n, "total", len(matched))
		}
	}

	return res, nil
}

func putOne(ctx context.Context, store ObjectStore, f File, contentType string, opts UploadOptions) (core.Outcome, error) {
	data, err := f.Read()
	if err != nil {
		return failed(f, err, opts.DetailLength), nil
	}

	callCtx := ctx
	if opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, opts.CallTimeout)
		defer cancel()
	}

	err = store.Put(callCtx, f.Object, data, contentType)
	switch {
	case err == nil:
		return core.Outcome{Key: f.Key, Status: core.StatusCreated}, nil
	case errors.Is(err, core.ErrConflict):
		return core.Outcome{Key: f.Key, Status: core.StatusSkippedDuplicate, Remote: remoteStatus(err)}, nil
	case errors.Is(err, core.ErrRelationMissing):
		return core.Outcome{}, BucketMissing(err)
	default:
		return failed(f, err, opts.DetailLength), nil
	}
}

func failed(f File, err error, n int) core.Outcome {
	if n <= 0 {
		n = 200
	}
	return core.Outcome{
		Key:    f.Key,
		Status: core.StatusFailed,
		Remote: remoteStatus(err),
		Detail: core.Truncate(err.Error(), n),
	}
}

func remoteStatus(err error) int {
	var re *core.RemoteError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// BucketMissing wraps a missing-bucket error from the store as a
// configuration error.
func BucketMissing(err error) *core.ConfigError {
	return &core.ConfigError{
		Field:       "STORAGE_BUCKET",
		Problem:     "storage bucket does not exist",
		Remediation: "create the bucket or point STORAGE_BUCKET at an existing one",
		Err:         err,
	}
}
