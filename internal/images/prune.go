package images

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/JonMunkholm/leadsync/internal/core"
)

// LegacySeparator is the key separator used by old object names.
const LegacySeparator = "-"

// PrunePlan lists the objects a prune would delete.
type PrunePlan struct {
	Delete []string
	Keep   int
}

// PlanPrune selects images (objects ending in ext, any case) whose base name
// still contains the legacy separator. Other objects are kept. An empty ext
// matches every object. It makes no calls.
func PlanPrune(names []string, ext string) PrunePlan {
	var plan PrunePlan
	for _, n := range names {
		base := path.Base(n)
		if hasExt(base, ext) && strings.Contains(base, LegacySeparator) {
			plan.Delete = append(plan.Delete, n)
		} else {
			plan.Keep++
		}
	}
	return plan
}

func hasExt(name, ext string) bool {
	if ext == "" {
		return true
	}
	return len(name) > len(ext) && strings.EqualFold(name[len(name)-len(ext):], ext)
}

// PruneResult is the outcome of ExecutePrune.
type PruneResult struct {
	Deleted  int
	Failed   int
	Failures []string // One entry per failed batch
}

// ExecutePrune deletes the planned objects in batches of batchSize. A
// failing batch is recorded and the rest continue.
func ExecutePrune(ctx context.Context, store ObjectStore, plan PrunePlan, batchSize int, logger *slog.Logger) PruneResult {
	if logger == nil {
		logger = slog.Default()
	}

	var res PruneResult
	for i, batch := range core.SplitBatches(plan.Delete, batchSize) {
		if err := store.Delete(ctx, batch); err != nil {
			logger.Warn("delete batch failed", "batch", i+1, "size", len(batch), "error", err)
			res.Failed += len(batch)
			res.Failures = append(res.Failures, core.Truncate(err.Error(), 200))
			continue
		}
		res.Deleted += len(batch)
		logger.Info("deleted batch", "batch", i+1, "deleted", res.Deleted, "total", len(plan.Delete))
	}
	return res
}
