package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/leadsync/internal/backend/postgres"
	"github.com/JonMunkholm/leadsync/internal/backend/rest"
	"github.com/JonMunkholm/leadsync/internal/backend/s3"
	"github.com/JonMunkholm/leadsync/internal/config"
	"github.com/JonMunkholm/leadsync/internal/core"
	"github.com/JonMunkholm/leadsync/internal/core/profiles"
	"github.com/JonMunkholm/leadsync/internal/images"
	"github.com/JonMunkholm/leadsync/internal/logging"
	"github.com/JonMunkholm/leadsync/internal/report"
)

// mapping resolves a profile by name, or the configured profile when name
// is empty, with mapping file and table overrides applied.
func (a *app) mapping(name string) (*core.Mapping, error) {
	if name == "" {
		name = a.cfg.Table.Profile
	}
	return profiles.Resolve(name, a.cfg.Table.MappingFile, a.cfg.Table.Name)
}

// table opens the table sink for m. A DATABASE_URL selects the direct
// PostgreSQL sink; otherwise the REST API is used with the tier's key.
// The returned close function is never nil.
func (a *app) table(ctx context.Context, m *core.Mapping, tier config.Tier) (core.Table, func(), error) {
	if a.cfg.Database.URL != "" {
		pool, err := postgres.Connect(ctx, a.cfg.Database)
		if err != nil {
			return nil, func() {}, err
		}
		return postgres.NewTable(pool, m.Table, m.Key), pool.Close, nil
	}

	cred, err := a.cfg.Backend.Credential(tier)
	if err != nil {
		return nil, func() {}, err
	}
	logging.FromContext(ctx).Info("using backend",
		"url", cred.URL,
		"tier", cred.Tier.String(),
		"table", m.Table,
	)
	client := rest.NewClient(cred.URL, cred.Key, a.cfg.Backend.Timeout)
	return client.Table(m.Table, m.Key), func() {}, nil
}

// objectStore opens the configured image bucket.
func (a *app) objectStore(tier config.Tier) (images.ObjectStore, error) {
	if strings.EqualFold(a.cfg.Storage.Driver, "s3") {
		return s3.New(a.cfg.Storage)
	}

	cred, err := a.cfg.Backend.Credential(tier)
	if err != nil {
		return nil, err
	}
	client := rest.NewClient(cred.URL, cred.Key, a.cfg.Backend.Timeout)
	return client.Storage(a.cfg.Storage.Bucket, a.cfg.Storage.PublicURL), nil
}

// imageIndex scans the image directory. When required is false a missing
// directory is logged and yields a nil index.
func (a *app) imageIndex(ctx context.Context, required bool) (*images.Index, error) {
	idx, err := images.Scan(a.cfg.Images.Dir, a.cfg.Images.Extension)
	if err == nil {
		logging.FromContext(ctx).Info("images indexed", "dir", a.cfg.Images.Dir, "images", idx.Len())
		return idx, nil
	}
	if !required && core.IsConfigError(err) {
		logging.FromContext(ctx).Warn("no image directory, image URLs not attached", "dir", a.cfg.Images.Dir)
		return nil, nil
	}
	return nil, err
}

// readInput reads and concatenates the input CSVs.
func (a *app) readInput(paths []string) ([]core.Record, error) {
	if len(paths) == 0 {
		return nil, &core.ConfigError{
			Field:       "input",
			Problem:     "no input CSV given",
			Remediation: "pass one or more CSV paths",
		}
	}
	return core.ReadCSVFiles(paths...)
}

// uploader builds the shared uploader for m.
func (a *app) uploader(ctx context.Context, m *core.Mapping, table core.Table, limit int) *core.Uploader {
	return &core.Uploader{
		Table:             table,
		Mapping:           m,
		BatchSize:         a.cfg.Upload.BatchSize,
		MaxFailureDetails: a.cfg.Upload.MaxFailureDetails,
		DetailLength:      a.cfg.Upload.DetailLength,
		CallTimeout:       a.cfg.Backend.Timeout,
		Logger:            logging.WithFields(ctx, "profile", m.Name, "table", m.Table),
		Limit:             limit,
	}
}

// inputKeys returns the unique normalized keys of records, in input order.
func inputKeys(records []core.Record, m *core.Mapping, limit int) []string {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	entries, _ := core.Normalize(records, m)
	unique, _ := core.Deduplicate(entries)

	keys := make([]string, len(unique))
	for i, e := range unique {
		keys[i] = e.Key
	}
	return keys
}

// uploadImages runs the image phase shared by upload and images upload.
func (a *app) uploadImages(ctx context.Context, store images.ObjectStore, idx *images.Index, keys []string, limit int, preview bool) error {
	if preview {
		matched, missing := 0, 0
		for _, k := range keysOrAll(keys, idx) {
			if _, ok := idx.Lookup(k); ok {
				matched++
			} else {
				missing++
			}
		}
		if limit > 0 && matched > limit {
			matched = limit
		}
		fmt.Fprintf(a.stdout, "Would upload %d images (%d missing locally)\n", matched, missing)
		return nil
	}

	res, err := images.UploadAll(ctx, store, idx, keys, images.UploadOptions{
		MaxFailureDetails: a.cfg.Upload.MaxFailureDetails,
		DetailLength:      a.cfg.Upload.DetailLength,
		CallTimeout:       a.cfg.Backend.Timeout,
		Limit:             limit,
		Logger:            logging.WithFields(ctx, "bucket", a.cfg.Storage.Bucket),
	})
	if res != nil {
		report.ImageUpload(a.stdout, res)
	}
	return err
}

func keysOrAll(keys []string, idx *images.Index) []string {
	if keys == nil {
		return idx.Keys()
	}
	return keys
}
