package cli

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leadsync/internal/config"
	"github.com/JonMunkholm/leadsync/internal/core"
	"github.com/JonMunkholm/leadsync/internal/images"
	"github.com/JonMunkholm/leadsync/internal/report"
)

type uploadFlags struct {
	preview    bool
	dataOnly   bool
	imagesOnly bool
	appendOnly bool
	limit      int
}

func (a *app) uploadCmd() *cobra.Command {
	var f uploadFlags

	cmd := &cobra.Command{
		Use:   "upload [csv...]",
		Short: "Upload images, then reconcile and upload records.",
		Long: `Upload reads the input CSVs, normalizes them onto the profile's schema,
drops in-file duplicates and reconciles each record against the remote
table: new records are inserted in batches, existing records only have
empty fields filled, and protected fields are never touched.

Local images matching the record keys are uploaded first so their public
URLs can be attached to the records.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUpload(cmd, args, f)
		},
	}

	cmd.Flags().BoolVar(&f.preview, "preview", false, "normalize and reconcile, print the plan, upload nothing")
	cmd.Flags().BoolVar(&f.dataOnly, "data-only", false, "skip images")
	cmd.Flags().BoolVar(&f.imagesOnly, "images-only", false, "skip records")
	cmd.Flags().BoolVar(&f.appendOnly, "append-only", false, "insert with the restricted key, no lookups or updates")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "process at most N rows (0 = all)")
	cmd.MarkFlagsMutuallyExclusive("data-only", "images-only")

	return cmd
}

func (a *app) runUpload(cmd *cobra.Command, paths []string, f uploadFlags) error {
	ctx := cmd.Context()

	m, err := a.mapping("")
	if err != nil {
		return err
	}

	var records []core.Record
	if len(paths) > 0 || !f.imagesOnly {
		if records, err = a.readInput(paths); err != nil {
			return err
		}
	}

	tier := config.Elevated
	if f.appendOnly {
		tier = config.Restricted
	}

	idx, err := a.imageIndex(ctx, f.imagesOnly)
	if err != nil {
		return err
	}

	var store images.ObjectStore
	if idx != nil && (!f.dataOnly || m.ImageField != "") {
		if store, err = a.objectStore(tier); err != nil {
			return err
		}
	}

	if !f.dataOnly && idx != nil {
		var keys []string
		if records != nil {
			keys = inputKeys(records, m, f.limit)
		}
		if err := a.uploadImages(ctx, store, idx, keys, f.limit, f.preview); err != nil {
			return err
		}
	}

	if f.imagesOnly {
		return nil
	}

	table, closeTable, err := a.table(ctx, m, tier)
	if err != nil {
		return err
	}
	defer closeTable()

	u := a.uploader(ctx, m, table, f.limit)
	if f.appendOnly {
		u.Finder = core.AppendOnly
	}
	if idx != nil && store != nil && m.ImageField != "" {
		u.Enrich = images.AttachURLs(idx, store, m.ImageField)
	}

	if f.preview {
		plan, err := u.Plan(ctx, records)
		if err != nil {
			return err
		}
		report.Plan(a.stdout, plan, report.DefaultPlanRows)
		return nil
	}

	summary, err := u.Run(ctx, records)
	report.Summary(a.stdout, "Upload to "+m.Table, summary)
	return err
}
