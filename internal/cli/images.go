package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leadsync/internal/config"
	"github.com/JonMunkholm/leadsync/internal/core"
	"github.com/JonMunkholm/leadsync/internal/core/profiles"
	"github.com/JonMunkholm/leadsync/internal/images"
	"github.com/JonMunkholm/leadsync/internal/logging"
	"github.com/JonMunkholm/leadsync/internal/report"
)

func (a *app) imagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Manage property images in object storage.",
	}
	cmd.AddCommand(a.imagesUploadCmd(), a.imagesPruneCmd())
	return cmd
}

func (a *app) imagesUploadCmd() *cobra.Command {
	var (
		preview bool
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "upload [csv...]",
		Short: "Upload local images, restricted to the keys in the CSVs when given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			idx, err := a.imageIndex(ctx, true)
			if err != nil {
				return err
			}

			var keys []string
			if len(args) > 0 {
				m, err := a.mapping("")
				if err != nil {
					return err
				}
				records, err := a.readInput(args)
				if err != nil {
					return err
				}
				keys = inputKeys(records, m, limit)
			}

			store, err := a.objectStore(config.Elevated)
			if err != nil {
				return err
			}
			return a.uploadImages(ctx, store, idx, keys, limit, preview)
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "count matches, upload nothing")
	cmd.Flags().IntVar(&limit, "limit", 0, "upload at most N images (0 = all)")

	return cmd
}

func (a *app) imagesPruneCmd() *cobra.Command {
	var (
		execute bool
		prefix  string
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete bucket objects still named with the legacy '-' separator.",
		Long: `Prune lists the bucket and plans deletion of every object whose name
still uses the legacy '-' key separator. The plan is printed; nothing is
deleted unless --execute is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := a.objectStore(config.Elevated)
			if err != nil {
				return err
			}

			names, err := store.List(ctx, prefix)
			if errors.Is(err, core.ErrRelationMissing) {
				return images.BucketMissing(err)
			}
			if err != nil {
				return err
			}

			plan := images.PlanPrune(names, a.cfg.Images.Extension)
			report.PrunePlan(a.stdout, plan, report.DefaultPlanRows)

			if len(plan.Delete) == 0 {
				return nil
			}
			if !execute {
				fmt.Fprintln(a.stdout, "Nothing deleted. Rerun with --execute to delete these objects.")
				return nil
			}

			res := images.ExecutePrune(ctx, store, plan, a.cfg.Upload.DeleteBatchSize,
				logging.WithFields(ctx, "bucket", a.cfg.Storage.Bucket))
			report.PruneResult(a.stdout, res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&execute, "execute", false, "delete the planned objects")
	cmd.Flags().StringVar(&prefix, "prefix", "", "only consider objects under this prefix")

	return cmd
}

func (a *app) imageURLsCmd() *cobra.Command {
	var (
		preview bool
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "image-urls [csv...]",
		Short: "Fill empty image URLs on existing records from local images.",
		Long: `image-urls matches the keys in the CSVs to local images and fills the
image URL of each existing remote record whose URL is still empty. It never
creates records and never replaces a URL that is already set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := a.mapping(profiles.ImageURLs)
			if err != nil {
				return err
			}
			records, err := a.readInput(args)
			if err != nil {
				return err
			}
			idx, err := a.imageIndex(ctx, true)
			if err != nil {
				return err
			}
			store, err := a.objectStore(config.Elevated)
			if err != nil {
				return err
			}

			table, closeTable, err := a.table(ctx, m, config.Elevated)
			if err != nil {
				return err
			}
			defer closeTable()

			u := a.uploader(ctx, m, table, limit)
			u.UpdateOnly = true
			u.Enrich = images.AttachURLs(idx, store, m.ImageField)

			if preview {
				plan, err := u.Plan(ctx, records)
				if err != nil {
					return err
				}
				report.Plan(a.stdout, plan, report.DefaultPlanRows)
				return nil
			}

			summary, err := u.Run(ctx, records)
			report.Summary(a.stdout, "Image URLs on "+m.Table, summary)
			return err
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "print the plan, update nothing")
	cmd.Flags().IntVar(&limit, "limit", 0, "process at most N rows (0 = all)")

	return cmd
}

func (a *app) profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the registered mapping profiles.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report.Profiles(a.stdout, core.All())
			return nil
		},
	}
}
