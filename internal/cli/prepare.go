package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leadsync/internal/config"
	"github.com/JonMunkholm/leadsync/internal/core"
	"github.com/JonMunkholm/leadsync/internal/images"
)

func (a *app) prepareCmd() *cobra.Command {
	var (
		out   string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "prepare [csv...]",
		Short: "Write the normalized, deduplicated CSV for manual import.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := a.mapping("")
			if err != nil {
				return err
			}
			records, err := a.readInput(args)
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			entries, excluded := core.Normalize(records, m)

			// Image URLs are attached only when both the directory and a
			// backend URL are available; a keyless store is enough for URLs.
			if m.ImageField != "" && a.cfg.Backend.URL != "" {
				idx, err := a.imageIndex(ctx, false)
				if err != nil {
					return err
				}
				if idx != nil {
					if store, err := a.objectStore(config.Restricted); err == nil {
						attach := images.AttachURLs(idx, store, m.ImageField)
						for i := range entries {
							attach(&entries[i])
						}
					}
				}
			}

			unique, dropped := core.Deduplicate(entries)

			if err := writeCSVFile(out, m.Columns(), unique); err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Wrote %d records to %s (%d excluded without %s, %d duplicates dropped)\n",
				len(unique), out, len(excluded), m.Key, dropped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "upload_ready.csv", "output CSV path")
	cmd.Flags().IntVar(&limit, "limit", 0, "process at most N rows (0 = all)")

	return cmd
}

func writeCSVFile(path string, columns []string, entries []core.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return &core.ConfigError{
			Field:       "out",
			Problem:     "cannot create output file: " + err.Error(),
			Remediation: "choose a writable --out path",
			Err:         err,
		}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := core.WriteCSV(w, columns, entries); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
