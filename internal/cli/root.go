// Package cli implements the leadsync command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leadsync/internal/config"
	"github.com/JonMunkholm/leadsync/internal/core"
	_ "github.com/JonMunkholm/leadsync/internal/core/profiles" // Register all profiles
	"github.com/JonMunkholm/leadsync/internal/logging"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
)

// globalFlags override configuration for one run.
type globalFlags struct {
	profile     string
	table       string
	mappingFile string
	imagesDir   string
	bucket      string
	batchSize   int
	logLevel    string
	logFormat   string
}

// app is the state shared by every command of one run.
type app struct {
	cfg    *config.Config
	flags  globalFlags
	stdout io.Writer
	stderr io.Writer
}

// Execute runs the command line and returns the process exit code.
// Completed runs exit 0 even with per-record failures; only configuration
// errors exit non-zero with remediation text.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var ce *core.ConfigError
	if errors.As(err, &ce) {
		fmt.Fprintf(stderr, "configuration error: %s\n", ce.Problem)
		if ce.Remediation != "" {
			fmt.Fprintf(stderr, "  fix: %s\n", ce.Remediation)
		}
		return ExitConfig
	}

	fmt.Fprintln(stderr, "error:", err)
	return ExitFailure
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "leadsync",
		Short:         "Reconciling batch uploader for lead CSVs and property images.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.profile, "profile", "", "mapping profile (default $LEADS_PROFILE)")
	pf.StringVar(&a.flags.table, "table", "", "remote table (default: the profile's table)")
	pf.StringVar(&a.flags.mappingFile, "mapping", "", "JSON5 profile override file (default $LEADS_MAPPING_FILE)")
	pf.StringVar(&a.flags.imagesDir, "images-dir", "", "local image directory (default $IMAGES_DIR)")
	pf.StringVar(&a.flags.bucket, "bucket", "", "storage bucket (default $STORAGE_BUCKET)")
	pf.IntVar(&a.flags.batchSize, "batch-size", 0, "records per insert call (default $UPLOAD_BATCH_SIZE)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "text or json")

	root.AddCommand(
		a.uploadCmd(),
		a.prepareCmd(),
		a.imagesCmd(),
		a.imageURLsCmd(),
		a.profilesCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and starts logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	f := a.flags
	if f.profile != "" {
		cfg.Table.Profile = f.profile
	}
	if f.table != "" {
		cfg.Table.Name = f.table
	}
	if f.mappingFile != "" {
		cfg.Table.MappingFile = f.mappingFile
	}
	if f.imagesDir != "" {
		cfg.Images.Dir = f.imagesDir
	}
	if f.bucket != "" {
		cfg.Storage.Bucket = f.bucket
	}
	if f.batchSize > 0 {
		cfg.Upload.BatchSize = f.batchSize
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Logging.Format = f.logFormat
	}

	logging.SetupWriter(a.stderr, cfg.Logging.Level, cfg.Logging.Format)
	core.MaxFileSize = cfg.Upload.MaxFileSize

	ctx := logging.WithRunID(cmd.Context(), "")
	cmd.SetContext(ctx)

	logging.FromContext(ctx).Debug("configuration loaded", "config", cfg.String())
	a.cfg = cfg
	return nil
}
