package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"docs-server/core/config"
	"docs-server/core/logger"
	"docs-server/core/storage"
	"docs-server/feature/mirror"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newStorageClient is replaced in tests.
var newStorageClient = storage.NewClient

func newMirrorCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Copy the asset directory from or to object storage",
		Long: `Copies the documentation bundle between the asset directory and the
S3 compatible bucket configured with the STORAGE_* settings.`,
		Args: cobra.NoArgs,
	}
	cmd.PersistentFlags().StringVarP(&dir, "dir", "d", "", "Asset directory (defaults to server.asset_dir)")

	pull := &cobra.Command{
		Use:   "pull",
		Short: "Download the bundle into the asset directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, target, logg, err := setupMirror(cmd, dir)
			if err != nil {
				return err
			}
			defer logg.Sync()

			result, err := svc.Pull(cmd.Context(), target)
			if err != nil {
				return fmt.Errorf("mirror pull failed: %w", err)
			}

			logg.Info("Mirror pull completed", zap.String("dir", target), zap.Int("files", result.Files), zap.Int64("bytes", result.Bytes))
			printResult(cmd.OutOrStdout(), "Downloaded", result)
			return nil
		},
	}

	var (
		createBucket bool
		dryRun       bool
		asJSON       bool
	)
	push := &cobra.Command{
		Use:   "push",
		Short: "Upload new and changed files of the asset directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, target, logg, err := setupMirror(cmd, dir)
			if err != nil {
				return err
			}
			defer logg.Sync()

			result, err := svc.Push(cmd.Context(), target, mirror.PushOptions{
				CreateBucket: createBucket,
				DryRun:       dryRun,
			})
			if err != nil {
				return fmt.Errorf("mirror push failed: %w", err)
			}

			logg.Info("Mirror push completed",
				zap.String("dir", target),
				zap.Int("files", result.Files),
				zap.Int("unchanged", result.Unchanged),
				zap.Int64("bytes", result.Bytes),
				zap.Bool("dry_run", result.DryRun),
			)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			verb := "Uploaded"
			if dryRun {
				verb = "Would upload"
			}
			printResult(cmd.OutOrStdout(), verb, result)
			return nil
		},
	}
	push.Flags().BoolVar(&createBucket, "create-bucket", false, "Create the bucket if it does not exist")
	push.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be uploaded without uploading")
	push.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	cmd.AddCommand(pull, push)
	return cmd
}

func setupMirror(cmd *cobra.Command, dir string) (*mirror.Service, string, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".", nil)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := newStorageClient(cfg.Storage)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	if !cmd.Flags().Changed("dir") {
		dir = cfg.Server.AssetDir
	}

	svc := mirror.NewService(client, cfg.Storage.Bucket, cfg.Storage.Prefix, logg)
	return svc, dir, logg, nil
}

func printResult(out io.Writer, verb string, result *mirror.Result) {
	fmt.Fprintf(out, "%s %d files (%s)\n", verb, result.Files, humanize.IBytes(uint64(result.Bytes)))
	if result.Unchanged > 0 {
		fmt.Fprintf(out, "Unchanged: %d\n", result.Unchanged)
	}
	for _, action := range result.Actions {
		fmt.Fprintf(out, "  %-6s %s (%s)\n", action.Type, action.Path, action.Reason)
	}
	for _, skipped := range result.Skipped {
		fmt.Fprintf(out, "Skipped: %s\n", skipped)
	}
}
