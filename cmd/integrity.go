package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"docs-server/core/config"
	"docs-server/core/logger"
	"docs-server/feature/integrity"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newIntegrityCmd() *cobra.Command {
	var (
		dir      string
		showTree bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "integrity",
		Short: "Check the static asset directory",
		Long: `Checks that the asset directory exists, contains the required files and
lists the OpenAPI documents that can be opened with ?service=<name>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(".", nil)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logg, err := logger.New(&cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logg.Sync()

			if !cmd.Flags().Changed("dir") {
				dir = cfg.Server.AssetDir
			}

			svc := integrity.NewService(dir, logg)
			report, err := svc.Run()
			if err != nil {
				return fmt.Errorf("integrity check failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return fmt.Errorf("failed to encode report: %w", err)
				}
			} else {
				printReport(out, report)
				if showTree {
					tree, err := svc.Tree()
					if err != nil {
						return fmt.Errorf("failed to render tree: %w", err)
					}
					fmt.Fprintln(out, "\n=== Asset Tree ===")
					fmt.Fprint(out, tree)
				}
			}

			if report.Status == integrity.StatusError {
				return fmt.Errorf("integrity check failed: missing %s", strings.Join(report.Missing, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Asset directory to check (defaults to server.asset_dir)")
	cmd.Flags().BoolVar(&showTree, "tree", false, "Print the asset directory tree")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func printReport(out io.Writer, report *integrity.Report) {
	ok := color.New(color.FgGreen).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	status := ok("OK")
	switch report.Status {
	case integrity.StatusWarning:
		status = warn("WARNING")
	case integrity.StatusError:
		status = bad("ERROR")
	}

	fmt.Fprintln(out, "\n=== Asset Directory Integrity ===")
	fmt.Fprintf(out, "Directory: %s\n", report.Dir)
	fmt.Fprintf(out, "Status: %s\n", status)
	if len(report.Missing) > 0 {
		fmt.Fprintf(out, "Missing: %s\n", bad(strings.Join(report.Missing, ", ")))
	}

	fmt.Fprintf(out, "\n=== API Documents (%d) ===\n", len(report.Specs))
	if len(report.Specs) == 0 {
		fmt.Fprintln(out, warn("No OpenAPI or Swagger documents found"))
	}
	for _, spec := range report.Specs {
		line := fmt.Sprintf("  %s  %s %s  %s", ok(spec.Service), spec.Kind, spec.Version, spec.Path)
		if spec.Title != "" {
			line += fmt.Sprintf("  (%s %s)", spec.Title, spec.APIVersion)
		}
		fmt.Fprintln(out, line)
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(out, "\n=== Document Problems (%d) ===\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Fprintf(out, "  %s: %s\n", bad(e.Path), e.Error)
		}
	}
}
