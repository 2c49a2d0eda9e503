package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sells-group/leadclean/internal/pipeline"
	"github.com/sells-group/leadclean/internal/record"
	"github.com/sells-group/leadclean/internal/resolve"
	"github.com/sells-group/leadclean/internal/schema"
	"github.com/sells-group/leadclean/internal/tabular"
	"github.com/sells-group/leadclean/pkg/mxdns"
)

var (
	cleanIn           string
	cleanOut          string
	cleanMappingPath  string
	cleanThreshold    int
	cleanSuppressMode string
	cleanQuiet        bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean and enrich a contact list",
	Long: `Runs the full enrichment pipeline over a CSV or XLSX contact export.

The column layout is detected from the header row (single-email,
multi-email slots, or website-only). Column roles are auto-inferred from
header names; pass --mapping to override with an explicit YAML mapping.

Examples:
  # Clean a CSV with auto-detected columns
  leadclean clean --in contacts.csv --out cleaned.csv

  # Explicit column mapping, drop over-represented domains outright
  leadclean clean --in export.xlsx --out cleaned.csv --mapping mapping.yaml --suppress-mode remove`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		headers, rows, err := readInput(cleanIn)
		if err != nil {
			return err
		}
		zap.L().Info("clean: parsed input",
			zap.String("path", cleanIn),
			zap.Int("columns", len(headers)),
			zap.Int("rows", len(rows)),
		)

		mapping, err := resolveMapping(headers)
		if err != nil {
			return err
		}

		mode := schema.Classify(headers)
		if err := mapping.Validate(mode); err != nil {
			return err
		}

		resolver, cache, err := buildResolver()
		if err != nil {
			return err
		}
		defer cache.Close() //nolint:errcheck

		p := pipeline.New(resolver, pipelineConfig(cmd.Flags()), progressPrinter())

		result, err := p.Run(ctx, headers, rows, mapping)
		if err != nil {
			return eris.Wrap(err, "clean: run pipeline")
		}

		out := tabular.Write(result.Rows, result.Priority)
		if err := os.WriteFile(cleanOut, []byte(out), 0o644); err != nil {
			return eris.Wrap(err, "clean: write output")
		}

		zap.L().Info("clean: complete",
			zap.String("run_id", result.RunID),
			zap.String("mode", string(result.Mode)),
			zap.String("out", cleanOut),
			zap.Int("input_rows", result.InputRows),
			zap.Int("output_rows", result.OutputRows),
			zap.Int("filtered", result.FilteredOut),
			zap.Int("duplicates", result.Duplicates),
			zap.Int("suppressed", result.Suppressed),
			zap.Int("peers_paired", result.PeersPaired),
		)
		return nil
	},
}

func init() {
	cleanCmd.Flags().StringVar(&cleanIn, "in", "", "path to input CSV or XLSX (required)")
	cleanCmd.Flags().StringVar(&cleanOut, "out", "", "path to output CSV (required)")
	cleanCmd.Flags().StringVar(&cleanMappingPath, "mapping", "", "YAML column mapping file (default: auto-infer from headers)")
	cleanCmd.Flags().IntVar(&cleanThreshold, "threshold", 0, "domain suppression threshold (default from config)")
	cleanCmd.Flags().StringVar(&cleanSuppressMode, "suppress-mode", "", "flag or remove (default from config)")
	cleanCmd.Flags().BoolVar(&cleanQuiet, "quiet", false, "suppress the progress line on stderr")
	_ = cleanCmd.MarkFlagRequired("in")
	_ = cleanCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(cleanCmd)
}

// pipelineConfig seeds suppression settings from the config file and env,
// letting explicitly passed flags override them.
func pipelineConfig(flags *pflag.FlagSet) pipeline.Config {
	pc := pipeline.Config{
		SuppressThreshold: cfg.Suppress.Threshold,
		SuppressMode:      cfg.Suppress.Mode,
	}
	if flags.Changed("threshold") {
		pc.SuppressThreshold = cleanThreshold
	}
	if flags.Changed("suppress-mode") {
		pc.SuppressMode = cleanSuppressMode
	}
	return pc
}

// readInput parses the input file by extension: .xlsx through the sheet
// reader, anything else as CSV text.
func readInput(path string) ([]string, record.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return tabular.ReadXLSX(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "clean: read %s", path)
	}
	headers, rows := tabular.Parse(string(data), nil)
	return headers, rows, nil
}

// resolveMapping loads the explicit mapping file when given, otherwise
// infers roles from header names.
func resolveMapping(headers []string) (schema.Mapping, error) {
	if cleanMappingPath != "" {
		return schema.LoadMapping(cleanMappingPath)
	}
	return schema.AutoMap(headers), nil
}

// buildResolver wires the DoH client, provider cache, and resolver from
// config. The caller owns closing the cache.
func buildResolver() (*resolve.Resolver, *resolve.Cache, error) {
	client := mxdns.NewClient(
		mxdns.WithBaseURL(cfg.Resolver.BaseURL),
		mxdns.WithRateLimit(float64(cfg.Resolver.RateLimit)),
	)

	cache, err := openCache()
	if err != nil {
		return nil, nil, err
	}

	resolver := resolve.NewResolver(client, cache,
		resolve.WithBatchSize(cfg.Resolver.BatchSize),
		resolve.WithTimeout(cfg.Resolver.Timeout()),
	)
	return resolver, cache, nil
}

// openCache opens the persistent provider cache when configured, else a
// memory-only cache for this run.
func openCache() (*resolve.Cache, error) {
	if cfg.Resolver.CachePath == "" {
		return resolve.NewCache(), nil
	}
	cache, err := resolve.NewPersistentCache(cfg.Resolver.CachePath)
	if err != nil {
		return nil, eris.Wrap(err, "clean: open provider cache")
	}
	return cache, nil
}

// progressPrinter rewrites a single stderr line per progress event so a
// long run shows stage and position without scrolling the log away.
func progressPrinter() func(processed, total int, stage string) {
	if cleanQuiet {
		return nil
	}
	return func(processed, total int, stage string) {
		fmt.Fprintf(os.Stderr, "\r%-10s %d/%d", stage, processed, total)
		if stage == "finalize" && processed == total {
			fmt.Fprintln(os.Stderr)
		}
	}
}
