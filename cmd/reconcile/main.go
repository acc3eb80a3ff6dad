// Command reconcile merges monthly performance CSV files into one ranked export
// without starting the server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/config"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/annotation"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/ranking"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/csvimport"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/gemini"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/logger"
	annotationService "github.com/cmlabs-hris/performance-dashboard-go/internal/service/annotation"
	rankingService "github.com/cmlabs-hris/performance-dashboard-go/internal/service/ranking"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type options struct {
	year     int
	out      string
	annotate bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "reconcile [flags] file.csv [file.csv ...]",
		Short: "Merge monthly performance files into one ranked CSV",
		Long: `Parse every file in argument order, merge them into one yearly record per
employee, rank the result and write it as a CSV that can be imported again.

Later files win for months that more than one file reports.`,
		Example: `  reconcile januari.csv februari.csv maret.csv
  reconcile --year 2024 --out ranking.csv --annotate data/*.csv`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().IntVar(&opts.year, "year", 0, "reporting year for rows without a tahun column (default REPORT_YEAR)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().BoolVar(&opts.annotate, "annotate", false, "generate evaluation notes with Gemini (GEMINI_API_KEY)")

	return cmd
}

func run(ctx context.Context, opts *options, files []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(logger.NewWithWriter(stderr, cfg.App))

	year := cfg.Report.Year
	if opts.year != 0 {
		year = opts.year
	}

	parser := csvimport.Parser{Year: year, DefaultScore: cfg.Report.DefaultScore, Now: time.Now}
	batches, err := parseFiles(ctx, parser, files)
	if err != nil {
		return err
	}

	registry := performance.Registry{}
	for _, batch := range batches {
		registry = performance.ReconcileBatch(registry, batch)
	}

	ranked := rankingService.NewRankingService(ranking.DefaultWeights(), time.Now).Rank(registry)
	if opts.annotate {
		notes := newAnnotator(ctx, cfg).Annotate(ctx, ranked)
		if notes.Warning != "" {
			fmt.Fprintln(stderr, notes.Warning)
		}
		for i := range ranked {
			if note, ok := notes.Notes[ranked[i].Name]; ok {
				ranked[i].Note = note
			}
		}
	}

	rows := make([]csvimport.ExportRow, 0, len(ranked))
	for _, r := range ranked {
		rows = append(rows, csvimport.ExportRow{Record: registry[r.Name], Rank: r.Rank, Note: r.Note})
	}

	out := stdout
	if opts.out != "" && opts.out != "-" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := csvimport.Write(out, rows); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	slog.Info("Reconciled", "files", len(files), "employees", len(registry), "year", year)
	return nil
}

// parseFiles reads the files concurrently and returns their records in argument order.
func parseFiles(ctx context.Context, parser csvimport.Parser, files []string) ([][]performance.EmployeeRecord, error) {
	batches := make([][]performance.EmployeeRecord, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(name)
			if err != nil {
				return err
			}
			defer f.Close()

			records, err := parser.Parse(f)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			batches[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

func newAnnotator(ctx context.Context, cfg *config.Config) annotation.AnnotationService {
	var generator annotation.TextGenerator
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
		if err != nil {
			slog.Warn("Gemini unavailable, using local notes", "error", err)
		} else {
			generator = client
		}
	}
	return annotationService.NewAnnotationService(generator, cfg.Gemini.Temperature, nil, time.Now)
}
