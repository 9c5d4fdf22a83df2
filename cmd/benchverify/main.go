package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storage-sig/benchverify/core"
	"github.com/storage-sig/benchverify/pkg/logging"
	"github.com/storage-sig/benchverify/pkg/metrics"
	"github.com/storage-sig/benchverify/pkg/tracing"
	"github.com/storage-sig/benchverify/report"
	"github.com/storage-sig/benchverify/results"
	"github.com/storage-sig/benchverify/sizing"
	"github.com/storage-sig/benchverify/verify"
)

var (
	logLevel  string
	logFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "benchverify",
		Short: "Classify storage benchmark submissions as CLOSED, OPEN or INVALID",
		Long: `benchverify checks benchmark runs and submissions against the
submission rulebook and resolves a compliance category for each.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console or json)")

	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newDatasizeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVerifyCmd() *cobra.Command {
	var (
		resultsDir     string
		outputPath     string
		parallelism    int
		jaegerEndpoint string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify every run and submission under a results directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Config{Level: logLevel, Format: logFormat})
			if err != nil {
				return err
			}
			defer logger.Sync()

			m := metrics.NewPrometheusMetrics(nil)

			tracer := tracing.Noop()
			if jaegerEndpoint != "" {
				tracer, err = tracing.NewTracer(tracing.Config{
					ServiceName:    "benchverify",
					ServiceVersion: "dev",
					JaegerEndpoint: jaegerEndpoint,
					Environment:    "cli",
				})
				if err != nil {
					return err
				}
				defer tracer.Shutdown(context.Background())
			}

			discoverer, err := results.NewDiscoverer(results.DiscovererConfig{Logger: logger, Metrics: m})
			if err != nil {
				return err
			}
			runs, err := discoverer.DiscoverRuns(resultsDir)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				logger.Warnw("no benchmark runs found", "dir", resultsDir)
				return nil
			}

			submissions := verify.SubmissionsByType(results.GroupByType(runs))

			batch := verify.NewBatch(verify.BatchConfig{
				Logger:      logger,
				Metrics:     m,
				Tracer:      tracer,
				Parallelism: parallelism,
			})
			outcomes, err := batch.VerifySubmissions(cmd.Context(), submissions)
			if err != nil {
				return err
			}

			out := os.Stdout
			if outputPath != "" && outputPath != "-" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			if err := report.WriteJSON(out, outcomes); err != nil {
				return err
			}

			for _, o := range outcomes {
				if o.Overall.Category == core.CategoryInvalid {
					return fmt.Errorf("submission for %s is INVALID", o.BenchmarkType)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsDir, "results-dir", "results", "directory holding benchmark results")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "JSON report destination ('-' for stdout)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 4, "number of submissions verified concurrently")
	cmd.Flags().StringVar(&jaegerEndpoint, "jaeger-endpoint", "", "Jaeger collector endpoint for tracing (disabled when empty)")
	return cmd
}

func newDatasizeCmd() *cobra.Command {
	var (
		hostMemoryGB   int64
		numHosts       int64
		numProcesses   int64
		samplesPerFile int64
		recordLength   int64
		batchSize      int64
	)

	cmd := &cobra.Command{
		Use:   "datasize",
		Short: "Compute the minimum compliant training dataset size",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := sizing.TrainingDataSize(
				nil,
				&sizing.Manual{
					ClientHostMemoryGB: hostMemoryGB,
					NumClientHosts:     numHosts,
					NumProcesses:       numProcesses,
				},
				sizing.DatasetParams{NumSamplesPerFile: samplesPerFile, RecordLengthBytes: recordLength},
				sizing.ReaderParams{BatchSize: batchSize},
				0,
			)
			if err != nil {
				return err
			}

			constraint := "500-step requirement"
			if res.SizeDriven {
				constraint = "dataset-to-memory ratio"
			}
			fmt.Printf("Required file count:      %d\n", res.RequiredFileCount)
			fmt.Printf("Required subfolder count: %d\n", res.RequiredSubfolderCount)
			fmt.Printf("Total dataset size:       %d bytes\n", res.TotalDiskBytes)
			fmt.Printf("Binding constraint:       %s\n", constraint)
			return nil
		},
	}

	cmd.Flags().Int64Var(&hostMemoryGB, "client-host-memory-gb", 0, "memory per client host in GB")
	cmd.Flags().Int64Var(&numHosts, "num-client-hosts", 0, "number of client hosts")
	cmd.Flags().Int64Var(&numProcesses, "num-processes", 0, "number of benchmark processes")
	cmd.Flags().Int64Var(&samplesPerFile, "num-samples-per-file", 0, "samples per dataset file")
	cmd.Flags().Int64Var(&recordLength, "record-length-bytes", 0, "record length in bytes")
	cmd.Flags().Int64Var(&batchSize, "batch-size", 0, "reader batch size")
	for _, name := range []string{"client-host-memory-gb", "num-client-hosts", "num-processes", "num-samples-per-file", "record-length-bytes", "batch-size"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}
