// Package main provides the cleanspeech command line entry point.
// It takes a spoken-word recording, removes filler words and dead air,
// levels the voice, and writes a cleaned MP3.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tanush/cleanspeech/internal/bootstrap"
	"github.com/tanush/cleanspeech/internal/config"
	"github.com/tanush/cleanspeech/internal/job"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	denoise := flag.Bool("denoise", false, "apply noise reduction before editing")
	upload := flag.Bool("upload", false, "upload the result to S3 instead of keeping it locally")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <audio file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return fmt.Errorf("expected exactly one input file, got %d", flag.NArg())
	}
	inputPath := flag.Arg(0)

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create structured logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting cleanspeech",
		slog.String("input", inputPath),
		slog.String("gemini_model", cfg.GeminiModel),
		slog.String("temp_dir", cfg.TempDir),
		slog.Bool("llm_fillers", cfg.LLMFillers),
		slog.Bool("s3_enabled", cfg.S3Enabled()),
	)

	// Initialize dependencies using bootstrap
	deps, err := bootstrap.NewDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	// Ctrl-C cancels the run between pipeline stages.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := deps.CleanService.Process(ctx, job.CleanInput{
		InputPath: inputPath,
		Denoise:   *denoise || cfg.Denoise,
		Upload:    *upload,
	})
	if err != nil {
		return fmt.Errorf("clean %s: %w", inputPath, err)
	}

	fmt.Printf("job %s: %s\n", out.JobID, out.Status)
	fmt.Printf("  words: %d, fillers removed: %d, pauses tightened: %d\n",
		out.Metrics.WordCount, out.Metrics.FillerRemovals, out.Metrics.PauseCompressions)
	fmt.Printf("  duration: %.1fs -> %.1fs (%.1fs saved)\n",
		out.Metrics.InputDurationSec, out.Metrics.OutputDurationSec, out.Metrics.SecondsSaved)
	if out.OutputURL != "" {
		fmt.Printf("  uploaded: %s\n", out.OutputURL)
	} else {
		fmt.Printf("  output: %s\n", out.OutputPath)
	}

	return nil
}
