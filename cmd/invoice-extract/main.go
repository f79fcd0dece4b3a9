package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/belegwerk/invoice-extractor/internal/common"
	"github.com/belegwerk/invoice-extractor/internal/export"
	"github.com/belegwerk/invoice-extractor/internal/extract"
	"github.com/belegwerk/invoice-extractor/internal/llm/openai"
	"github.com/belegwerk/invoice-extractor/internal/template"
)

func main() {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("invoice-extract")
	var (
		input        = fs.StringLong("input", "", "OCR text file or directory of .txt files to process")
		templateDir  = fs.StringLong("templates", "", "template directory (default from TEMPLATE_DIR)")
		out          = fs.StringLong("out", "", "write an XLSX summary of all results to this path")
		autoGenerate = fs.BoolLong("auto-generate", "generate a template via the LLM when none matches")
		workers      = fs.IntLong("workers", 4, "concurrent documents in directory mode")
		watch        = fs.BoolLong("watch", "reload templates on directory changes while processing")
		verbose      = fs.BoolLong("verbose", "debug logging")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("INVOICE_EXTRACT")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *templateDir != "" {
		cfg.Templates.Dir = *templateDir
	}

	if *input == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --input is required")
		os.Exit(1)
	}

	registry := template.NewRegistry(cfg.Templates.Dir, logger)

	opts := []extract.Option{extract.WithLogger(logger)}
	if *autoGenerate {
		if err := cfg.ValidateForGeneration(); err != nil {
			logger.Error("config.invalid", "error", err)
			os.Exit(1)
		}
		client := openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		opts = append(opts, extract.WithGenerator(client))
	}
	engine := extract.NewEngine(registry, opts...)

	ctx := context.Background()
	if *watch || cfg.Templates.Watch {
		go func() {
			if err := registry.Watch(ctx, cfg.Templates.WatchDebounce); err != nil && ctx.Err() == nil {
				logger.Error("registry.watch.stopped", "error", err)
			}
		}()
	}

	paths, err := collectInputs(*input)
	if err != nil {
		logger.Error("input.resolve_failed", "input", *input, "error", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		logger.Error("input.empty", "input", *input)
		os.Exit(1)
	}

	rows := processAll(ctx, engine, paths, *workers, *autoGenerate, logger)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, row := range rows {
		if len(paths) > 1 {
			fmt.Printf("# %s\n", row.Source)
		}
		if err := enc.Encode(row.Result); err != nil {
			logger.Error("result.encode_failed", "source", row.Source, "error", err)
		}
	}

	if *out != "" {
		svc := export.NewService(logger)
		xlsx, err := svc.ResultsXLSX(rows)
		if err != nil {
			logger.Error("export.failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
			logger.Error("export.write_failed", "path", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("export.written", "path", *out, "rows", len(rows))
	}
}

// collectInputs resolves the input flag to a sorted list of text files.
func collectInputs(input string) ([]string, error) {
	st, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return []string{input}, nil
	}
	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(input, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// processAll runs each document through the engine, fanning out in directory
// mode. Each extraction is independent; the registry synchronizes its own
// reloads, so workers need no coordination beyond the fan-in.
func processAll(ctx context.Context, engine *extract.Engine, paths []string, workers int, autoGenerate bool, logger *slog.Logger) []export.Row {
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	start := time.Now()
	rows := make([]export.Row, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path := paths[i]
				text, err := os.ReadFile(path)
				if err != nil {
					logger.Error("input.read_failed", "path", path, "error", err)
					continue
				}
				rows[i] = export.Row{
					Source: path,
					Result: engine.Extract(ctx, string(text), autoGenerate),
				}
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := rows[:0]
	for _, row := range rows {
		if row.Result != nil {
			out = append(out, row)
		}
	}
	logger.Info("batch.done",
		"documents", len(out),
		"workers", workers,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out
}
