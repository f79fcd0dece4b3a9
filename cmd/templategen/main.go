package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/belegwerk/invoice-extractor/internal/common"
	"github.com/belegwerk/invoice-extractor/internal/llm"
	"github.com/belegwerk/invoice-extractor/internal/llm/openai"
	"github.com/belegwerk/invoice-extractor/internal/template"
)

func main() {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("templategen")
	var (
		input       = fs.StringLong("input", "", "OCR text file to derive a template from")
		issuerHint  = fs.StringLong("issuer", "", "issuer name hint passed to the model")
		templateDir = fs.StringLong("templates", "", "template directory to save into (default from TEMPLATE_DIR)")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("TEMPLATEGEN")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *input == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --input is required")
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if *templateDir != "" {
		cfg.Templates.Dir = *templateDir
	}
	if err := cfg.ValidateForGeneration(); err != nil {
		logger.Error("config.invalid", "error", err)
		os.Exit(1)
	}

	text, err := os.ReadFile(*input)
	if err != nil {
		logger.Error("input.read_failed", "path", *input, "error", err)
		os.Exit(1)
	}

	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout)
	defer cancel()

	tpl, err := client.Generate(ctx, llm.GenerateRequest{
		InvoiceText: string(text),
		IssuerHint:  *issuerHint,
	})
	if err != nil {
		logger.Error("generate.failed", "error", err)
		os.Exit(1)
	}

	registry := template.NewRegistry(cfg.Templates.Dir, logger)
	path, err := registry.Save(tpl)
	if err != nil {
		logger.Error("generate.save_failed", "issuer", tpl.Issuer, "error", err)
		os.Exit(1)
	}

	logger.Info("generate.done", "issuer", tpl.Issuer, "path", path)
	fmt.Println(path)
}
