// Package main provides the normalizer command-line tool for restructuring flat datasets.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"datanorm/internal/config"
	"datanorm/internal/dataset"
	"datanorm/internal/export"
	"datanorm/internal/formatter"
	"datanorm/internal/logger"
	"datanorm/internal/models"
	"datanorm/internal/normalizer"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	datasetKind := flag.String("dataset", "", "Dataset kind: auto, repairs or music")
	inputPath := flag.String("input", "", "Path to input file (e.g., dataset_reparacoes.json)")
	outputPath := flag.String("output", "", "Path to output file (default: new_dataset.json or new_music_dataset.json by dataset)")
	format := flag.String("format", "", "Output format: json, yaml or xlsx (default: from output extension)")
	reportPath := flag.String("report", "", "Also write a markdown summary report to this path")
	backup := flag.Bool("backup", false, "Keep the previous output as <output>.bak")
	help := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	configPath := *configFile
	if configPath == "" {
		if _, statErr := os.Stat(config.DefaultConfigPath); statErr == nil {
			configPath = config.DefaultConfigPath
		}
	}

	if configPath != "" {
		fmt.Printf("⚙️  Loading configuration from: %s\n", configPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v\n", err)
	}

	applyFlags(cfg, *datasetKind, *inputPath, *outputPath, *format, *reportPath, *backup)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid options: %v\n", err)
	}

	n := cfg.Normalizer
	appLogger := logger.NewLogger(n.Logging.Level).With("run", uuid.NewString())

	fmt.Printf("📂 Reading: %s\n", n.Input)

	data, kind, err := dataset.Load(n.Input, models.DatasetKind(n.Dataset))
	if err != nil {
		log.Fatalf("❌ Error loading dataset: %v\n", err)
	}

	fmt.Printf("🔍 Dataset: %s\n", kind)

	if _, err := cfg.ResolveOutputPath(string(kind)); err != nil {
		log.Fatalf("❌ Invalid output path: %v\n", err)
	}

	n = cfg.Normalizer

	processor := normalizer.NewProcessor(appLogger)
	processor.SetWarnOnConflicts(cfg.Features.WarnOnConflicts)

	result, err := processor.Process(data)
	if err != nil {
		log.Fatalf("❌ Error normalizing dataset: %v\n", err)
	}

	for _, c := range result.Summary.Collections() {
		fmt.Printf("📊 %s: %d\n", c.Name, c.Count)
	}

	writer := export.NewWriter(export.OptionsFromConfig(n.Output), appLogger)
	if err := writer.WriteFile(n.Output.Path, result.Document); err != nil {
		log.Fatalf("❌ Error writing output: %v\n", err)
	}

	if n.Report.Enabled {
		report, err := formatter.RenderReport(result.Summary, n.Input)
		if err != nil {
			log.Fatalf("❌ Error rendering report: %v\n", err)
		}

		if err := export.WriteAtomic(n.Report.Path, []byte(report), false); err != nil {
			log.Fatalf("❌ Error writing report: %v\n", err)
		}

		fmt.Printf("📝 Report: %s\n", n.Report.Path)
	}

	fmt.Printf("✅ Saved to: %s\n", n.Output.Path)
}

// applyFlags lets explicit flags win over file and environment values.
func applyFlags(cfg *config.Config, kind, input, output, format, report string, backup bool) {
	n := &cfg.Normalizer

	if kind != "" {
		n.Dataset = kind
	}

	if input != "" {
		n.Input = input
	}

	if output != "" {
		n.Output.Path = output
		n.Output.Format = config.FormatFromPath(output, n.Output.Format)
	}

	if format != "" {
		n.Output.Format = format
	}

	if report != "" {
		n.Report.Enabled = true
		n.Report.Path = report
	}

	if backup {
		n.Output.CreateBackup = true
	}
}

func printUsage() {
	fmt.Println("Usage: ./bin/normalizer [OPTIONS]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ./bin/normalizer -input dataset_reparacoes.json -output new_dataset.json")
	fmt.Println("  ./bin/normalizer -input music_dataset.json -output new_music_dataset.xlsx -report report.md")
}
