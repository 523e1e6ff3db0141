// Package main provides the report tool: it renders a signed summary for a
// normalized document, or verifies the signature of an existing report.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"datanorm/internal/dataset"
	"datanorm/internal/export"
	"datanorm/internal/formatter"
	"datanorm/internal/normalizer"
	"datanorm/internal/validator"
	"datanorm/pkg/metadata"
)

func main() {
	inputPath := flag.String("input", "", "Path to a normalized document (e.g., new_dataset.json)")
	outputPath := flag.String("output", "report.md", "Path to write the markdown report")
	verifyPath := flag.String("verify", "", "Validate the structure and hash of an existing report instead")
	write := flag.Bool("write", true, "Write the report (false prints it to stdout)")

	flag.Parse()

	if *verifyPath != "" {
		verify(*verifyPath)
		return
	}

	if *inputPath == "" {
		fmt.Println("Usage: report -input <new_dataset.json> [-output report.md]")
		fmt.Println("       report -verify <report.md>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Printf("📂 Reading: %s\n", *inputPath)

	doc, kind, err := dataset.LoadDocument(*inputPath)
	if err != nil {
		log.Fatalf("❌ Error loading document: %v\n", err)
	}

	fmt.Printf("🔍 Dataset: %s\n", kind)

	summary, err := normalizer.Summarize(doc)
	if err != nil {
		log.Fatalf("❌ Error summarizing document: %v\n", err)
	}

	report, err := formatter.RenderReport(summary, *inputPath)
	if err != nil {
		log.Fatalf("❌ Error rendering report: %v\n", err)
	}

	if !*write {
		fmt.Println()
		fmt.Print(report)

		return
	}

	if err := export.WriteAtomic(*outputPath, []byte(report), false); err != nil {
		log.Fatalf("❌ Error writing report: %v\n", err)
	}

	fmt.Printf("✅ Saved to: %s\n", *outputPath)
}

func verify(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("❌ Error reading file: %v\n", err)
	}

	fmt.Printf("🔍 Verifying: %s\n", path)

	result := validator.NewReportValidator().Validate(string(content))
	result.PrintErrors()
	result.PrintWarnings()

	fmt.Println(result.String())

	if !result.IsValid {
		os.Exit(1)
	}

	meta, _ := metadata.Extract(string(content))
	fmt.Printf("✅ Hash verified (version %s, signed %s)\n", meta.Version, meta.LastModify.Format("2006-01-02 15:04:05"))
}
