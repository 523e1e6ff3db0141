// Package validator checks the structure and integrity of summary reports.
package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"datanorm/internal/formatter"
	"datanorm/pkg/metadata"
)

// Validation errors.
var (
	ErrMissingTitle     = errors.New("report title is missing")
	ErrMissingSeparator = errors.New("table header is not followed by a separator row")
	ErrColumnMismatch   = errors.New("row has a different number of cells than its header")
	ErrInvalidCount     = errors.New("count is not a non-negative integer")
)

// countPattern matches the value cells of the collections table.
var countPattern = regexp.MustCompile(`^\d+$`)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Err     error
	Field   string
	Value   string
	Pattern string
	Message string
	Line    int
	Column  int
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats counts the table rows that were checked.
type ValidationStats struct {
	TotalRows   int
	ValidRows   int
	InvalidRows int
}

// ReportValidator validates rendered summary reports.
type ReportValidator struct{}

// NewReportValidator creates a new validator.
func NewReportValidator() *ReportValidator {
	return &ReportValidator{}
}

// Validate runs the structural and integrity checks on a report.
func (v *ReportValidator) Validate(content string) *ValidationResult {
	result := v.ValidateStructure(content)

	integrity := v.ValidateIntegrity(content)
	result.Errors = append(result.Errors, integrity.Errors...)
	result.Warnings = append(result.Warnings, integrity.Warnings...)
	result.IsValid = result.IsValid && integrity.IsValid

	return result
}

// ValidateStructure checks the title and every table of the report body.
func (v *ReportValidator) ValidateStructure(content string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	_, body := metadata.Extract(content)
	lines := strings.Split(body, "\n")

	if !hasTitle(lines) {
		result.add(ValidationError{Err: ErrMissingTitle, Message: ErrMissingTitle.Error()})
	}

	section := ""
	headerCells := -1
	rowNum := 0

	for i, line := range lines {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "## ") {
			section = strings.TrimPrefix(trimmed, "## ")
		}

		if !isTableRow(trimmed) {
			headerCells = -1
			rowNum = 0

			continue
		}

		cells := formatter.SplitCells(trimmed)
		rowNum++

		switch {
		case rowNum == 1:
			headerCells = len(cells)
			continue
		case rowNum == 2:
			if !isSeparator(cells) {
				result.add(ValidationError{
					Err:     ErrMissingSeparator,
					Line:    lineNum,
					Column:  1,
					Value:   truncate(trimmed, 40),
					Message: ErrMissingSeparator.Error(),
				})
			}

			continue
		}

		result.Stats.TotalRows++

		errs := v.validateRow(cells, headerCells, section, lineNum)
		if len(errs) > 0 {
			result.Stats.InvalidRows++

			for _, e := range errs {
				result.add(e)
			}
		} else {
			result.Stats.ValidRows++
		}
	}

	return result
}

// ValidateIntegrity checks the report against the hash in its metadata block.
func (v *ReportValidator) ValidateIntegrity(content string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	valid, err := metadata.Verify(content)
	if !valid {
		result.add(ValidationError{
			Err:     err,
			Message: fmt.Sprintf("integrity check failed: %v", err),
		})

		return result
	}

	if meta, _ := metadata.Extract(content); meta != nil && !meta.Validation {
		result.Warnings = append(result.Warnings,
			"report is signed VALIDATION: FALSE (conflicting operations or unmatched instruments)")
	}

	return result
}

func (v *ReportValidator) validateRow(cells []string, headerCells int, section string, lineNum int) []ValidationError {
	var errs []ValidationError

	if len(cells) != headerCells {
		errs = append(errs, ValidationError{
			Err:     ErrColumnMismatch,
			Line:    lineNum,
			Column:  1,
			Value:   strings.Join(cells, " | "),
			Message: fmt.Sprintf("%s: got %d, want %d", ErrColumnMismatch, len(cells), headerCells),
		})

		return errs
	}

	if section == "Collections" && len(cells) == 2 && !countPattern.MatchString(cells[1]) {
		errs = append(errs, ValidationError{
			Err:     ErrInvalidCount,
			Field:   cells[0],
			Value:   cells[1],
			Pattern: countPattern.String(),
			Line:    lineNum,
			Column:  2,
			Message: ErrInvalidCount.Error(),
		})
	}

	return errs
}

func (r *ValidationResult) add(e ValidationError) {
	r.Errors = append(r.Errors, e)
	r.IsValid = false
}

func hasTitle(lines []string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		return trimmed == formatter.ReportTitle
	}

	return false
}

func isTableRow(line string) bool {
	return strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|")
}

func isSeparator(cells []string) bool {
	for _, cell := range cells {
		if cell == "" || strings.Trim(cell, "-:") != "" {
			return false
		}
	}

	return len(cells) > 0
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}

	return s
}

// String returns string representation of validation result.
func (r *ValidationResult) String() string {
	status := "✅ VALID"
	if !r.IsValid {
		status = "❌ INVALID"
	}

	return fmt.Sprintf(
		"%s | Rows: %d | Valid: %d | Invalid: %d | Warnings: %d",
		status,
		r.Stats.TotalRows,
		r.Stats.ValidRows,
		r.Stats.InvalidRows,
		len(r.Warnings),
	)
}

// PrintErrors prints validation errors in readable format.
func (r *ValidationResult) PrintErrors() {
	if len(r.Errors) == 0 {
		return
	}

	fmt.Println("❌ Validation Errors:")

	for _, err := range r.Errors {
		if err.Line > 0 {
			fmt.Printf("  Line %d, Col %d", err.Line, err.Column)

			if err.Field != "" {
				fmt.Printf(" [%s]", err.Field)
			}

			fmt.Printf(": %s\n", err.Message)

			if err.Value != "" {
				fmt.Printf("    Found: %q\n", err.Value)
			}

			if err.Pattern != "" {
				fmt.Printf("    Expected pattern: %s\n", err.Pattern)
			}
		} else {
			fmt.Printf("  %s\n", err.Message)
		}
	}
}

// PrintWarnings prints validation warnings.
func (r *ValidationResult) PrintWarnings() {
	if len(r.Warnings) == 0 {
		return
	}

	fmt.Println("⚠️  Validation Warnings:")

	for _, warn := range r.Warnings {
		fmt.Printf("  %s\n", warn)
	}
}
