// Package normalizer restructures flat datasets into deduplicated,
// identifier-linked documents.
package normalizer

import (
	"fmt"

	"datanorm/internal/logger"
	"datanorm/internal/models"
)

// Result is the outcome of a processing run.
type Result struct {
	Document interface{}
	Summary  *Summary
	Kind     models.DatasetKind
}

// Processor handles data processing and transformation.
type Processor struct {
	validator       *Validator
	transformer     *Transformer
	logger          *logger.Logger
	warnOnConflicts bool
}

// NewProcessor creates a new processor instance. A nil logger discards output.
func NewProcessor(log *logger.Logger) *Processor {
	if log == nil {
		log = logger.Discard()
	}

	return &Processor{
		validator:       NewValidator(),
		transformer:     NewTransformer(),
		logger:          log,
		warnOnConflicts: true,
	}
}

// SetWarnOnConflicts toggles the per-code warning for conflicting operations.
func (p *Processor) SetWarnOnConflicts(enabled bool) {
	p.warnOnConflicts = enabled
}

// Process transforms a raw dataset into normalized format.
func (p *Processor) Process(rawData interface{}) (*Result, error) {
	// 1. Validate the input data
	if err := p.validator.Validate(rawData); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// 2. Transform the data
	doc, summary, err := p.transformer.Transform(rawData)
	if err != nil {
		return nil, fmt.Errorf("transformation failed: %w", err)
	}

	p.report(summary)

	return &Result{
		Document: doc,
		Summary:  summary,
		Kind:     summary.Kind,
	}, nil
}

func (p *Processor) report(s *Summary) {
	args := []any{"dataset", string(s.Kind), "records", s.Records}
	for _, c := range s.Collections() {
		args = append(args, c.Name, c.Count)
	}

	p.logger.Info("dataset normalized", args...)

	if p.warnOnConflicts {
		for _, code := range s.ConflictingOperations {
			p.logger.Warn("operation redefined with different details, keeping first", "code", code.String())
		}
	}

	for _, name := range s.UnmatchedInstruments {
		p.logger.Debug("instrument not found in catalog", "name", name)
	}
}
