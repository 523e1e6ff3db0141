// Package export serializes normalized documents to their output artifact.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"datanorm/internal/config"
	"datanorm/internal/logger"
)

// Export errors.
var (
	ErrUnsupportedFormat   = errors.New("unsupported output format")
	ErrUnsupportedDocument = errors.New("document type cannot be exported")
)

// Options controls how a document is written.
type Options struct {
	Format       string
	Indent       int
	CreateBackup bool
}

// OptionsFromConfig builds writer options from the output section.
func OptionsFromConfig(out config.OutputConfig) Options {
	return Options{
		Format:       out.Format,
		Indent:       out.Indent,
		CreateBackup: out.CreateBackup,
	}
}

// Writer writes normalized documents.
type Writer struct {
	logger *logger.Logger
	opts   Options
}

// NewWriter creates a writer. A nil logger discards output.
func NewWriter(opts Options, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.Discard()
	}

	if opts.Format == "" {
		opts.Format = config.FormatJSON
	}

	return &Writer{logger: log, opts: opts}
}

// Encode serializes doc in the configured format.
func (w *Writer) Encode(out io.Writer, doc interface{}) error {
	switch w.opts.Format {
	case config.FormatJSON:
		return encodeJSON(out, doc, w.opts.Indent)
	case config.FormatYAML:
		return encodeYAML(out, doc, w.opts.Indent)
	case config.FormatXLSX:
		return encodeXLSX(out, doc)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, w.opts.Format)
	}
}

// WriteFile writes doc to path. The document is encoded into a temporary file
// next to path and renamed into place, so a failed run never leaves a
// truncated output behind.
func (w *Writer) WriteFile(path string, doc interface{}) error {
	var buf bytes.Buffer
	if err := w.Encode(&buf, doc); err != nil {
		return fmt.Errorf("failed to encode %s output: %w", w.opts.Format, err)
	}

	if err := WriteAtomic(path, buf.Bytes(), w.opts.CreateBackup); err != nil {
		return err
	}

	w.logger.Info("output written", "path", path, "format", w.opts.Format, "bytes", buf.Len())

	return nil
}

// WriteAtomic replaces path with data via a temp file and rename.
// With backup set, an existing file is kept as path + ".bak".
func WriteAtomic(path string, data []byte, backup bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpPath := tmp.Name()

	// Removing after a successful rename fails harmlessly.
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}

	if backup {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := os.Rename(path, path+".bak"); err != nil {
				return fmt.Errorf("failed to back up existing output: %w", err)
			}
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}

func encodeJSON(out io.Writer, doc interface{}, indent int) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}

	return enc.Encode(doc)
}

func encodeYAML(out io.Writer, doc interface{}, indent int) error {
	enc := yaml.NewEncoder(out)

	if indent > 0 {
		enc.SetIndent(indent)
	}

	if err := enc.Encode(doc); err != nil {
		return err
	}

	return enc.Close()
}
