// Package textsource turns report files into ordered pages of text lines.
package textsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/common"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/normalize"
)

// Backends.
const (
	BackendAuto      = "auto"
	BackendPdftotext = "pdftotext"
	BackendNative    = "native"
	BackendText      = "text"
)

type Config struct {
	Backend   string        // auto | pdftotext | native | text; empty -> auto
	Pdftotext string        // binary name or absolute path; empty -> "pdftotext"
	Timeout   time.Duration // per document; 0 = none
	MaxPages  int           // 0 = no limit
}

// Document is the extracted text of one input file.
type Document struct {
	Path     string
	Format   string // constants.PDF | constants.TEXT
	Method   string // "pdftotext" | "native" | "text"
	Pages    [][]string
	Duration time.Duration
	Warnings []string
}

// Lines returns the total number of lines across pages.
func (d Document) Lines() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p)
	}
	return n
}

type Source struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return NewWithRunner(cfg, execRunner{logger: logger}, logger)
}

// NewWithRunner is New with an injected command runner.
func NewWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendAuto
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Source{cfg: cfg, runner: runner, logger: logger}
}

// Extract picks a strategy from the backend and the file extension. Any
// failure is an unreadable-input error.
func (s *Source) Extract(ctx context.Context, path string) (Document, error) {
	start := time.Now()
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	format := constants.MapExtToFormat(ext)
	if s.cfg.Backend == BackendText {
		format = constants.TEXT
	}
	s.logger.Debug("textsource.extract.start", "path", path, "backend", s.cfg.Backend, "ext", ext)

	doc := Document{Path: path, Format: format}
	var err error
	switch format {
	case constants.TEXT:
		doc.Method = BackendText
		doc.Pages, err = readTextFile(path)
	case constants.PDF:
		err = s.extractPDF(ctx, path, &doc)
	default:
		err = fmt.Errorf("unsupported extension: %q", ext)
	}
	doc.Duration = time.Since(start)
	if err != nil {
		s.logger.Error("textsource.extract.failed", "path", path, "method", doc.Method, "error", err)
		return doc, common.InputError(path, err)
	}

	if s.cfg.MaxPages > 0 && len(doc.Pages) > s.cfg.MaxPages {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("truncated to %d of %d pages", s.cfg.MaxPages, len(doc.Pages)))
		doc.Pages = doc.Pages[:s.cfg.MaxPages]
	}
	s.logger.Debug("textsource.extract.ok",
		"path", path,
		"method", doc.Method,
		"pages", len(doc.Pages),
		"lines", doc.Lines(),
		"elapsed_ms", doc.Duration.Milliseconds(),
	)
	return doc, nil
}

func (s *Source) extractPDF(ctx context.Context, path string, doc *Document) error {
	switch s.cfg.Backend {
	case BackendNative:
		doc.Method = BackendNative
		pages, err := nativePages(path)
		doc.Pages = pages
		return err
	case BackendPdftotext:
		doc.Method = BackendPdftotext
		pages, warns, err := s.pdfToText(ctx, path)
		doc.Pages, doc.Warnings = pages, warns
		return err
	}

	doc.Method = BackendPdftotext
	pages, warns, err := s.pdfToText(ctx, path)
	if err == nil {
		doc.Pages, doc.Warnings = pages, warns
		return nil
	}
	if !errors.Is(err, exec.ErrNotFound) {
		doc.Warnings = warns
		return err
	}
	s.logger.Warn("pdftotext not available, using native reader", "path", path, "bin", s.cfg.Pdftotext)
	doc.Method = BackendNative
	doc.Warnings = append(doc.Warnings, "pdftotext not found; used native reader")
	doc.Pages, err = nativePages(path)
	return err
}

// pdfToText runs pdftotext in layout mode; pages are separated by form feeds.
func (s *Source) pdfToText(ctx context.Context, path string) ([][]string, []string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := s.runner.Run(ctx, s.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		var warns []string
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			warns = append(warns, msg)
		}
		return nil, warns, fmt.Errorf("pdftotext: %w", err)
	}
	return normalize.Pages(string(out)), nil, nil
}

func readTextFile(path string) ([][]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return normalize.Pages(string(b)), nil
}
