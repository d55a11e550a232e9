package pipeline

import (
	"context"
	"log/slog"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/textsource"
)

// TextSource is the text-extraction collaborator.
type TextSource interface {
	Extract(ctx context.Context, path string) (textsource.Document, error)
}

// TextStage turns an input file into pages of lines.
type TextStage struct {
	Source TextSource
	Logger *slog.Logger
}

func NewTextStage(src TextSource, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{Source: src, Logger: logger}
}

func (s *TextStage) Run(ctx context.Context, path string) (textsource.Document, error) {
	doc, err := s.Source.Extract(ctx, path)
	if err != nil {
		return doc, err
	}
	for _, w := range doc.Warnings {
		s.Logger.Warn("pipeline.text.warning", "path", path, "warning", w)
	}
	s.Logger.Info("pipeline.text.ok",
		"path", path,
		"method", doc.Method,
		"pages", len(doc.Pages),
		"lines", doc.Lines(),
		"elapsed_ms", doc.Duration.Milliseconds(),
	)
	return doc, nil
}
