package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/common"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/export"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/parse"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/report"
)

// ParseStage selects the report variant and runs the parse engine over a
// document's pages.
type ParseStage struct {
	Registry *report.Registry
	Logger   *slog.Logger
}

func NewParseStage(reg *report.Registry, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = report.NewRegistry()
	}
	return &ParseStage{Registry: reg, Logger: logger}
}

// Variant resolves name, or detects the variant from path when name is empty.
func (s *ParseStage) Variant(name, path string) (*report.Variant, error) {
	if name != "" {
		v, ok := s.Registry.Lookup(name)
		if !ok {
			return nil, common.NewAppError(common.CodeVariant,
				fmt.Sprintf("unknown variant %q (have %v)", name, s.Registry.Names()), common.ErrUnknownVariant)
		}
		return v, nil
	}
	v, err := s.Registry.Detect(path)
	if err != nil {
		return nil, common.NewAppError(common.CodeVariant, "cannot detect variant; pass --variant", fmt.Errorf("%w: %v", common.ErrUnknownVariant, err))
	}
	return v, nil
}

// Run parses pages with v and returns the finished tables and counters.
func (s *ParseStage) Run(v *report.Variant, pages [][]string, logger *slog.Logger) ([]export.Table, parse.Stats, error) {
	if logger == nil {
		logger = s.Logger
	}
	engine, err := parse.NewEngine(v, logger)
	if err != nil {
		return nil, parse.Stats{}, common.NewAppError(common.CodeVariant, "invalid variant "+v.Name, err)
	}
	sink := export.NewSink(v)
	stats := engine.Run(pages, sink)
	return sink.Tables(), stats, nil
}
