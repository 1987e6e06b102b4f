package executor

import (
	"context"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/pipeline"
)

// InlineExecutor вызывает функции пайплайна напрямую в вызывающей горутине
type InlineExecutor struct{}

func NewInlineExecutor() *InlineExecutor {
	return &InlineExecutor{}
}

func (e *InlineExecutor) Mode() string {
	return ModeInline
}

func (e *InlineExecutor) ParseJSON(_ context.Context, raw []byte) ([]domain.RawItem, error) {
	return pipeline.ParseItems(raw)
}

func (e *InlineExecutor) ProcessRegionData(_ context.Context, raw []byte, dict domain.TermDictionary) (*domain.RegionData, error) {
	return pipeline.ProcessRegions(raw, dict)
}

func (e *InlineExecutor) ProcessMapData(_ context.Context, in domain.MergeInput) (*domain.MapData, error) {
	return pipeline.Merge(in), nil
}

func (e *InlineExecutor) ProcessTranslations(_ context.Context, csvs []string) (*domain.TranslationTables, error) {
	return pipeline.BuildTranslationTables(csvs...), nil
}
