package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/ai"
	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
)

// Extractor produces a structured result for raw document text.
type Extractor interface {
	Extract(ctx context.Context, docType, text string) (ai.ExtractionResult, error)
}

// ImportService runs the extraction pipeline synchronously over an uploaded
// file so staff can preview a property import before committing anything. The
// bytes stay in memory and are never written to the blob store.
type ImportService struct {
	store      repository.Store
	extractor  Extractor
	maxChars   int
	inputChars int
	log        zerolog.Logger
}

// NewImportService builds the preview service with the pipeline's text limits.
func NewImportService(store repository.Store, extractor Extractor, maxChars, inputChars int, log zerolog.Logger) *ImportService {
	return &ImportService{store: store, extractor: extractor, maxChars: maxChars, inputChars: inputChars, log: log}
}

// Preview extracts structured fields from the uploaded file. Extraction
// outages degrade to an empty result with an alert, same as the async
// pipeline. Pattern-matched contract fields fill whatever the extractor
// leaves empty, and the run is recorded in the activity log.
func (s *ImportService) Preview(ctx context.Context, actorID uint, filename string, data []byte) (ai.ExtractionResult, error) {
	if len(data) == 0 {
		return ai.ExtractionResult{}, validationErr("empty_file")
	}
	text := ai.ExtractText(filename, data, s.maxChars)
	input := ai.PrepareInput(text, s.inputChars)
	result, err := s.extractor.Extract(ctx, classifyExtension(filename), input)
	if err != nil {
		s.log.Error().Err(err).Str("file", filename).Msg("import preview extraction failed")
		result = ai.Fallback("extraction_unavailable")
	}
	if result.Fields == nil {
		result.Fields = map[string]any{}
	}
	for key, value := range ai.QuickContractFields(text) {
		if existing, ok := result.Fields[key]; !ok || existing == nil || existing == "" {
			result.Fields[key] = value
		}
	}
	if err := logActivity(ctx, s.store, "property_import_preview", models.ActorStaff, &actorID, nil,
		models.JSONMap{"file_name": filename}); err != nil {
		return ai.ExtractionResult{}, err
	}
	return result, nil
}
