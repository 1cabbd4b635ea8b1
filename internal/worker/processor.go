// Package worker runs the document extraction pipeline, either inline with
// the request or behind a queue.
package worker

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/ai"
	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
)

//go:generate mockgen -source=processor.go -destination=mocks/extractor_mock.go -package=mocks

// Extractor produces a structured result for one document's text.
type Extractor interface {
	Extract(ctx context.Context, docType, text string) (ai.ExtractionResult, error)
}

// BlobReader loads stored file contents by path.
type BlobReader interface {
	Read(path string) ([]byte, error)
}

// Processor runs one document through text extraction and the extraction
// service, storing the result for operator review.
type Processor struct {
	store      repository.Store
	blobs      BlobReader
	extractor  Extractor
	maxChars   int
	inputChars int
	log        zerolog.Logger
}

func NewProcessor(store repository.Store, blobs BlobReader, extractor Extractor, maxChars, inputChars int, log zerolog.Logger) *Processor {
	return &Processor{
		store:      store,
		blobs:      blobs,
		extractor:  extractor,
		maxChars:   maxChars,
		inputChars: inputChars,
		log:        log,
	}
}

// Process loads the document, runs extraction and records the result. A
// failing extraction degrades to an empty result with an alert instead of
// leaving the document stuck in "queued".
func (p *Processor) Process(ctx context.Context, documentID uint) error {
	doc, err := p.store.Documents().Get(ctx, documentID)
	if err != nil {
		return err
	}

	var result ai.ExtractionResult
	data, err := p.blobs.Read(doc.Path)
	if err != nil {
		p.log.Error().Err(err).Uint("document_id", doc.ID).Msg("blob read failed")
		result = ai.Fallback("unreadable_file")
	} else {
		text := ai.ExtractText(doc.Name, data, p.maxChars)
		input := ai.PrepareInput(text, p.inputChars)
		result, err = p.extractor.Extract(ctx, doc.DocType, input)
		if err != nil {
			p.log.Error().Err(err).Uint("document_id", doc.ID).Msg("extraction failed")
			result = ai.Fallback("extraction_unavailable")
		}
	}

	return p.store.Atomically(ctx, func(tx repository.Store) error {
		ext := &models.DocumentExtraction{
			DocumentID: doc.ID,
			DocType:    result.DocType,
			Fields:     models.JSONMap(result.Fields),
			Summary:    result.Summary,
			Alerts:     models.StringList(result.Alerts),
			Confidence: result.Confidence,
		}
		if ext.DocType == "" {
			ext.DocType = doc.DocType
		}
		if ext.Fields == nil {
			ext.Fields = models.JSONMap{}
		}
		if ext.Alerts == nil {
			ext.Alerts = models.StringList{}
		}
		if err := tx.Extractions().Create(ctx, ext); err != nil {
			return err
		}
		doc.DocType = ext.DocType
		doc.Status = models.DocumentStatusNeedsReview
		if err := tx.Documents().Update(ctx, doc); err != nil {
			return err
		}
		entry := &models.ActivityEntry{
			Event:     "document_processed",
			ActorType: models.ActorSystem,
			Detail: models.JSONMap{
				"document_id": doc.ID,
				"doc_type":    ext.DocType,
				"confidence":  ext.Confidence,
			},
		}
		return tx.Activity().Append(ctx, entry)
	})
}
