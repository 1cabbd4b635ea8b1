package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
)

// DocumentService owns the upload, processing and review lifecycle of
// property documents.
type DocumentService struct {
	store      repository.Store
	blobs      BlobStore
	dispatcher Dispatcher
	log        zerolog.Logger
}

func NewDocumentService(store repository.Store, blobs BlobStore, dispatcher Dispatcher, log zerolog.Logger) *DocumentService {
	return &DocumentService{store: store, blobs: blobs, dispatcher: dispatcher, log: log}
}

// Upload stores the file, records the document and queues it for extraction.
// A dispatch failure degrades to status "uploaded" instead of failing the
// upload.
func (s *DocumentService) Upload(ctx context.Context, actorID, propertyID uint, filename string, data []byte) (*models.Document, error) {
	if strings.TrimSpace(filename) == "" || len(data) == 0 {
		return nil, validationErr("empty_file")
	}
	if _, err := s.store.Properties().Get(ctx, propertyID); err != nil {
		return nil, notFoundErr("property_not_found")
	}
	saved, err := s.blobs.Save("doc", filename, data)
	if err != nil {
		return nil, err
	}
	doc := &models.Document{
		PropertyID: propertyID,
		Name:       filename,
		Path:       saved.Path,
		Kind:       "property_document",
		Status:     models.DocumentStatusQueued,
		DocType:    classifyExtension(filename),
	}
	err = s.store.Atomically(ctx, func(tx repository.Store) error {
		if err := tx.Documents().Create(ctx, doc); err != nil {
			return err
		}
		return logActivity(ctx, tx, "document_uploaded", models.ActorStaff, &actorID, nil,
			models.JSONMap{"document_id": doc.ID, "property_id": propertyID, "name": filename})
	})
	if err != nil {
		return nil, err
	}
	if err := s.dispatcher.Dispatch(ctx, doc.ID); err != nil {
		s.log.Error().Err(err).Uint("document_id", doc.ID).Msg("extraction dispatch failed")
		doc.Status = models.DocumentStatusUploaded
		if uerr := s.store.Documents().Update(ctx, doc); uerr != nil {
			return nil, uerr
		}
	}
	return doc, nil
}

// Process re-queues a document for extraction. Unlike Upload, a dispatch
// failure surfaces so the caller can report the queue outage.
func (s *DocumentService) Process(ctx context.Context, id uint) (*models.Document, error) {
	doc, err := s.store.Documents().Get(ctx, id)
	if err != nil {
		return nil, notFoundErr("not_found")
	}
	doc.Status = models.DocumentStatusQueued
	if err := s.store.Documents().Update(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.dispatcher.Dispatch(ctx, doc.ID); err != nil {
		doc.Status = models.DocumentStatusUploaded
		if uerr := s.store.Documents().Update(ctx, doc); uerr != nil {
			s.log.Error().Err(uerr).Uint("document_id", doc.ID).Msg("status rollback failed")
		}
		return nil, unavailableErr("queue_unavailable")
	}
	return doc, nil
}

// ReviewInput carries operator corrections to an extraction.
type ReviewInput struct {
	DocType string
	Fields  models.JSONMap
	Summary string
}

// Review stores operator corrections and confirms the document.
func (s *DocumentService) Review(ctx context.Context, actorID, documentID uint, in ReviewInput) (*models.DocumentExtraction, error) {
	doc, err := s.store.Documents().Get(ctx, documentID)
	if err != nil {
		return nil, notFoundErr("not_found")
	}
	ext, err := s.store.Extractions().GetByDocument(ctx, documentID)
	if err != nil {
		return nil, notFoundErr("extraction_not_found")
	}
	if in.DocType != "" {
		ext.DocType = in.DocType
		doc.DocType = in.DocType
	}
	if in.Fields != nil {
		ext.Fields = in.Fields
	}
	if in.Summary != "" {
		ext.Summary = in.Summary
	}
	err = s.store.Atomically(ctx, func(tx repository.Store) error {
		if err := tx.Extractions().Update(ctx, ext); err != nil {
			return err
		}
		doc.Status = models.DocumentStatusConfirmed
		if err := tx.Documents().Update(ctx, doc); err != nil {
			return err
		}
		return logActivity(ctx, tx, "document_reviewed", models.ActorStaff, &actorID, nil,
			models.JSONMap{"document_id": doc.ID, "doc_type": ext.DocType})
	})
	if err != nil {
		return nil, err
	}
	return ext, nil
}

// Get returns one document, enforcing owner scoping through its property.
func (s *DocumentService) Get(ctx context.Context, actor *models.User, id uint) (*models.Document, error) {
	doc, err := s.store.Documents().Get(ctx, id)
	if err != nil {
		return nil, notFoundErr("not_found")
	}
	if actor.Role == models.RolePropertyOwner {
		prop, err := s.store.Properties().Get(ctx, doc.PropertyID)
		if err != nil || prop.OwnerUserID != actor.ID {
			return nil, notFoundErr("not_found")
		}
	}
	return doc, nil
}

// List returns documents visible to the actor, optionally filtered.
func (s *DocumentService) List(ctx context.Context, actor *models.User, propertyID *uint, status string) ([]models.Document, error) {
	filter := repository.DocumentFilter{PropertyID: propertyID, Status: status}
	if actor.Role == models.RolePropertyOwner {
		ids, err := s.store.Properties().IDsByOwner(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []models.Document{}, nil
		}
		filter.PropertyIDs = ids
	}
	return s.store.Documents().List(ctx, filter)
}

// Extraction returns the latest extraction for a document.
func (s *DocumentService) Extraction(ctx context.Context, actor *models.User, documentID uint) (*models.DocumentExtraction, error) {
	if _, err := s.Get(ctx, actor, documentID); err != nil {
		return nil, err
	}
	ext, err := s.store.Extractions().GetByDocument(ctx, documentID)
	if err != nil {
		return nil, notFoundErr("extraction_not_found")
	}
	return ext, nil
}

// Delete removes a document, its extractions and its blob.
func (s *DocumentService) Delete(ctx context.Context, actorID, id uint) error {
	doc, err := s.store.Documents().Get(ctx, id)
	if err != nil {
		return notFoundErr("not_found")
	}
	err = s.store.Atomically(ctx, func(tx repository.Store) error {
		if err := tx.Extractions().DeleteByDocuments(ctx, []uint{id}); err != nil {
			return err
		}
		if err := tx.Documents().Delete(ctx, id); err != nil {
			return err
		}
		return logActivity(ctx, tx, "document_deleted", models.ActorStaff, &actorID, nil,
			models.JSONMap{"document_id": id, "name": doc.Name})
	})
	if err != nil {
		return err
	}
	if err := s.blobs.Remove(doc.Path); err != nil {
		s.log.Warn().Err(err).Str("path", doc.Path).Msg("orphaned blob left behind")
	}
	return nil
}

// classifyExtension maps a filename to the coarse document type the
// extraction pipeline starts from.
func classifyExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "contract"
	case ".jpg", ".jpeg", ".png":
		return "photo"
	case ".txt", ".md", ".log", ".csv":
		return "text"
	default:
		return "other"
	}
}
