package service

import (
	"context"
	"time"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
	"github.com/rented/backend/internal/storage"
)

func nowUTC() time.Time { return time.Now().UTC() }

// BlobStore is what services need from file storage.
type BlobStore interface {
	Save(prefix, filename string, data []byte) (storage.SavedFile, error)
	Remove(path string) error
}

// Dispatcher hands a document off for processing. The implementation is
// chosen once at process start: inline execution or a queue publish.
type Dispatcher interface {
	Dispatch(ctx context.Context, documentID uint) error
}

// EventPublisher emits domain events; a nil publisher is valid and silently
// drops them.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

func publishEvent(ctx context.Context, pub EventPublisher, key string, payload any) error {
	if pub == nil {
		return nil
	}
	return pub.Publish(ctx, key, payload)
}

func logActivity(ctx context.Context, s repository.Store, event, actorType string, userID, tokenID *uint, detail models.JSONMap) error {
	return s.Activity().Append(ctx, &models.ActivityEntry{
		Event:     event,
		ActorType: actorType,
		UserID:    userID,
		TokenID:   tokenID,
		Detail:    detail,
	})
}
