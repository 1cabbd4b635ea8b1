package service

import (
	"context"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
)

// ActivityService exposes the audit trail.
type ActivityService struct {
	store repository.Store
}

func NewActivityService(store repository.Store) *ActivityService {
	return &ActivityService{store: store}
}

// List returns recent entries, newest first. Owners only see their own
// entries; staff see everything.
func (s *ActivityService) List(ctx context.Context, actor *models.User, limit int) ([]models.ActivityEntry, error) {
	if actor.Role == models.RolePropertyOwner {
		return s.store.Activity().List(ctx, &actor.ID, limit)
	}
	return s.store.Activity().List(ctx, nil, limit)
}
