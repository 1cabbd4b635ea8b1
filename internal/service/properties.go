package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
)

const maxPropertyPhotos = 10

// PropertyService manages the property catalog and its photo gallery.
type PropertyService struct {
	store repository.Store
	blobs BlobStore
	log   zerolog.Logger
}

func NewPropertyService(store repository.Store, blobs BlobStore, log zerolog.Logger) *PropertyService {
	return &PropertyService{store: store, blobs: blobs, log: log}
}

// PropertyInput carries create/update fields; nil pointers mean unchanged on
// update.
type PropertyInput struct {
	OwnerUserID   *uint
	Tag           *string
	Address       *string
	Bedrooms      *int
	Bathrooms     *int
	ParkingSpaces *int
	IsRented      *bool
	DesiredRent   *float64
	CurrentRent   *float64
	Display       models.JSONMap
}

// Create validates and stores a new property.
func (s *PropertyService) Create(ctx context.Context, in PropertyInput) (*models.Property, error) {
	if in.Tag == nil || strings.TrimSpace(*in.Tag) == "" {
		return nil, validationErr("tag_required")
	}
	if in.Address == nil || strings.TrimSpace(*in.Address) == "" {
		return nil, validationErr("address_required")
	}
	if in.OwnerUserID == nil {
		return nil, validationErr("owner_required")
	}
	owner, err := s.store.Users().Get(ctx, *in.OwnerUserID)
	if err != nil || owner.Role != models.RolePropertyOwner {
		return nil, validationErr("invalid_owner")
	}
	prop := &models.Property{
		OwnerUserID: *in.OwnerUserID,
		Tag:         strings.TrimSpace(*in.Tag),
		Address:     strings.TrimSpace(*in.Address),
		Photos:      models.PhotoList{},
		Display:     models.JSONMap{},
	}
	if in.Display != nil {
		prop.Display = in.Display
	}
	if err := applyPropertyFields(prop, in); err != nil {
		return nil, err
	}
	err = s.store.Atomically(ctx, func(tx repository.Store) error {
		if err := tx.Properties().Create(ctx, prop); err != nil {
			return err
		}
		return syncContract(ctx, tx, prop)
	})
	if err != nil {
		return nil, err
	}
	return prop, nil
}

// Update applies the provided fields after validation.
func (s *PropertyService) Update(ctx context.Context, id uint, in PropertyInput) (*models.Property, error) {
	prop, err := s.store.Properties().Get(ctx, id)
	if err != nil {
		return nil, notFoundErr("not_found")
	}
	if in.Tag != nil {
		if strings.TrimSpace(*in.Tag) == "" {
			return nil, validationErr("tag_required")
		}
		prop.Tag = strings.TrimSpace(*in.Tag)
	}
	if in.Address != nil {
		if strings.TrimSpace(*in.Address) == "" {
			return nil, validationErr("address_required")
		}
		prop.Address = strings.TrimSpace(*in.Address)
	}
	if in.OwnerUserID != nil {
		owner, err := s.store.Users().Get(ctx, *in.OwnerUserID)
		if err != nil || owner.Role != models.RolePropertyOwner {
			return nil, validationErr("invalid_owner")
		}
		prop.OwnerUserID = *in.OwnerUserID
	}
	if in.Display != nil {
		prop.Display = in.Display
	}
	if err := applyPropertyFields(prop, in); err != nil {
		return nil, err
	}
	err = s.store.Atomically(ctx, func(tx repository.Store) error {
		if err := tx.Properties().Update(ctx, prop); err != nil {
			return err
		}
		return syncContract(ctx, tx, prop)
	})
	if err != nil {
		return nil, err
	}
	return prop, nil
}

// Get returns one property, enforcing owner scoping.
func (s *PropertyService) Get(ctx context.Context, actor *models.User, id uint) (*models.Property, error) {
	prop, err := s.store.Properties().Get(ctx, id)
	if err != nil {
		return nil, notFoundErr("not_found")
	}
	if actor.Role == models.RolePropertyOwner && prop.OwnerUserID != actor.ID {
		return nil, notFoundErr("not_found")
	}
	return prop, nil
}

// List returns properties visible to the actor. Owners only see their own.
func (s *PropertyService) List(ctx context.Context, actor *models.User) ([]models.Property, error) {
	if actor.Role == models.RolePropertyOwner {
		return s.store.Properties().List(ctx, &actor.ID)
	}
	return s.store.Properties().List(ctx, nil)
}

// AddPhoto stores an uploaded image and appends it to the gallery.
func (s *PropertyService) AddPhoto(ctx context.Context, id uint, filename string, data []byte) (*models.Property, error) {
	prop, err := s.store.Properties().Get(ctx, id)
	if err != nil {
		return nil, notFoundErr("not_found")
	}
	if len(prop.Photos) >= maxPropertyPhotos {
		return nil, validationErr("photo_limit_reached")
	}
	if len(data) == 0 {
		return nil, validationErr("empty_file")
	}
	saved, err := s.blobs.Save("property", filename, data)
	if err != nil {
		return nil, err
	}
	prop.Photos = append(prop.Photos, models.Photo{
		Name:       filename,
		Path:       saved.Path,
		URL:        saved.URL,
		UploadedAt: nowUTC().Format(time.RFC3339),
	})
	if err := s.store.Properties().Update(ctx, prop); err != nil {
		return nil, err
	}
	return prop, nil
}

// RemovePhoto drops the photo at the given index and deletes its blob.
func (s *PropertyService) RemovePhoto(ctx context.Context, id uint, index int) (*models.Property, error) {
	prop, err := s.store.Properties().Get(ctx, id)
	if err != nil {
		return nil, notFoundErr("not_found")
	}
	if index < 0 || index >= len(prop.Photos) {
		return nil, validationErr("invalid_photo_index")
	}
	removed := prop.Photos[index]
	prop.Photos = append(prop.Photos[:index], prop.Photos[index+1:]...)
	if err := s.store.Properties().Update(ctx, prop); err != nil {
		return nil, err
	}
	if err := s.blobs.Remove(removed.Path); err != nil {
		s.log.Warn().Err(err).Str("path", removed.Path).Msg("orphaned photo blob left behind")
	}
	return prop, nil
}

// Delete removes the property and everything hanging off it: documents and
// their extractions, the lease mirror, work orders with their quotes,
// interests, proofs and tokens. Blob deletion is best effort and happens
// after the transaction.
func (s *PropertyService) Delete(ctx context.Context, actorID, id uint) error {
	prop, err := s.store.Properties().Get(ctx, id)
	if err != nil {
		return notFoundErr("not_found")
	}
	var orphanedPaths []string
	err = s.store.Atomically(ctx, func(tx repository.Store) error {
		docIDs, err := tx.Documents().IDsByProperty(ctx, id)
		if err != nil {
			return err
		}
		docs, err := tx.Documents().List(ctx, repository.DocumentFilter{PropertyID: &id})
		if err != nil {
			return err
		}
		for _, d := range docs {
			orphanedPaths = append(orphanedPaths, d.Path)
		}
		if err := tx.Extractions().DeleteByDocuments(ctx, docIDs); err != nil {
			return err
		}
		if err := tx.Documents().DeleteByProperty(ctx, id); err != nil {
			return err
		}
		if err := tx.Contracts().DeleteByProperty(ctx, id); err != nil {
			return err
		}
		woIDs, err := tx.WorkOrders().IDsByProperty(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Tokens().DeleteByWorkOrders(ctx, woIDs); err != nil {
			return err
		}
		if err := tx.Proofs().DeleteByWorkOrders(ctx, woIDs); err != nil {
			return err
		}
		if err := tx.Quotes().DeleteByWorkOrders(ctx, woIDs); err != nil {
			return err
		}
		if err := tx.Interests().DeleteByWorkOrders(ctx, woIDs); err != nil {
			return err
		}
		for _, woID := range woIDs {
			if err := tx.WorkOrders().Delete(ctx, woID); err != nil {
				return err
			}
		}
		if err := tx.Properties().Delete(ctx, id); err != nil {
			return err
		}
		return logActivity(ctx, tx, "property_deleted", models.ActorStaff, &actorID, nil,
			models.JSONMap{"property_id": id, "tag": prop.Tag})
	})
	if err != nil {
		return err
	}
	for _, photo := range prop.Photos {
		orphanedPaths = append(orphanedPaths, photo.Path)
	}
	for _, path := range orphanedPaths {
		if path == "" {
			continue
		}
		if err := s.blobs.Remove(path); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("orphaned blob left behind")
		}
	}
	return nil
}

func applyPropertyFields(prop *models.Property, in PropertyInput) error {
	if in.Bedrooms != nil {
		if *in.Bedrooms < 0 {
			return validationErr("invalid_bedrooms")
		}
		prop.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		if *in.Bathrooms < 0 {
			return validationErr("invalid_bathrooms")
		}
		prop.Bathrooms = *in.Bathrooms
	}
	if in.ParkingSpaces != nil {
		if *in.ParkingSpaces < 0 {
			return validationErr("invalid_parking_spaces")
		}
		prop.ParkingSpaces = *in.ParkingSpaces
	}
	if in.IsRented != nil {
		prop.IsRented = *in.IsRented
	}
	if in.DesiredRent != nil {
		if *in.DesiredRent < 0 {
			return validationErr("invalid_desired_rent")
		}
		prop.DesiredRent = in.DesiredRent
	}
	if in.CurrentRent != nil {
		if *in.CurrentRent < 0 {
			return validationErr("invalid_current_rent")
		}
		prop.CurrentRent = in.CurrentRent
	}
	if prop.IsRented && prop.CurrentRent == nil {
		return validationErr("current_rent_required")
	}
	return nil
}
