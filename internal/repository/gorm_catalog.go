package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rented/backend/internal/models"
)

type propertyRepo struct {
	db *gorm.DB
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(p).Error)
}

func (r *propertyRepo) Get(ctx context.Context, id uint) (*models.Property, error) {
	var p models.Property
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *propertyRepo) Update(ctx context.Context, p *models.Property) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(p).Error)
}

func (r *propertyRepo) List(ctx context.Context, ownerUserID *uint) ([]models.Property, error) {
	stmt := r.db.WithContext(ctx).Model(&models.Property{})
	if ownerUserID != nil {
		stmt = stmt.Where("owner_user_id = ?", *ownerUserID)
	}
	var out []models.Property
	err := stmt.Order("id").Find(&out).Error
	return out, errors.WithStack(err)
}

func (r *propertyRepo) IDsByOwner(ctx context.Context, ownerUserID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Property{}).
		Where("owner_user_id = ?", ownerUserID).Pluck("id", &ids).Error
	return ids, errors.WithStack(err)
}

func (r *propertyRepo) Delete(ctx context.Context, id uint) error {
	return errors.WithStack(r.db.WithContext(ctx).Delete(&models.Property{}, id).Error)
}

type contractRepo struct {
	db *gorm.DB
}

func (r *contractRepo) GetByProperty(ctx context.Context, propertyID uint) (*models.PropertyContract, error) {
	var c models.PropertyContract
	err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).First(&c).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *contractRepo) Save(ctx context.Context, c *models.PropertyContract) error {
	if c.ID == 0 {
		var existing models.PropertyContract
		err := r.db.WithContext(ctx).Where("property_id = ?", c.PropertyID).First(&existing).Error
		switch {
		case err == nil:
			c.ID = existing.ID
			c.CreatedAt = existing.CreatedAt
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(r.db.WithContext(ctx).Save(c).Error)
}

func (r *contractRepo) DeleteByProperty(ctx context.Context, propertyID uint) error {
	err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).
		Delete(&models.PropertyContract{}).Error
	return errors.WithStack(err)
}

type documentRepo struct {
	db *gorm.DB
}

func (r *documentRepo) Create(ctx context.Context, d *models.Document) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(d).Error)
}

func (r *documentRepo) Get(ctx context.Context, id uint) (*models.Document, error) {
	var d models.Document
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *documentRepo) Update(ctx context.Context, d *models.Document) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(d).Error)
}

func (r *documentRepo) List(ctx context.Context, filter DocumentFilter) ([]models.Document, error) {
	stmt := r.db.WithContext(ctx).Model(&models.Document{})
	if filter.PropertyID != nil {
		stmt = stmt.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.PropertyIDs != nil {
		stmt = stmt.Where("property_id IN ?", filter.PropertyIDs)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	var out []models.Document
	err := stmt.Order("id desc").Find(&out).Error
	return out, errors.WithStack(err)
}

func (r *documentRepo) IDsByProperty(ctx context.Context, propertyID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Document{}).
		Where("property_id = ?", propertyID).Pluck("id", &ids).Error
	return ids, errors.WithStack(err)
}

func (r *documentRepo) Delete(ctx context.Context, id uint) error {
	return errors.WithStack(r.db.WithContext(ctx).Delete(&models.Document{}, id).Error)
}

func (r *documentRepo) DeleteByProperty(ctx context.Context, propertyID uint) error {
	err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).
		Delete(&models.Document{}).Error
	return errors.WithStack(err)
}

type extractionRepo struct {
	db *gorm.DB
}

func (r *extractionRepo) Create(ctx context.Context, e *models.DocumentExtraction) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(e).Error)
}

func (r *extractionRepo) GetByDocument(ctx context.Context, documentID uint) (*models.DocumentExtraction, error) {
	var e models.DocumentExtraction
	err := r.db.WithContext(ctx).Where("document_id = ?", documentID).
		Order("id desc").First(&e).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *extractionRepo) Update(ctx context.Context, e *models.DocumentExtraction) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(e).Error)
}

func (r *extractionRepo) DeleteByDocuments(ctx context.Context, documentIDs []uint) error {
	if len(documentIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("document_id IN ?", documentIDs).
		Delete(&models.DocumentExtraction{}).Error
	return errors.WithStack(err)
}

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepo) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepo) Update(ctx context.Context, u *models.User) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(u).Error)
}

func (r *userRepo) List(ctx context.Context, role string) ([]models.User, error) {
	stmt := r.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		stmt = stmt.Where("role = ?", role)
	}
	var out []models.User
	err := stmt.Order("id").Find(&out).Error
	return out, errors.WithStack(err)
}

func (r *userRepo) Delete(ctx context.Context, id uint) error {
	return errors.WithStack(r.db.WithContext(ctx).Delete(&models.User{}, id).Error)
}

type sessionRepo struct {
	db *gorm.DB
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(s).Error)
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *sessionRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).Update("revoked_at", at).Error
	return errors.WithStack(err)
}

func (r *sessionRepo) DeleteByUser(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Delete(&models.Session{}).Error
	return errors.WithStack(err)
}

type activityRepo struct {
	db *gorm.DB
}

func (r *activityRepo) Append(ctx context.Context, e *models.ActivityEntry) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(e).Error)
}

func (r *activityRepo) List(ctx context.Context, userID *uint, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 {
		limit = 200
	}
	stmt := r.db.WithContext(ctx).Model(&models.ActivityEntry{})
	if userID != nil {
		stmt = stmt.Where("user_id = ?", *userID)
	}
	var out []models.ActivityEntry
	err := stmt.Order("id desc").Limit(limit).Find(&out).Error
	return out, errors.WithStack(err)
}
