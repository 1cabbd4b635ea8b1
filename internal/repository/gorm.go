package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rented/backend/internal/models"
)

// NewStore wraps a gorm connection in the Store contract.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) Atomically(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) WorkOrders() WorkOrderRepo   { return &workOrderRepo{db: s.db} }
func (s *gormStore) Quotes() QuoteRepo           { return &quoteRepo{db: s.db} }
func (s *gormStore) Interests() InterestRepo     { return &interestRepo{db: s.db} }
func (s *gormStore) Proofs() ProofRepo           { return &proofRepo{db: s.db} }
func (s *gormStore) Tokens() TokenRepo           { return &tokenRepo{db: s.db} }
func (s *gormStore) Properties() PropertyRepo    { return &propertyRepo{db: s.db} }
func (s *gormStore) Contracts() ContractRepo     { return &contractRepo{db: s.db} }
func (s *gormStore) Documents() DocumentRepo     { return &documentRepo{db: s.db} }
func (s *gormStore) Extractions() ExtractionRepo { return &extractionRepo{db: s.db} }
func (s *gormStore) Users() UserRepo             { return &userRepo{db: s.db} }
func (s *gormStore) Sessions() SessionRepo       { return &sessionRepo{db: s.db} }
func (s *gormStore) Activity() ActivityRepo      { return &activityRepo{db: s.db} }

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.WithStack(ErrNotFound)
	}
	return errors.WithStack(err)
}

type workOrderRepo struct {
	db *gorm.DB
}

func (r *workOrderRepo) Create(ctx context.Context, wo *models.WorkOrder) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(wo).Error)
}

func (r *workOrderRepo) Get(ctx context.Context, id uint) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := r.db.WithContext(ctx).First(&wo, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &wo, nil
}

func (r *workOrderRepo) Update(ctx context.Context, wo *models.WorkOrder) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(wo).Error)
}

func (r *workOrderRepo) List(ctx context.Context, filter WorkOrderFilter) ([]models.WorkOrder, error) {
	stmt := r.db.WithContext(ctx).Model(&models.WorkOrder{})
	if filter.PropertyID != nil {
		stmt = stmt.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.PropertyIDs != nil {
		stmt = stmt.Where("property_id IN ?", filter.PropertyIDs)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		stmt = stmt.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}
	var out []models.WorkOrder
	err := stmt.Order("id desc").Find(&out).Error
	return out, errors.WithStack(err)
}

func (r *workOrderRepo) IDsByProperty(ctx context.Context, propertyID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.WorkOrder{}).
		Where("property_id = ?", propertyID).Pluck("id", &ids).Error
	return ids, errors.WithStack(err)
}

func (r *workOrderRepo) Delete(ctx context.Context, id uint) error {
	return errors.WithStack(r.db.WithContext(ctx).Delete(&models.WorkOrder{}, id).Error)
}

type quoteRepo struct {
	db *gorm.DB
}

func (r *quoteRepo) Create(ctx context.Context, q *models.WorkOrderQuote) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(q).Error)
}

func (r *quoteRepo) Get(ctx context.Context, id uint) (*models.WorkOrderQuote, error) {
	var q models.WorkOrderQuote
	if err := r.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

func (r *quoteRepo) Update(ctx context.Context, q *models.WorkOrderQuote) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(q).Error)
}

func (r *quoteRepo) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]models.WorkOrderQuote, error) {
	var out []models.WorkOrderQuote
	err := r.db.WithContext(ctx).Where("work_order_id = ?", workOrderID).Order("id").Find(&out).Error
	return out, errors.WithStack(err)
}

func (r *quoteRepo) RejectOthers(ctx context.Context, workOrderID, keepID uint) error {
	err := r.db.WithContext(ctx).Model(&models.WorkOrderQuote{}).
		Where("work_order_id = ? AND id <> ?", workOrderID, keepID).
		Update("status", models.SubmissionStatusRejected).Error
	return errors.WithStack(err)
}

func (r *quoteRepo) DeleteByWorkOrders(ctx context.Context, workOrderIDs []uint) error {
	if len(workOrderIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("work_order_id IN ?", workOrderIDs).
		Delete(&models.WorkOrderQuote{}).Error
	return errors.WithStack(err)
}

type interestRepo struct {
	db *gorm.DB
}

func (r *interestRepo) Create(ctx context.Context, in *models.WorkOrderInterest) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(in).Error)
}

func (r *interestRepo) Get(ctx context.Context, id uint) (*models.WorkOrderInterest, error) {
	var in models.WorkOrderInterest
	if err := r.db.WithContext(ctx).First(&in, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &in, nil
}

func (r *interestRepo) Update(ctx context.Context, in *models.WorkOrderInterest) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(in).Error)
}

func (r *interestRepo) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]models.WorkOrderInterest, error) {
	var out []models.WorkOrderInterest
	err := r.db.WithContext(ctx).Where("work_order_id = ?", workOrderID).Order("id").Find(&out).Error
	return out, errors.WithStack(err)
}

func (r *interestRepo) RejectOthers(ctx context.Context, workOrderID, keepID uint) error {
	err := r.db.WithContext(ctx).Model(&models.WorkOrderInterest{}).
		Where("work_order_id = ? AND id <> ?", workOrderID, keepID).
		Update("status", models.SubmissionStatusRejected).Error
	return errors.WithStack(err)
}

func (r *interestRepo) DeleteByWorkOrders(ctx context.Context, workOrderIDs []uint) error {
	if len(workOrderIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("work_order_id IN ?", workOrderIDs).
		Delete(&models.WorkOrderInterest{}).Error
	return errors.WithStack(err)
}

type proofRepo struct {
	db *gorm.DB
}

func (r *proofRepo) Create(ctx context.Context, p *models.WorkOrderProof) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(p).Error)
}

func (r *proofRepo) Update(ctx context.Context, p *models.WorkOrderProof) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(p).Error)
}

func (r *proofRepo) Latest(ctx context.Context, workOrderID uint) (*models.WorkOrderProof, error) {
	var p models.WorkOrderProof
	err := r.db.WithContext(ctx).Where("work_order_id = ?", workOrderID).
		Order("id desc").First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *proofRepo) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]models.WorkOrderProof, error) {
	var out []models.WorkOrderProof
	err := r.db.WithContext(ctx).Where("work_order_id = ?", workOrderID).Order("id").Find(&out).Error
	return out, errors.WithStack(err)
}

func (r *proofRepo) DeleteByWorkOrders(ctx context.Context, workOrderIDs []uint) error {
	if len(workOrderIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("work_order_id IN ?", workOrderIDs).
		Delete(&models.WorkOrderProof{}).Error
	return errors.WithStack(err)
}

type tokenRepo struct {
	db *gorm.DB
}

func (r *tokenRepo) Create(ctx context.Context, t *models.WorkOrderToken) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(t).Error)
}

func (r *tokenRepo) GetByHash(ctx context.Context, hash string) (*models.WorkOrderToken, error) {
	var t models.WorkOrderToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *tokenRepo) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]models.WorkOrderToken, error) {
	var out []models.WorkOrderToken
	err := r.db.WithContext(ctx).Where("work_order_id = ?", workOrderID).Order("id").Find(&out).Error
	return out, errors.WithStack(err)
}

func (r *tokenRepo) Deactivate(ctx context.Context, workOrderID uint, scope models.TokenScope) error {
	stmt := r.db.WithContext(ctx).Model(&models.WorkOrderToken{}).
		Where("work_order_id = ?", workOrderID)
	if scope != "" {
		stmt = stmt.Where("scope = ?", scope)
	}
	return errors.WithStack(stmt.Update("is_active", false).Error)
}

func (r *tokenRepo) BindQuote(ctx context.Context, tokenID, quoteID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.WorkOrderToken{}).
		Where("id = ? AND quote_id IS NULL AND interest_id IS NULL", tokenID).
		Updates(map[string]any{"quote_id": quoteID, "used_at": at})
	if res.Error != nil {
		return false, errors.WithStack(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *tokenRepo) BindInterest(ctx context.Context, tokenID, interestID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.WorkOrderToken{}).
		Where("id = ? AND quote_id IS NULL AND interest_id IS NULL", tokenID).
		Updates(map[string]any{"interest_id": interestID, "used_at": at})
	if res.Error != nil {
		return false, errors.WithStack(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *tokenRepo) DeleteByWorkOrders(ctx context.Context, workOrderIDs []uint) error {
	if len(workOrderIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("work_order_id IN ?", workOrderIDs).
		Delete(&models.WorkOrderToken{}).Error
	return errors.WithStack(err)
}
