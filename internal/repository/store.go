// Package repository defines the persistence contract of the application and
// its two implementations: the Postgres-backed store used in production and an
// in-memory store used by tests.
package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/rented/backend/internal/models"
)

// ErrNotFound is returned by every repository when the requested record does
// not exist.
var ErrNotFound = errors.New("record not found")

// Store bundles all repositories behind one transactional boundary.
type Store interface {
	// Atomically runs fn against a store whose writes commit or roll back as
	// one unit. Every multi-row effect must go through here.
	Atomically(ctx context.Context, fn func(Store) error) error

	WorkOrders() WorkOrderRepo
	Quotes() QuoteRepo
	Interests() InterestRepo
	Proofs() ProofRepo
	Tokens() TokenRepo
	Properties() PropertyRepo
	Contracts() ContractRepo
	Documents() DocumentRepo
	Extractions() ExtractionRepo
	Users() UserRepo
	Sessions() SessionRepo
	Activity() ActivityRepo
}

// WorkOrderFilter narrows work-order listings.
type WorkOrderFilter struct {
	PropertyID  *uint
	PropertyIDs []uint
	Status      models.WorkOrderStatus
	Type        models.WorkOrderType
	Search      string
}

type WorkOrderRepo interface {
	Create(ctx context.Context, wo *models.WorkOrder) error
	Get(ctx context.Context, id uint) (*models.WorkOrder, error)
	Update(ctx context.Context, wo *models.WorkOrder) error
	List(ctx context.Context, filter WorkOrderFilter) ([]models.WorkOrder, error)
	IDsByProperty(ctx context.Context, propertyID uint) ([]uint, error)
	Delete(ctx context.Context, id uint) error
}

type QuoteRepo interface {
	Create(ctx context.Context, q *models.WorkOrderQuote) error
	Get(ctx context.Context, id uint) (*models.WorkOrderQuote, error)
	Update(ctx context.Context, q *models.WorkOrderQuote) error
	ListByWorkOrder(ctx context.Context, workOrderID uint) ([]models.WorkOrderQuote, error)
	// RejectOthers marks every quote of the work order except keepID rejected.
	RejectOthers(ctx context.Context, workOrderID, keepID uint) error
	DeleteByWorkOrders(ctx context.Context, workOrderIDs []uint) error
}

type InterestRepo interface {
	Create(ctx context.Context, in *models.WorkOrderInterest) error
	Get(ctx context.Context, id uint) (*models.WorkOrderInterest, error)
	Update(ctx context.Context, in *models.WorkOrderInterest) error
	ListByWorkOrder(ctx context.Context, workOrderID uint) ([]models.WorkOrderInterest, error)
	RejectOthers(ctx context.Context, workOrderID, keepID uint) error
	DeleteByWorkOrders(ctx context.Context, workOrderIDs []uint) error
}

type ProofRepo interface {
	Create(ctx context.Context, p *models.WorkOrderProof) error
	Update(ctx context.Context, p *models.WorkOrderProof) error
	// Latest returns the most recently created proof for the work order.
	Latest(ctx context.Context, workOrderID uint) (*models.WorkOrderProof, error)
	ListByWorkOrder(ctx context.Context, workOrderID uint) ([]models.WorkOrderProof, error)
	DeleteByWorkOrders(ctx context.Context, workOrderIDs []uint) error
}

type TokenRepo interface {
	Create(ctx context.Context, t *models.WorkOrderToken) error
	GetByHash(ctx context.Context, hash string) (*models.WorkOrderToken, error)
	ListByWorkOrder(ctx context.Context, workOrderID uint) ([]models.WorkOrderToken, error)
	// Deactivate flips is_active off for the work order's tokens; scope == ""
	// matches every scope.
	Deactivate(ctx context.Context, workOrderID uint, scope models.TokenScope) error
	// BindQuote links the token to the quote it produced. The update only
	// applies while the token is still unbound; the return value reports
	// whether this call won the bind.
	BindQuote(ctx context.Context, tokenID, quoteID uint, at time.Time) (bool, error)
	BindInterest(ctx context.Context, tokenID, interestID uint, at time.Time) (bool, error)
	DeleteByWorkOrders(ctx context.Context, workOrderIDs []uint) error
}

type PropertyRepo interface {
	Create(ctx context.Context, p *models.Property) error
	Get(ctx context.Context, id uint) (*models.Property, error)
	Update(ctx context.Context, p *models.Property) error
	List(ctx context.Context, ownerUserID *uint) ([]models.Property, error)
	IDsByOwner(ctx context.Context, ownerUserID uint) ([]uint, error)
	Delete(ctx context.Context, id uint) error
}

type ContractRepo interface {
	GetByProperty(ctx context.Context, propertyID uint) (*models.PropertyContract, error)
	// Save inserts the contract or rewrites the existing row for its
	// property.
	Save(ctx context.Context, c *models.PropertyContract) error
	DeleteByProperty(ctx context.Context, propertyID uint) error
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	PropertyID  *uint
	PropertyIDs []uint
	Status      string
}

type DocumentRepo interface {
	Create(ctx context.Context, d *models.Document) error
	Get(ctx context.Context, id uint) (*models.Document, error)
	Update(ctx context.Context, d *models.Document) error
	List(ctx context.Context, filter DocumentFilter) ([]models.Document, error)
	IDsByProperty(ctx context.Context, propertyID uint) ([]uint, error)
	Delete(ctx context.Context, id uint) error
	DeleteByProperty(ctx context.Context, propertyID uint) error
}

type ExtractionRepo interface {
	Create(ctx context.Context, e *models.DocumentExtraction) error
	GetByDocument(ctx context.Context, documentID uint) (*models.DocumentExtraction, error)
	Update(ctx context.Context, e *models.DocumentExtraction) error
	DeleteByDocuments(ctx context.Context, documentIDs []uint) error
}

type UserRepo interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	List(ctx context.Context, role string) ([]models.User, error)
	Delete(ctx context.Context, id uint) error
}

type SessionRepo interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type ActivityRepo interface {
	Append(ctx context.Context, e *models.ActivityEntry) error
	List(ctx context.Context, userID *uint, limit int) ([]models.ActivityEntry, error)
}
