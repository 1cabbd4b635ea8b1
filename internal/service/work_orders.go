package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/mq"
	"github.com/rented/backend/internal/repository"
	"github.com/rented/backend/internal/token"
)

// WorkOrderService owns the work-order lifecycle: staff transitions on this
// side, portal submissions in portal.go. Every multi-row effect runs inside
// one store transaction.
type WorkOrderService struct {
	store  repository.Store
	tokens *token.Authority
	events EventPublisher
	log    zerolog.Logger
}

// NewWorkOrderService builds the service with its collaborators.
func NewWorkOrderService(store repository.Store, tokens *token.Authority, events EventPublisher, log zerolog.Logger) *WorkOrderService {
	return &WorkOrderService{store: store, tokens: tokens, events: events, log: log}
}

// CreateWorkOrderInput carries the staff creation request.
type CreateWorkOrderInput struct {
	PropertyID  uint
	Type        models.WorkOrderType
	Title       string
	Description string
	OfferAmount *float64
}

// TokenView is the token metadata exposed to staff. The cleartext value is
// never part of it.
type TokenView struct {
	ID         uint              `json:"id"`
	Scope      models.TokenScope `json:"scope"`
	ExpiresAt  time.Time         `json:"expires_at"`
	QuoteID    *uint             `json:"quote_id"`
	InterestID *uint             `json:"interest_id"`
	IsActive   bool              `json:"is_active"`
	UsedAt     *time.Time        `json:"used_at"`
	CreatedAt  time.Time         `json:"created_at"`
}

// WorkOrderDetail is the staff view of a work order and all its children.
type WorkOrderDetail struct {
	WorkOrder *models.WorkOrder          `json:"work_order"`
	Quotes    []models.WorkOrderQuote    `json:"quotes"`
	Interests []models.WorkOrderInterest `json:"interests"`
	Proofs    []models.WorkOrderProof    `json:"proofs"`
	Tokens    []TokenView                `json:"tokens"`
}

// Create validates and persists a new work order, minting the initial portal
// token for its track. The returned map holds the one-time portal link.
func (s *WorkOrderService) Create(ctx context.Context, actor *models.User, in CreateWorkOrderInput) (*models.WorkOrder, map[string]string, error) {
	if in.Type != models.WorkOrderTypeQuote && in.Type != models.WorkOrderTypeFixed {
		return nil, nil, validationErr("invalid_work_order_type")
	}
	if len(in.Title) < 3 || len(in.Description) < 3 {
		return nil, nil, validationErr("invalid_title_or_description")
	}
	if in.Type == models.WorkOrderTypeFixed && (in.OfferAmount == nil || *in.OfferAmount <= 0) {
		return nil, nil, validationErr("missing_offer_amount")
	}

	wo := &models.WorkOrder{
		PropertyID:      in.PropertyID,
		Type:            in.Type,
		Title:           in.Title,
		Description:     in.Description,
		CreatedByUserID: actor.ID,
		Display:         models.JSONMap{},
	}
	scope := models.ScopeQuotePortal
	if in.Type == models.WorkOrderTypeFixed {
		wo.Status = models.StatusOfferOpen
		wo.OfferAmount = in.OfferAmount
		scope = models.ScopeFixedInterest
	} else {
		wo.Status = models.StatusQuoteRequested
	}

	var value string
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		if _, err := tx.Properties().Get(ctx, in.PropertyID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundErr("property_not_found")
			}
			return err
		}
		if err := tx.WorkOrders().Create(ctx, wo); err != nil {
			return err
		}
		var err error
		if value, err = s.mintToken(ctx, tx, wo.ID, scope, nil); err != nil {
			return err
		}
		return logActivity(ctx, tx, "work_order_created", models.ActorStaff, &actor.ID, nil,
			models.JSONMap{"work_order_id": wo.ID, "property_id": wo.PropertyID})
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().Uint("work_order_id", wo.ID).Str("type", string(wo.Type)).Msg("work order created")
	if err := publishEvent(ctx, s.events, mq.KeyWorkOrderCreated, wo); err != nil {
		s.log.Warn().Err(err).Msg("publish workorder.created failed")
	}
	return wo, map[string]string{"portal": portalLink(value)}, nil
}

// Get resolves a work order with all children for a staff user, applying
// owner scoping for non-admins.
func (s *WorkOrderService) Get(ctx context.Context, user *models.User, id uint) (*WorkOrderDetail, error) {
	wo, err := s.getWorkOrder(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnerAccess(ctx, user, wo.PropertyID); err != nil {
		return nil, err
	}
	s.decorate(ctx, wo)

	quotes, err := s.store.Quotes().ListByWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	interests, err := s.store.Interests().ListByWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	proofs, err := s.store.Proofs().ListByWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	tokens, err := s.store.Tokens().ListByWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	views := make([]TokenView, 0, len(tokens))
	for _, t := range tokens {
		views = append(views, TokenView{
			ID:         t.ID,
			Scope:      t.Scope,
			ExpiresAt:  t.ExpiresAt,
			QuoteID:    t.QuoteID,
			InterestID: t.InterestID,
			IsActive:   t.IsActive,
			UsedAt:     t.UsedAt,
			CreatedAt:  t.CreatedAt,
		})
	}
	return &WorkOrderDetail{
		WorkOrder: wo,
		Quotes:    quotes,
		Interests: interests,
		Proofs:    proofs,
		Tokens:    views,
	}, nil
}

// List returns work orders visible to the user, newest first.
func (s *WorkOrderService) List(ctx context.Context, user *models.User, filter repository.WorkOrderFilter) ([]models.WorkOrder, error) {
	if user.Role != models.RoleAdmin {
		owned, err := s.store.Properties().IDsByOwner(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if len(owned) == 0 {
			return []models.WorkOrder{}, nil
		}
		filter.PropertyIDs = owned
	}
	out, err := s.store.WorkOrders().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range out {
		s.decorate(ctx, &out[i])
	}
	return out, nil
}

// ApproveQuote approves one quote, rejects its siblings and records the
// approved amount, all in one transaction.
func (s *WorkOrderService) ApproveQuote(ctx context.Context, actor *models.User, workOrderID, quoteID uint, approvedAmount float64) error {
	if approvedAmount <= 0 {
		return validationErr("invalid_approved_amount")
	}
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		wo, err := s.getWorkOrder(ctx, tx, workOrderID)
		if err != nil {
			return err
		}
		if wo.Type != models.WorkOrderTypeQuote {
			return invalidStateErr("invalid_work_order_type")
		}
		quote, err := tx.Quotes().Get(ctx, quoteID)
		if err != nil || quote.WorkOrderID != workOrderID {
			return notFoundErr("quote_not_found")
		}
		quote.Status = models.SubmissionStatusApproved
		if err := tx.Quotes().Update(ctx, quote); err != nil {
			return err
		}
		if err := tx.Quotes().RejectOthers(ctx, workOrderID, quoteID); err != nil {
			return err
		}
		wo.ApprovedAmount = &approvedAmount
		wo.Status = models.StatusApprovedForExecution
		if err := tx.WorkOrders().Update(ctx, wo); err != nil {
			return err
		}
		return logActivity(ctx, tx, "quote_approved", models.ActorStaff, &actor.ID, nil,
			models.JSONMap{"work_order_id": workOrderID, "quote_id": quoteID})
	})
	if err != nil {
		return err
	}
	s.log.Info().Uint("work_order_id", workOrderID).Uint("quote_id", quoteID).Msg("quote approved")
	return nil
}

// SelectInterest assigns the work order to one provider: the chosen interest
// is selected, siblings rejected, every fixed_interest token deactivated and
// a fresh execution-scoped token minted for the winner. Returns the new
// portal link.
func (s *WorkOrderService) SelectInterest(ctx context.Context, actor *models.User, workOrderID, interestID uint) (map[string]string, error) {
	var value string
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		wo, err := s.getWorkOrder(ctx, tx, workOrderID)
		if err != nil {
			return err
		}
		if wo.Type != models.WorkOrderTypeFixed {
			return invalidStateErr("invalid_work_order_type")
		}
		interest, err := tx.Interests().Get(ctx, interestID)
		if err != nil || interest.WorkOrderID != workOrderID {
			return notFoundErr("interest_not_found")
		}
		interest.Status = models.SubmissionStatusSelected
		if err := tx.Interests().Update(ctx, interest); err != nil {
			return err
		}
		if err := tx.Interests().RejectOthers(ctx, workOrderID, interestID); err != nil {
			return err
		}
		if err := tx.Tokens().Deactivate(ctx, workOrderID, models.ScopeFixedInterest); err != nil {
			return err
		}
		wo.AssignedInterestID = &interestID
		wo.Status = models.StatusAssigned
		if err := tx.WorkOrders().Update(ctx, wo); err != nil {
			return err
		}
		if value, err = s.mintToken(ctx, tx, workOrderID, models.ScopeExecution, &interestID); err != nil {
			return err
		}
		return logActivity(ctx, tx, "provider_selected", models.ActorStaff, &actor.ID, nil,
			models.JSONMap{"work_order_id": workOrderID, "interest_id": interestID})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("work_order_id", workOrderID).Uint("interest_id", interestID).Msg("provider selected")
	return map[string]string{"portal": portalLink(value)}, nil
}

// Start moves an approved or assigned work order into execution.
func (s *WorkOrderService) Start(ctx context.Context, actor *models.User, workOrderID uint) error {
	return s.store.Atomically(ctx, func(tx repository.Store) error {
		wo, err := s.getWorkOrder(ctx, tx, workOrderID)
		if err != nil {
			return err
		}
		if wo.Status != models.StatusApprovedForExecution && wo.Status != models.StatusAssigned {
			return invalidStateErr("invalid_status")
		}
		wo.Status = models.StatusInProgress
		if err := tx.WorkOrders().Update(ctx, wo); err != nil {
			return err
		}
		return logActivity(ctx, tx, "work_order_started", models.ActorStaff, &actor.ID, nil,
			models.JSONMap{"work_order_id": workOrderID})
	})
}

// RequestRework flags the latest proof as needing rework.
func (s *WorkOrderService) RequestRework(ctx context.Context, actor *models.User, workOrderID uint) error {
	return s.store.Atomically(ctx, func(tx repository.Store) error {
		wo, err := s.getWorkOrder(ctx, tx, workOrderID)
		if err != nil {
			return err
		}
		proof, err := tx.Proofs().Latest(ctx, workOrderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundErr("proof_not_found")
			}
			return err
		}
		proof.Status = models.SubmissionStatusReworkRequested
		if err := tx.Proofs().Update(ctx, proof); err != nil {
			return err
		}
		wo.Status = models.StatusReworkRequested
		if err := tx.WorkOrders().Update(ctx, wo); err != nil {
			return err
		}
		return logActivity(ctx, tx, "work_order_rework_requested", models.ActorStaff, &actor.ID, nil,
			models.JSONMap{"work_order_id": workOrderID, "proof_id": proof.ID})
	})
}

// ApproveProof accepts the latest proof and closes the work order.
func (s *WorkOrderService) ApproveProof(ctx context.Context, actor *models.User, workOrderID uint) error {
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		wo, err := s.getWorkOrder(ctx, tx, workOrderID)
		if err != nil {
			return err
		}
		proof, err := tx.Proofs().Latest(ctx, workOrderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundErr("proof_not_found")
			}
			return err
		}
		proof.Status = models.SubmissionStatusApproved
		if err := tx.Proofs().Update(ctx, proof); err != nil {
			return err
		}
		wo.Status = models.StatusClosed
		if err := tx.WorkOrders().Update(ctx, wo); err != nil {
			return err
		}
		if err := logActivity(ctx, tx, "proof_approved", models.ActorStaff, &actor.ID, nil,
			models.JSONMap{"work_order_id": workOrderID, "proof_id": proof.ID}); err != nil {
			return err
		}
		return logActivity(ctx, tx, "work_order_closed", models.ActorStaff, &actor.ID, nil,
			models.JSONMap{"work_order_id": workOrderID})
	})
	if err != nil {
		return err
	}
	s.log.Info().Uint("work_order_id", workOrderID).Msg("work order closed")
	return nil
}

// Cancel terminates a non-terminal work order and kills every token on it so
// outstanding links stop working immediately.
func (s *WorkOrderService) Cancel(ctx context.Context, actor *models.User, workOrderID uint) error {
	return s.store.Atomically(ctx, func(tx repository.Store) error {
		wo, err := s.getWorkOrder(ctx, tx, workOrderID)
		if err != nil {
			return err
		}
		if wo.Status.Terminal() {
			return invalidStateErr("invalid_status")
		}
		wo.Status = models.StatusCanceled
		if err := tx.WorkOrders().Update(ctx, wo); err != nil {
			return err
		}
		if err := tx.Tokens().Deactivate(ctx, workOrderID, ""); err != nil {
			return err
		}
		return logActivity(ctx, tx, "work_order_canceled", models.ActorStaff, &actor.ID, nil,
			models.JSONMap{"work_order_id": workOrderID})
	})
}

// Delete hard-deletes the work order and all child quotes, interests, proofs
// and tokens.
func (s *WorkOrderService) Delete(ctx context.Context, actor *models.User, workOrderID uint) error {
	return s.store.Atomically(ctx, func(tx repository.Store) error {
		wo, err := s.getWorkOrder(ctx, tx, workOrderID)
		if err != nil {
			return err
		}
		ids := []uint{workOrderID}
		if err := tx.Tokens().DeleteByWorkOrders(ctx, ids); err != nil {
			return err
		}
		if err := tx.Proofs().DeleteByWorkOrders(ctx, ids); err != nil {
			return err
		}
		if err := tx.Quotes().DeleteByWorkOrders(ctx, ids); err != nil {
			return err
		}
		if err := tx.Interests().DeleteByWorkOrders(ctx, ids); err != nil {
			return err
		}
		if err := tx.WorkOrders().Delete(ctx, workOrderID); err != nil {
			return err
		}
		return logActivity(ctx, tx, "work_order_deleted", models.ActorStaff, &actor.ID, nil,
			models.JSONMap{"work_order_id": workOrderID, "property_id": wo.PropertyID})
	})
}

// MintPortalLink issues an additional portal link for the work order's
// current track, so more providers can be invited while the order is open.
func (s *WorkOrderService) MintPortalLink(ctx context.Context, actor *models.User, workOrderID uint) (map[string]string, error) {
	var value string
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		wo, err := s.getWorkOrder(ctx, tx, workOrderID)
		if err != nil {
			return err
		}
		var scope models.TokenScope
		switch {
		case wo.Type == models.WorkOrderTypeQuote &&
			(wo.Status == models.StatusQuoteRequested || wo.Status == models.StatusQuoteSubmitted):
			scope = models.ScopeQuotePortal
		case wo.Type == models.WorkOrderTypeFixed && wo.Status == models.StatusOfferOpen:
			scope = models.ScopeFixedInterest
		default:
			return invalidStateErr("invalid_status")
		}
		if value, err = s.mintToken(ctx, tx, workOrderID, scope, nil); err != nil {
			return err
		}
		return logActivity(ctx, tx, "portal_link_created", models.ActorStaff, &actor.ID, nil,
			models.JSONMap{"work_order_id": workOrderID, "scope": string(scope)})
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"portal": portalLink(value)}, nil
}

func (s *WorkOrderService) mintToken(ctx context.Context, tx repository.Store, workOrderID uint, scope models.TokenScope, interestID *uint) (string, error) {
	value, err := s.tokens.NewValue()
	if err != nil {
		return "", err
	}
	tok := &models.WorkOrderToken{
		WorkOrderID: workOrderID,
		TokenHash:   s.tokens.Hash(value),
		Scope:       scope,
		ExpiresAt:   s.tokens.ExpiresAt(),
		InterestID:  interestID,
		IsActive:    true,
	}
	if err := tx.Tokens().Create(ctx, tok); err != nil {
		return "", err
	}
	return value, nil
}

func (s *WorkOrderService) getWorkOrder(ctx context.Context, tx repository.Store, id uint) (*models.WorkOrder, error) {
	wo, err := tx.WorkOrders().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundErr("not_found")
		}
		return nil, err
	}
	return wo, nil
}

func (s *WorkOrderService) checkOwnerAccess(ctx context.Context, user *models.User, propertyID uint) error {
	if user.Role == models.RoleAdmin {
		return nil
	}
	prop, err := s.store.Properties().Get(ctx, propertyID)
	if err != nil {
		return nil // dangling property reference; nothing to scope by
	}
	if prop.OwnerUserID != user.ID {
		return forbiddenErr("forbidden_owner")
	}
	return nil
}

// decorate refreshes the cached display metadata from the owning property.
// Not authoritative, recomputed on every read.
func (s *WorkOrderService) decorate(ctx context.Context, wo *models.WorkOrder) {
	prop, err := s.store.Properties().Get(ctx, wo.PropertyID)
	if err != nil {
		return
	}
	if wo.Display == nil {
		wo.Display = models.JSONMap{}
	}
	wo.Display["property_tag"] = prop.Tag
	wo.Display["property_address"] = prop.Address
}

func portalLink(tokenValue string) string {
	return "/p/wo/" + tokenValue
}
