package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
	"github.com/rented/backend/internal/token"
)

// PortalService handles everything reachable through a portal token: the
// public work-order view and the external submissions. It shares the store
// with the staff-side lifecycle service.
type PortalService struct {
	store  repository.Store
	tokens *token.Authority
	blobs  BlobStore
}

// NewPortalService builds the portal-facing service.
func NewPortalService(store repository.Store, tokens *token.Authority, blobs BlobStore) *PortalService {
	return &PortalService{store: store, tokens: tokens, blobs: blobs}
}

// PortalView is what an external party sees for its work order.
type PortalView struct {
	WorkOrder     *models.WorkOrder         `json:"work_order"`
	AllowedAction models.PortalAction       `json:"allowed_action"`
	Quote         *models.WorkOrderQuote    `json:"quote"`
	Interest      *models.WorkOrderInterest `json:"interest"`
}

// QuoteInput is an external quote submission.
type QuoteInput struct {
	ProviderName  string
	ProviderPhone string
	Lines         models.QuoteLines
	TotalAmount   float64
}

// InterestInput is an external interest submission.
type InterestInput struct {
	ProviderName  string
	ProviderPhone string
}

// ProofInput is an external proof-of-work submission with its evidence file.
type ProofInput struct {
	ProviderName    string
	ProviderPhone   string
	PixKeyType      string
	PixKeyValue     string
	PixReceiverName string
	FileName        string
	File            []byte
}

// View resolves a token to its work order, the action the token currently
// authorizes and whichever submission is bound to the token.
func (s *PortalService) View(ctx context.Context, tokenValue string) (*PortalView, error) {
	tok, err := s.resolveToken(ctx, s.store, tokenValue)
	if err != nil {
		return nil, err
	}
	wo, err := s.store.WorkOrders().Get(ctx, tok.WorkOrderID)
	if err != nil {
		return nil, notFoundErr("not_found")
	}
	if prop, err := s.store.Properties().Get(ctx, wo.PropertyID); err == nil {
		if wo.Display == nil {
			wo.Display = models.JSONMap{}
		}
		wo.Display["property_tag"] = prop.Tag
		wo.Display["property_address"] = prop.Address
	}

	view := &PortalView{
		WorkOrder:     wo,
		AllowedAction: AllowedAction(tok.Scope, wo.Type, wo.Status),
	}
	if tok.QuoteID != nil {
		if q, err := s.store.Quotes().Get(ctx, *tok.QuoteID); err == nil {
			view.Quote = q
		}
	}
	if tok.InterestID != nil {
		if in, err := s.store.Interests().Get(ctx, *tok.InterestID); err == nil {
			view.Interest = in
		}
	}
	return view, nil
}

// SubmitQuote records an external provider quote. The token is bound to the
// quote with a conditional update, so a reused or raced link fails with
// DuplicateSubmission and the original quote stays untouched.
func (s *PortalService) SubmitQuote(ctx context.Context, tokenValue string, in QuoteInput) (*models.WorkOrderQuote, error) {
	if err := validateProvider(in.ProviderName, in.ProviderPhone); err != nil {
		return nil, err
	}
	var quote *models.WorkOrderQuote
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		tok, err := s.resolveToken(ctx, tx, tokenValue)
		if err != nil {
			return err
		}
		wo, err := tx.WorkOrders().Get(ctx, tok.WorkOrderID)
		if err != nil {
			return notFoundErr("not_found")
		}
		if tok.Scope != models.ScopeQuotePortal || wo.Type != models.WorkOrderTypeQuote {
			return scopeErr("forbidden_scope")
		}
		if wo.Status != models.StatusQuoteRequested && wo.Status != models.StatusQuoteSubmitted {
			return invalidStateErr("invalid_status")
		}
		if tok.QuoteID != nil {
			return duplicateErr("quote_already_submitted")
		}
		quote = &models.WorkOrderQuote{
			WorkOrderID:   wo.ID,
			ProviderName:  in.ProviderName,
			ProviderPhone: normalizePhone(in.ProviderPhone),
			Lines:         in.Lines,
			TotalAmount:   in.TotalAmount,
			Status:        models.SubmissionStatusSubmitted,
		}
		if err := tx.Quotes().Create(ctx, quote); err != nil {
			return err
		}
		won, err := tx.Tokens().BindQuote(ctx, tok.ID, quote.ID, nowUTC())
		if err != nil {
			return err
		}
		if !won {
			// a concurrent submission bound the token first
			return duplicateErr("quote_already_submitted")
		}
		wo.Status = models.StatusQuoteSubmitted
		if err := tx.WorkOrders().Update(ctx, wo); err != nil {
			return err
		}
		return logActivity(ctx, tx, "quote_submitted", models.ActorPortal, nil, &tok.ID,
			models.JSONMap{"work_order_id": wo.ID, "quote_id": quote.ID})
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// SubmitInterest records interest in a fixed offer. The offer stays open, so
// the same shared link may collect interests from several providers; the
// token remembers the first one it produced.
func (s *PortalService) SubmitInterest(ctx context.Context, tokenValue string, in InterestInput) (*models.WorkOrderInterest, error) {
	if err := validateProvider(in.ProviderName, in.ProviderPhone); err != nil {
		return nil, err
	}
	var interest *models.WorkOrderInterest
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		tok, err := s.resolveToken(ctx, tx, tokenValue)
		if err != nil {
			return err
		}
		wo, err := tx.WorkOrders().Get(ctx, tok.WorkOrderID)
		if err != nil {
			return notFoundErr("not_found")
		}
		if tok.Scope != models.ScopeFixedInterest || wo.Type != models.WorkOrderTypeFixed {
			return scopeErr("forbidden_scope")
		}
		if wo.Status != models.StatusOfferOpen {
			return invalidStateErr("invalid_status")
		}
		interest = &models.WorkOrderInterest{
			WorkOrderID:   wo.ID,
			ProviderName:  in.ProviderName,
			ProviderPhone: normalizePhone(in.ProviderPhone),
			Status:        models.SubmissionStatusSubmitted,
		}
		if err := tx.Interests().Create(ctx, interest); err != nil {
			return err
		}
		if _, err := tx.Tokens().BindInterest(ctx, tok.ID, interest.ID, nowUTC()); err != nil {
			return err
		}
		return logActivity(ctx, tx, "interest_submitted", models.ActorPortal, nil, &tok.ID,
			models.JSONMap{"work_order_id": wo.ID, "interest_id": interest.ID})
	})
	if err != nil {
		return nil, err
	}
	return interest, nil
}

// SubmitProof stores the evidence file and records the proof, moving the
// work order to proof_submitted.
func (s *PortalService) SubmitProof(ctx context.Context, tokenValue string, in ProofInput) (*models.WorkOrderProof, error) {
	if err := validateProvider(in.ProviderName, in.ProviderPhone); err != nil {
		return nil, err
	}
	if len(in.PixKeyType) < 3 || len(in.PixKeyValue) < 3 || len(in.PixReceiverName) < 2 {
		return nil, validationErr("invalid_pix_fields")
	}
	if len(in.File) == 0 {
		return nil, validationErr("missing_evidence_file")
	}

	var proof *models.WorkOrderProof
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		tok, err := s.resolveToken(ctx, tx, tokenValue)
		if err != nil {
			return err
		}
		wo, err := tx.WorkOrders().Get(ctx, tok.WorkOrderID)
		if err != nil {
			return notFoundErr("not_found")
		}
		switch wo.Status {
		case models.StatusApprovedForExecution, models.StatusInProgress,
			models.StatusReworkRequested, models.StatusAssigned:
		default:
			return invalidStateErr("invalid_status")
		}
		if wo.Type == models.WorkOrderTypeQuote && tok.Scope != models.ScopeQuotePortal {
			return scopeErr("forbidden_scope")
		}
		if wo.Type == models.WorkOrderTypeFixed && tok.Scope != models.ScopeExecution {
			return scopeErr("forbidden_scope")
		}

		saved, err := s.blobs.Save("proof", in.FileName, in.File)
		if err != nil {
			return errors.Wrap(err, "store evidence file")
		}
		doc := &models.Document{
			PropertyID: wo.PropertyID,
			Name:       saved.Name,
			Path:       saved.Path,
			Kind:       "work_order_proof",
			Status:     models.DocumentStatusUploaded,
		}
		if err := tx.Documents().Create(ctx, doc); err != nil {
			return err
		}
		proof = &models.WorkOrderProof{
			WorkOrderID:     wo.ID,
			ProviderName:    in.ProviderName,
			ProviderPhone:   normalizePhone(in.ProviderPhone),
			PixKeyType:      in.PixKeyType,
			PixKeyValue:     in.PixKeyValue,
			PixReceiverName: in.PixReceiverName,
			DocumentID:      doc.ID,
			Status:          models.SubmissionStatusSubmitted,
		}
		if err := tx.Proofs().Create(ctx, proof); err != nil {
			return err
		}
		wo.Status = models.StatusProofSubmitted
		if err := tx.WorkOrders().Update(ctx, wo); err != nil {
			return err
		}
		return logActivity(ctx, tx, "proof_submitted", models.ActorPortal, nil, &tok.ID,
			models.JSONMap{"work_order_id": wo.ID, "proof_id": proof.ID, "document_id": doc.ID})
	})
	if err != nil {
		return nil, err
	}
	return proof, nil
}

// resolveToken hashes the presented value, loads the stored record and
// classifies it. The three failures stay distinguishable all the way to the
// API response.
func (s *PortalService) resolveToken(ctx context.Context, tx repository.Store, value string) (*models.WorkOrderToken, error) {
	tok, err := tx.Tokens().GetByHash(ctx, s.tokens.Hash(value))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domainErr(token.ErrNotFound, "invalid_token")
		}
		return nil, err
	}
	switch err := s.tokens.Check(tok); {
	case errors.Is(err, token.ErrInactive):
		return nil, domainErr(token.ErrInactive, "token_inactive")
	case errors.Is(err, token.ErrExpired):
		return nil, domainErr(token.ErrExpired, "token_expired")
	case err != nil:
		return nil, err
	}
	return tok, nil
}

func validateProvider(name, phone string) error {
	if len(name) < 2 || len(name) > 160 {
		return validationErr("invalid_provider_name")
	}
	if len(phone) < 6 || len(phone) > 40 {
		return validationErr("invalid_provider_phone")
	}
	return nil
}

var nonDigits = regexp.MustCompile(`\D`)

// normalizePhone coerces Brazilian phone numbers to +55 E.164 form and leaves
// anything else as typed.
func normalizePhone(value string) string {
	digits := nonDigits.ReplaceAllString(value, "")
	if digits == "" {
		return value
	}
	if strings.HasPrefix(digits, "55") && (len(digits) == 12 || len(digits) == 13) {
		return "+" + digits
	}
	if len(digits) == 10 || len(digits) == 11 {
		return "+55" + digits
	}
	if strings.HasPrefix(digits, "00") {
		return "+" + digits
	}
	return digits
}
