package service

import "github.com/rented/backend/internal/models"

// AllowedAction computes the single action a portal token currently
// authorizes for its work order. The result depends on live status and must
// be re-derived on every access, never cached: status can change between
// issuance and use of a token.
func AllowedAction(scope models.TokenScope, woType models.WorkOrderType, status models.WorkOrderStatus) models.PortalAction {
	if status.Terminal() {
		return models.ActionReadOnly
	}
	switch scope {
	case models.ScopeQuotePortal:
		if woType != models.WorkOrderTypeQuote {
			return models.ActionReadOnly
		}
		switch status {
		case models.StatusQuoteRequested, models.StatusQuoteSubmitted:
			return models.ActionSubmitQuote
		case models.StatusApprovedForExecution, models.StatusInProgress, models.StatusReworkRequested:
			return models.ActionSubmitProof
		}
	case models.ScopeFixedInterest:
		if woType == models.WorkOrderTypeFixed && status == models.StatusOfferOpen {
			return models.ActionSubmitInterest
		}
	case models.ScopeExecution:
		if woType != models.WorkOrderTypeFixed {
			return models.ActionReadOnly
		}
		switch status {
		case models.StatusAssigned, models.StatusInProgress, models.StatusReworkRequested:
			return models.ActionSubmitProof
		}
	}
	return models.ActionReadOnly
}
