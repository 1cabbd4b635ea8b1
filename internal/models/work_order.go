package models

import "time"

// WorkOrderType distinguishes the two maintenance tracks: quote-based pricing
// versus a flat offer published by staff.
type WorkOrderType string

const (
	WorkOrderTypeQuote WorkOrderType = "quote"
	WorkOrderTypeFixed WorkOrderType = "fixed"
)

// WorkOrderStatus is the life-cycle state of a work order.
type WorkOrderStatus string

const (
	// quote track
	StatusQuoteRequested       WorkOrderStatus = "quote_requested"
	StatusQuoteSubmitted       WorkOrderStatus = "quote_submitted"
	StatusApprovedForExecution WorkOrderStatus = "approved_for_execution"
	// fixed track
	StatusOfferOpen WorkOrderStatus = "offer_open"
	StatusAssigned  WorkOrderStatus = "assigned"
	// shared tail
	StatusInProgress      WorkOrderStatus = "in_progress"
	StatusReworkRequested WorkOrderStatus = "rework_requested"
	StatusProofSubmitted  WorkOrderStatus = "proof_submitted"
	StatusClosed          WorkOrderStatus = "closed"
	StatusCanceled        WorkOrderStatus = "canceled"
)

// Terminal reports whether no further transition is possible from s.
func (s WorkOrderStatus) Terminal() bool {
	return s == StatusClosed || s == StatusCanceled
}

// TokenScope is the capability category a portal token grants.
type TokenScope string

const (
	ScopeQuotePortal   TokenScope = "quote_portal"
	ScopeFixedInterest TokenScope = "fixed_interest"
	ScopeExecution     TokenScope = "execution"
)

// PortalAction is the single action a portal token currently authorizes.
type PortalAction string

const (
	ActionReadOnly       PortalAction = "read_only"
	ActionSubmitQuote    PortalAction = "submit_quote"
	ActionSubmitProof    PortalAction = "submit_proof"
	ActionSubmitInterest PortalAction = "submit_interest"
)

const (
	SubmissionStatusSubmitted       = "submitted"
	SubmissionStatusApproved        = "approved"
	SubmissionStatusRejected        = "rejected"
	SubmissionStatusSelected        = "selected"
	SubmissionStatusReworkRequested = "rework_requested"
)

// WorkOrder is one maintenance task against a property. Display holds cached
// presentation data only (property tag/address); it is recomputed on read and
// never authoritative.
type WorkOrder struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	PropertyID         uint            `gorm:"not null;index" json:"property_id"`
	Type               WorkOrderType   `gorm:"size:20;not null" json:"type"`
	Status             WorkOrderStatus `gorm:"size:40;not null" json:"status"`
	Title              string          `gorm:"size:160;not null" json:"title"`
	Description        string          `gorm:"size:2000;not null" json:"description"`
	OfferAmount        *float64        `gorm:"type:numeric(12,2)" json:"offer_amount"`
	ApprovedAmount     *float64        `gorm:"type:numeric(12,2)" json:"approved_amount"`
	AssignedInterestID *uint           `json:"assigned_interest_id"`
	CreatedByUserID    uint            `gorm:"not null" json:"created_by_user_id"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Display            JSONMap         `gorm:"type:jsonb;not null;default:'{}'" json:"display"`
}

// WorkOrderQuote is one provider's priced quote on a quote-type work order.
type WorkOrderQuote struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	WorkOrderID   uint       `gorm:"not null;index" json:"work_order_id"`
	ProviderName  string     `gorm:"size:160;not null" json:"provider_name"`
	ProviderPhone string     `gorm:"size:40;not null" json:"provider_phone"`
	Lines         QuoteLines `gorm:"type:jsonb;not null;default:'[]'" json:"lines"`
	TotalAmount   float64    `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status        string     `gorm:"size:40;not null" json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// WorkOrderInterest is one provider's declared interest in a fixed offer.
type WorkOrderInterest struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WorkOrderID   uint      `gorm:"not null;index" json:"work_order_id"`
	ProviderName  string    `gorm:"size:160;not null" json:"provider_name"`
	ProviderPhone string    `gorm:"size:40;not null" json:"provider_phone"`
	Status        string    `gorm:"size:40;not null" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WorkOrderProof is provider-submitted evidence of completed work plus pix
// payment routing details. Only the most recent proof per work order is
// actionable.
type WorkOrderProof struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	WorkOrderID     uint      `gorm:"not null;index" json:"work_order_id"`
	ProviderName    string    `gorm:"size:160;not null" json:"provider_name"`
	ProviderPhone   string    `gorm:"size:40;not null" json:"provider_phone"`
	PixKeyType      string    `gorm:"size:20;not null" json:"pix_key_type"`
	PixKeyValue     string    `gorm:"size:120;not null" json:"pix_key_value"`
	PixReceiverName string    `gorm:"size:160;not null" json:"pix_receiver_name"`
	DocumentID      uint      `gorm:"not null" json:"document_id"`
	Status          string    `gorm:"size:40;not null" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// WorkOrderToken grants one external party scoped access to one work order.
// Only the keyed hash of the token value is ever stored; the cleartext leaves
// the system exactly once, at mint time.
type WorkOrderToken struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WorkOrderID uint       `gorm:"not null;index" json:"work_order_id"`
	TokenHash   string     `gorm:"size:128;not null;uniqueIndex" json:"-"`
	Scope       TokenScope `gorm:"size:40;not null" json:"scope"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	QuoteID     *uint      `json:"quote_id"`
	InterestID  *uint      `json:"interest_id"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	UsedAt      *time.Time `json:"used_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Usable reports whether the token can still authorize anything at instant now.
func (t *WorkOrderToken) Usable(now time.Time) bool {
	return t.IsActive && now.Before(t.ExpiresAt)
}
