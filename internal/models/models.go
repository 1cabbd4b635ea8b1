package models

import "time"

// Roles accepted for user accounts.
const (
	RoleAdmin           = "admin"
	RoleRealEstate      = "real_estate"
	RoleFinance         = "finance"
	RoleServiceProvider = "service_provider"
	RolePropertyOwner   = "property_owner"
)

// User is a staff or owner account authenticated by session cookie.
type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Username     string  `gorm:"size:80;not null;uniqueIndex" json:"username"`
	PasswordHash string  `gorm:"size:255;not null" json:"-"`
	Role         string  `gorm:"size:50;not null" json:"role"`
	Name         string  `gorm:"size:120;not null" json:"name"`
	CellNumber   string  `gorm:"size:20;not null" json:"cell_number"`
	Email        string  `gorm:"size:160" json:"email"`
	CPF          string  `gorm:"size:20" json:"cpf"`
	Display      JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"display"`
}

// Session is a server-side login session referenced by an opaque cookie value.
type Session struct {
	ID        string     `gorm:"size:64;primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
}

// Property is a managed rental unit. Structural attributes are typed columns;
// Display carries open-ended presentation metadata only.
type Property struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OwnerUserID   uint      `gorm:"not null;index" json:"owner_user_id"`
	Tag           string    `gorm:"size:80;not null" json:"tag"`
	Address       string    `gorm:"size:255;not null" json:"address"`
	Bedrooms      int       `gorm:"not null" json:"bedrooms"`
	Bathrooms     int       `gorm:"not null" json:"bathrooms"`
	ParkingSpaces int       `gorm:"not null" json:"parking_spaces"`
	IsRented      bool      `gorm:"not null" json:"is_rented"`
	DesiredRent   *float64  `gorm:"type:numeric(12,2)" json:"desired_rent"`
	CurrentRent   *float64  `gorm:"type:numeric(12,2)" json:"current_rent"`
	Photos        PhotoList `gorm:"type:jsonb;not null;default:'[]'" json:"photos"`
	Display       JSONMap   `gorm:"type:jsonb;not null;default:'{}'" json:"display"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PropertyContract mirrors the lease details captured for a property as
// typed columns so staff can query them without digging through display
// metadata. One row per property, rewritten on every property save that
// carries contract data.
type PropertyContract struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	PropertyID uint  `gorm:"not null;uniqueIndex" json:"property_id"`
	DocumentID *uint `gorm:"index" json:"document_id"`

	ContractTitle    string `gorm:"size:255" json:"contract_title"`
	ContractNumber   string `gorm:"size:120" json:"contract_number"`
	DocumentPlatform string `gorm:"size:80" json:"document_platform"`
	DocumentCode     string `gorm:"size:120" json:"document_code"`

	LandlordName          string `gorm:"size:160" json:"landlord_name"`
	LandlordCPF           string `gorm:"size:40" json:"landlord_cpf"`
	LandlordRG            string `gorm:"size:40" json:"landlord_rg"`
	TenantName            string `gorm:"size:160" json:"tenant_name"`
	TenantCPF             string `gorm:"size:40" json:"tenant_cpf"`
	TenantRG              string `gorm:"size:40" json:"tenant_rg"`
	TenantAddress         string `gorm:"size:255" json:"tenant_address"`
	GuarantorName         string `gorm:"size:160" json:"guarantor_name"`
	GuarantorCPF          string `gorm:"size:40" json:"guarantor_cpf"`
	GuarantorRG           string `gorm:"size:40" json:"guarantor_rg"`
	AdministratorName     string `gorm:"size:160" json:"administrator_name"`
	GuaranteeProviderName string `gorm:"size:160" json:"guarantee_provider_name"`

	PaymentMethod        string `gorm:"size:80" json:"payment_method"`
	IncludesCondominium  bool   `json:"includes_condominium"`
	IncludesIPTU         bool   `json:"includes_iptu"`
	LateFeePercent       string `gorm:"size:40" json:"late_fee_percent"`
	InterestPercentMonth string `gorm:"size:40" json:"interest_percent_month"`
	RentAmountCents      *int   `json:"rent_amount_cents"`
	RentCurrency         string `gorm:"size:3" json:"rent_currency"`
	PaymentDay           *int   `json:"payment_day"`
	IndexationType       string `gorm:"size:80" json:"indexation_type"`

	StartDate  string `gorm:"size:40" json:"start_date"`
	EndDate    string `gorm:"size:40" json:"end_date"`
	TermMonths *int   `json:"term_months"`
	SignDate   string `gorm:"size:40" json:"sign_date"`

	ForumCity   string `gorm:"size:120" json:"forum_city"`
	ForumState  string `gorm:"size:40" json:"forum_state"`
	SignedCity  string `gorm:"size:120" json:"signed_city"`
	SignedState string `gorm:"size:40" json:"signed_state"`

	Witnesses       string `gorm:"size:255" json:"witnesses"`
	Notes           string `gorm:"size:255" json:"notes"`
	SensitiveTopics string `gorm:"size:255" json:"sensitive_topics"`

	Fields    JSONMap   `gorm:"type:jsonb;not null;default:'{}'" json:"fields"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Document lifecycle statuses used by the processing pipeline.
const (
	DocumentStatusUploaded    = "uploaded"
	DocumentStatusQueued      = "queued"
	DocumentStatusNeedsReview = "needs_review"
	DocumentStatusConfirmed   = "confirmed"
)

// Document is an uploaded file attached to a property.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Path       string    `gorm:"size:512;not null" json:"path"`
	Kind       string    `gorm:"size:40" json:"kind"`
	Status     string    `gorm:"size:40;not null" json:"status"`
	DocType    string    `gorm:"size:40" json:"doc_type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DocumentExtraction is the structured result the pipeline produced for one
// document.
type DocumentExtraction struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	DocumentID uint       `gorm:"not null;index" json:"document_id"`
	DocType    string     `gorm:"size:40" json:"doc_type"`
	Fields     JSONMap    `gorm:"type:jsonb;not null;default:'{}'" json:"fields"`
	Summary    string     `gorm:"size:2000" json:"summary"`
	Alerts     StringList `gorm:"type:jsonb;not null;default:'[]'" json:"alerts"`
	Confidence float64    `gorm:"not null" json:"confidence"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Actor types recorded in the activity log.
const (
	ActorStaff  = "staff"
	ActorPortal = "portal"
	ActorSystem = "system"
)

// ActivityEntry is one audited event.
type ActivityEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Event     string    `gorm:"size:80;not null" json:"event"`
	ActorType string    `gorm:"size:20;not null" json:"actor_type"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	TokenID   *uint     `json:"token_id"`
	Detail    JSONMap   `gorm:"type:jsonb;not null;default:'{}'" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
