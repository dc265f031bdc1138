package models

// PurchaseStatus is the lifecycle state of a paid unlock.
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseRefunded  PurchaseStatus = "refunded"
)

// PurchaseModel records a paid deck unlock. Payment confirmation happens in an
// external payment provider; this row only tracks the resulting entitlement.
type PurchaseModel struct {
	Base
	UserID      string         `json:"user_id"      gorm:"index;not null"`
	DeckID      string         `json:"deck_id"      gorm:"index;not null"`
	AmountCents int            `json:"amount_cents"`
	Currency    string         `json:"currency"     gorm:"default:USD"`
	Provider    string         `json:"provider"`
	ProviderRef string         `json:"provider_ref"`
	Status      PurchaseStatus `json:"status"       gorm:"index;default:pending"`
}

func (PurchaseModel) TableName() string { return "purchases" }
