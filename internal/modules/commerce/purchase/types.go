package purchase

import "errors"

type CreatePurchaseDTO struct {
	DeckID string `json:"deck_id" binding:"required"`
}

type CompletePurchaseDTO struct {
	Provider    string `json:"provider" binding:"required"`
	ProviderRef string `json:"provider_ref" binding:"required"`
}

var (
	errDeckNotFound       = errors.New("deck not found")
	errDeckNotPurchasable = errors.New("deck is not purchasable")
	errAlreadyUnlocked    = errors.New("deck already unlocked")
	errNotPending         = errors.New("purchase is not pending")
)
