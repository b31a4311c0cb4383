package engine

import "errors"

// Business-rule rejections. These are expected gameplay outcomes and are
// returned, never panicked; callers surface them to the player.
var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientMaterials = errors.New("insufficient materials")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrInsufficientStars     = errors.New("insufficient stars")
	ErrInsufficientShares    = errors.New("insufficient shares")
	ErrInsufficientWorkers   = errors.New("insufficient workers")
	ErrInvalidSlotState      = errors.New("invalid slot state")
	ErrUnknownItem           = errors.New("unknown item")
	ErrUnknownRecipe         = errors.New("unknown recipe")
	ErrUnknownBuilding       = errors.New("unknown building")
	ErrUnknownTicker         = errors.New("unknown ticker")
	ErrUnknownListing        = errors.New("unknown listing")
	ErrUnknownWorker         = errors.New("unknown worker")
)

// IsRejection reports whether err is a business-rule rejection rather
// than an infrastructure failure.
func IsRejection(err error) bool {
	for _, r := range []error{
		ErrInsufficientFunds, ErrInsufficientMaterials, ErrInsufficientResources,
		ErrInsufficientStars, ErrInsufficientShares, ErrInsufficientWorkers,
		ErrInvalidSlotState, ErrUnknownItem, ErrUnknownRecipe, ErrUnknownBuilding,
		ErrUnknownTicker, ErrUnknownListing, ErrUnknownWorker,
	} {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
