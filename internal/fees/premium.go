package fees

import (
	"time"

	"monetization-service/internal/models"
)

// IsActivePremium reports whether the user's premium benefit is active at the
// given instant. The stored flag alone is not enough: the expiry must be set
// and strictly in the future, so an elapsed subscription stops counting the
// moment it expires.
func IsActivePremium(u *models.User, now time.Time) bool {
	return u.IsPremium && u.PremiumExpires != nil && u.PremiumExpires.After(now)
}

// PremiumExpiry returns the expiry granted by a subscription taken at the
// given instant. A new subscription replaces any previous expiry rather than
// stacking on top of it.
func PremiumExpiry(now time.Time) time.Time {
	return now.AddDate(0, 1, 0)
}
