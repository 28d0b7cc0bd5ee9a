package fees

import (
	"strings"
	"time"

	"monetization-service/internal/models"

	"github.com/shopspring/decimal"
)

// ServiceCategoryPrefix marks service-marketplace listings, e.g.
// "services-assignments" or "services-tutoring".
const ServiceCategoryPrefix = "services-"

// Business ads run 30 days from their start date unless an explicit end date
// is supplied.
const businessAdDefaultDuration = 30

var (
	listingFee             = decimal.NewFromInt(10)
	serviceMarketplaceFee  = decimal.NewFromInt(15)
	contactUnlockFee       = decimal.NewFromInt(5)
	sponsoredListingFee    = decimal.NewFromInt(25)
	sponsoredListingFeePro = decimal.NewFromInt(15)
	premiumSubscriptionFee = decimal.NewFromInt(99)
	businessAdFee          = decimal.NewFromInt(199)

	partnershipFees = map[string]decimal.Decimal{
		models.SponsorshipLevelPlatinum: decimal.NewFromInt(5000),
		models.SponsorshipLevelGold:     decimal.NewFromInt(3000),
		models.SponsorshipLevelSilver:   decimal.NewFromInt(1500),
		models.SponsorshipLevelBronze:   decimal.NewFromInt(500),
	}
	partnershipFeeDefault = decimal.NewFromInt(1000)

	oneHundred = decimal.NewFromInt(100)
)

// Commission tier boundaries, checked from the highest tier down.
var commissionTiers = []struct {
	above decimal.Decimal
	rate  int64
}{
	{decimal.NewFromInt(50000), 5},
	{decimal.NewFromInt(20000), 4},
	{decimal.NewFromInt(10000), 3},
	{decimal.NewFromInt(5000), 2},
}

// ListingFee is the flat fee charged once at listing creation. Active premium
// users post for free.
func ListingFee(activePremium bool) decimal.Decimal {
	if activePremium {
		return decimal.Zero
	}
	return listingFee
}

// ServiceMarketplaceFee applies on top of the listing fee for listings in a
// services category. Returns zero for other categories and for active premium
// users.
func ServiceMarketplaceFee(category string, activePremium bool) decimal.Decimal {
	if activePremium || !strings.HasPrefix(category, ServiceCategoryPrefix) {
		return decimal.Zero
	}
	return serviceMarketplaceFee
}

// CommissionRate returns the high-value commission percentage for a listing
// price. Rates are monotonically non-decreasing in price and zero at or below
// 5000.
func CommissionRate(price decimal.Decimal) int64 {
	for _, tier := range commissionTiers {
		if price.GreaterThan(tier.above) {
			return tier.rate
		}
	}
	return 0
}

// CommissionAmount computes price * rate / 100 exactly.
func CommissionAmount(price decimal.Decimal, rate int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(rate)).Div(oneHundred)
}

// ContactUnlockFee is the flat fee to reveal a listing owner's contact info,
// waived for active premium users.
func ContactUnlockFee(activePremium bool) decimal.Decimal {
	if activePremium {
		return decimal.Zero
	}
	return contactUnlockFee
}

// SponsoredListingFee is the boost fee; active premium users get a 40%
// discount.
func SponsoredListingFee(activePremium bool) decimal.Decimal {
	if activePremium {
		return sponsoredListingFeePro
	}
	return sponsoredListingFee
}

// PremiumSubscriptionFee is the flat fee for one month of premium.
func PremiumSubscriptionFee() decimal.Decimal {
	return premiumSubscriptionFee
}

// BusinessAdFee is the flat fee per business ad posting.
func BusinessAdFee() decimal.Decimal {
	return businessAdFee
}

// BusinessAdEndDate resolves the ad's end date, defaulting to 30 days after
// the start.
func BusinessAdEndDate(start time.Time, end *time.Time) time.Time {
	if end != nil {
		return *end
	}
	return start.AddDate(0, 0, businessAdDefaultDuration)
}

// EventPartnershipFee is tiered by sponsorship level. Unrecognized levels
// fall back to a flat 1000.
func EventPartnershipFee(level string) decimal.Decimal {
	if fee, ok := partnershipFees[level]; ok {
		return fee
	}
	return partnershipFeeDefault
}
