package utils

import "go-propmarket/models"

// MarginFor returns the platform fee for a property price using the tiered
// rate schedule. Each band is inclusive on its upper bound, so a price sitting
// exactly on a boundary pays the lower rate.
//
//	0 < price <= 50,000       5%
//	price <= 500,000         10%
//	price <= 2,000,000       12%
//	price > 2,000,000        15%
func MarginFor(price float64) (float64, error) {
	if price <= 0 {
		return 0, models.ErrInvalidPrice
	}
	switch {
	case price <= 50000:
		return price * 0.05, nil
	case price <= 500000:
		return price * 0.10, nil
	case price <= 2000000:
		return price * 0.12, nil
	default:
		return price * 0.15, nil
	}
}
