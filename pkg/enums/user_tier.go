package enums

import "fmt"

// UserTier is the pricing category assigned to a user at registration.
// Every price lookup resolves against the user's tier.
type UserTier string

const (
	UserTierRetailer   UserTier = "Retailer"
	UserTierCustomer   UserTier = "Customer"
	UserTierWholesaler UserTier = "Wholesaler"
)

var validUserTiers = []UserTier{
	UserTierRetailer,
	UserTierCustomer,
	UserTierWholesaler,
}

// String implements fmt.Stringer.
func (u UserTier) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserTier.
func (u UserTier) IsValid() bool {
	for _, candidate := range validUserTiers {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserTier converts raw input into a UserTier.
func ParseUserTier(value string) (UserTier, error) {
	for _, candidate := range validUserTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user tier %q", value)
}
