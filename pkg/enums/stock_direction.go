package enums

import "fmt"

// StockDirection marks a stock movement as an addition or a removal.
// Available quantity for a (product, size) is the signed sum of all
// movements, IN counting positive and OUT negative.
type StockDirection string

const (
	StockDirectionIn  StockDirection = "IN"
	StockDirectionOut StockDirection = "OUT"
)

var validStockDirections = []StockDirection{
	StockDirectionIn,
	StockDirectionOut,
}

// String implements fmt.Stringer.
func (s StockDirection) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockDirection.
func (s StockDirection) IsValid() bool {
	for _, candidate := range validStockDirections {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockDirection converts raw input into a StockDirection.
func ParseStockDirection(value string) (StockDirection, error) {
	for _, candidate := range validStockDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock direction %q", value)
}
