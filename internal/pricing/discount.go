package pricing

const (
	// MaxVolumeQuantity is the largest quantity a volume pricing table is built for.
	MaxVolumeQuantity = 100
	// MaxOrderQuantity bounds the quantity of a single quoted item.
	MaxOrderQuantity = 1000
)

type discountTier struct {
	minQuantity int
	percentage  float64
}

// volumeDiscounts is ordered from the largest threshold down. Tiers do not stack.
var volumeDiscounts = []discountTier{
	{minQuantity: 10, percentage: 10},
	{minQuantity: 5, percentage: 5},
	{minQuantity: 3, percentage: 2},
}

// DiscountPercentage returns the volume discount, in percent, for quantity.
func DiscountPercentage(quantity int) float64 {
	for _, t := range volumeDiscounts {
		if quantity >= t.minQuantity {
			return t.percentage
		}
	}
	return 0
}

// volumeScheduleLength is the number of rows in a volume pricing table.
func volumeScheduleLength(quantity int) int {
	return max(10, quantity)
}
