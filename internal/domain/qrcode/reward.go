package qrcode

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// Reward is what an admissible scan yields: loyalty points, a discount
// amount, or nothing for info codes.
type Reward struct {
	Points   int32
	Discount decimal.Decimal
}

// CalculateReward is pure: it never touches the scan counter. Discount codes
// need an order total to discount against; without one the discount is zero
// and only the scan itself is logged.
func CalculateReward(q *QRCode, orderTotal *decimal.Decimal) Reward {
	reward := Reward{Discount: decimal.Zero}

	switch q.codeType {
	case TypeLoyalty:
		if q.pointsValue != nil {
			reward.Points = *q.pointsValue
		}
	case TypeDiscount:
		if q.discountPercent != nil && orderTotal != nil {
			pct := decimal.NewFromFloat(*q.discountPercent)
			reward.Discount = orderTotal.Mul(pct).Div(oneHundred).Round(2)
		}
	case TypeInfo:
		// analytics only
	}

	return reward
}
