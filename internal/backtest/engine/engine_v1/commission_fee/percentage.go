package commission_fee

// PercentageCommissionFee charges a fixed fraction of the notional value on
// every fill.
type PercentageCommissionFee struct {
	rate float64
}

func NewPercentageCommissionFee(rate float64) *PercentageCommissionFee {
	if rate < 0 {
		rate = 0
	}
	return &PercentageCommissionFee{rate: rate}
}

func (p *PercentageCommissionFee) Calculate(notional float64) float64 {
	if notional <= 0 {
		return 0
	}
	return notional * p.rate
}
