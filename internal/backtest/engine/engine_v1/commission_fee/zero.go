package commission_fee

// ZeroCommissionFee models a commission-free broker.
type ZeroCommissionFee struct{}

func NewZeroCommissionFee() *ZeroCommissionFee {
	return &ZeroCommissionFee{}
}

func (z *ZeroCommissionFee) Calculate(notional float64) float64 {
	return 0
}
