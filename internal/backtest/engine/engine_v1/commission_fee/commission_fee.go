package commission_fee

type CommissionFee interface {
	// Calculate the commission fee for a fill with the given notional value
	// (quantity x price) and returns the fee in USD
	Calculate(notional float64) float64
}

type Broker string

const (
	BrokerPercentage Broker = "percentage"
	BrokerZero       Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerPercentage,
	BrokerZero,
}

// DefaultCommissionRate matches a typical discount broker taking 0.1% of
// notional per fill.
const DefaultCommissionRate = 0.001

func GetCommissionFeeHandler(broker Broker, rate float64) CommissionFee {
	switch broker {
	case BrokerPercentage:
		return NewPercentageCommissionFee(rate)
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}
