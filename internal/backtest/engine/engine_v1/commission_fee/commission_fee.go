package commission_fee

type CommissionFee interface {
	// Calculate the commission fee for a fill of quantity at price, in quote currency
	Calculate(quantity, price float64) float64
}

// ProportionalFee is implemented by fees that are a fixed fraction of notional.
type ProportionalFee interface {
	// Rate returns the fee as a fraction of notional, e.g. 0.001 for 10 bps
	Rate() float64
}

// QuantityFee is implemented by fees that depend on fill quantity only.
type QuantityFee interface {
	// FeeFor returns the fee of a fill of quantity at any price
	FeeFor(quantity float64) float64
}

type Broker string

const (
	BrokerBasisPoints       Broker = "basis_points"
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerBasisPoints,
	BrokerInteractiveBroker,
	BrokerZero,
}

// GetCommissionFeeHandler returns the fee model of broker. feeBps only applies to BrokerBasisPoints.
func GetCommissionFeeHandler(broker Broker, feeBps float64) CommissionFee {
	switch broker {
	case BrokerBasisPoints:
		return NewBasisPointsFee(feeBps)
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}

// RateOf returns the proportional rate of fee, or 0 when the fee is not proportional.
func RateOf(fee CommissionFee) float64 {
	if p, ok := fee.(ProportionalFee); ok {
		return p.Rate()
	}

	return 0
}

// FixedOf returns the price-independent part of fee for quantity, or 0 when fee scales with price.
func FixedOf(fee CommissionFee, quantity float64) float64 {
	if q, ok := fee.(QuantityFee); ok {
		return q.FeeFor(quantity)
	}

	return 0
}
