package commission_fee

// BasisPointsFee charges a fixed number of basis points on notional.
type BasisPointsFee struct {
	bps float64
}

func NewBasisPointsFee(bps float64) CommissionFee {
	return &BasisPointsFee{bps: bps}
}

func (c *BasisPointsFee) Calculate(quantity, price float64) float64 {
	notional := quantity * price
	if notional <= 0 {
		return 0
	}

	return notional * c.Rate()
}

func (c *BasisPointsFee) Rate() float64 {
	return c.bps / 10000
}
