package commission_fee

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommissionFeeTestSuite struct {
	suite.Suite
}

func TestCommissionFeeSuite(t *testing.T) {
	suite.Run(t, new(CommissionFeeTestSuite))
}

func (suite *CommissionFeeTestSuite) TestZeroCommissionFee() {
	fee := NewZeroCommissionFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		quantity float64
		expected float64
	}{
		{"zero quantity", 0, 0},
		{"small quantity", 10, 0},
		{"large quantity", 10000, 0},
		{"negative quantity", -100, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, fee.Calculate(tc.quantity, 100))
		})
	}
}

func (suite *CommissionFeeTestSuite) TestBasisPointsFee() {
	fee := NewBasisPointsFee(10)

	tests := []struct {
		name     string
		quantity float64
		price    float64
		expected float64
	}{
		{"zero quantity", 0, 100, 0},
		{"one unit", 1, 100, 0.1},
		{"fractional", 0.5, 20000, 10},
		{"negative notional", -1, 100, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, fee.Calculate(tc.quantity, tc.price), 1e-9)
		})
	}

	suite.InDelta(0.001, RateOf(fee), 1e-12)
}

func (suite *CommissionFeeTestSuite) TestInteractiveBrokerCommissionFee() {
	fee := NewInteractiveBrokerCommissionFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		quantity float64
		expected float64
	}{
		{"zero quantity", 0, 1.0},             // minimum fee is 1.0
		{"small quantity - min fee", 10, 1.0}, // 0.005 * 10 = 0.05 < 1.0, so min fee applies
		{"quantity at threshold", 200, 1.0},   // 0.005 * 200 = 1.0, so exactly at threshold
		{"large quantity", 1000, 5.0},         // 0.005 * 1000 = 5.0 > 1.0
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, fee.Calculate(tc.quantity, 50))
		})
	}

	suite.Equal(0.0, RateOf(fee))
	suite.Equal(1.0, FixedOf(fee, 10))
	suite.InDelta(2.5, FixedOf(fee, 500), 1e-12)
	suite.Equal(0.0, FixedOf(NewBasisPointsFee(10), 500))
}

func (suite *CommissionFeeTestSuite) TestGetCommissionFeeHandler() {
	tests := []struct {
		name         string
		broker       Broker
		expectedType string
	}{
		{"basis points", BrokerBasisPoints, "*commission_fee.BasisPointsFee"},
		{"interactive broker", BrokerInteractiveBroker, "*commission_fee.InteractiveBrokerCommissionFee"},
		{"zero commission", BrokerZero, "*commission_fee.ZeroCommissionFee"},
		{"unknown broker defaults to zero", Broker("unknown"), "*commission_fee.ZeroCommissionFee"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler := GetCommissionFeeHandler(tc.broker, 10)
			suite.Equal(tc.expectedType, fmt.Sprintf("%T", handler))
		})
	}
}
