package types

import (
	"github.com/moznion/go-optional"
)

type IndicatorType string

const (
	IndicatorTypeRSI               IndicatorType = "rsi"
	IndicatorTypeEMAFast           IndicatorType = "ema_fast"
	IndicatorTypeEMASlow           IndicatorType = "ema_slow"
	IndicatorTypeMACD              IndicatorType = "macd"
	IndicatorTypeBollingerBands    IndicatorType = "bollinger_bands"
	IndicatorTypeATR               IndicatorType = "atr"
	IndicatorTypeADX               IndicatorType = "adx"
	IndicatorTypeStochastic        IndicatorType = "stochastic_oscillator"
	IndicatorTypeWilliamsR         IndicatorType = "williams_r"
	IndicatorTypeCCI               IndicatorType = "cci"
	IndicatorTypeMomentum          IndicatorType = "momentum"
	IndicatorTypeSupportResistance IndicatorType = "support_resistance"
	IndicatorTypeTrendStrength     IndicatorType = "trend_strength"
	IndicatorTypeVolatility        IndicatorType = "volatility"
)

type MACDValue struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

type BollingerValue struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// PercentB is where price sits inside the band, 0 at the lower band and 1 at the upper.
// It is None when the band has zero width.
func (b BollingerValue) PercentB(price float64) optional.Option[float64] {
	width := b.Upper - b.Lower
	if width == 0 {
		return optional.None[float64]()
	}

	return optional.Some((price - b.Lower) / width)
}

type StochasticValue struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// Indicators is the snapshot computed from one candle window.
// An indicator is None when the window is too short to compute it.
type Indicators struct {
	RSI           optional.Option[float64]         `json:"rsi"`
	EMAFast       optional.Option[float64]         `json:"emaFast"`
	EMASlow       optional.Option[float64]         `json:"emaSlow"`
	MACD          optional.Option[MACDValue]       `json:"macd"`
	Bollinger     optional.Option[BollingerValue]  `json:"bollinger"`
	ATR           optional.Option[float64]         `json:"atr"`
	ADX           optional.Option[float64]         `json:"adx"`
	Stochastic    optional.Option[StochasticValue] `json:"stochastic"`
	WilliamsR     optional.Option[float64]         `json:"williamsR"`
	CCI           optional.Option[float64]         `json:"cci"`
	Momentum      optional.Option[float64]         `json:"momentum"`
	Support       optional.Option[float64]         `json:"support"`
	Resistance    optional.Option[float64]         `json:"resistance"`
	TrendStrength optional.Option[float64]         `json:"trendStrength"`
	Volatility    optional.Option[float64]         `json:"volatility"`
}

// Merge copies every indicator present in other into i.
func (i *Indicators) Merge(other Indicators) {
	mergeOpt(&i.RSI, other.RSI)
	mergeOpt(&i.EMAFast, other.EMAFast)
	mergeOpt(&i.EMASlow, other.EMASlow)
	mergeOpt(&i.MACD, other.MACD)
	mergeOpt(&i.Bollinger, other.Bollinger)
	mergeOpt(&i.ATR, other.ATR)
	mergeOpt(&i.ADX, other.ADX)
	mergeOpt(&i.Stochastic, other.Stochastic)
	mergeOpt(&i.WilliamsR, other.WilliamsR)
	mergeOpt(&i.CCI, other.CCI)
	mergeOpt(&i.Momentum, other.Momentum)
	mergeOpt(&i.Support, other.Support)
	mergeOpt(&i.Resistance, other.Resistance)
	mergeOpt(&i.TrendStrength, other.TrendStrength)
	mergeOpt(&i.Volatility, other.Volatility)
}

func mergeOpt[T any](dst *optional.Option[T], src optional.Option[T]) {
	if src.IsSome() {
		*dst = src
	}
}

// Present lists the indicators that carry a value, in declaration order.
func (i Indicators) Present() []IndicatorType {
	var out []IndicatorType

	add := func(ok bool, t IndicatorType) {
		if ok {
			out = append(out, t)
		}
	}

	add(i.RSI.IsSome(), IndicatorTypeRSI)
	add(i.EMAFast.IsSome(), IndicatorTypeEMAFast)
	add(i.EMASlow.IsSome(), IndicatorTypeEMASlow)
	add(i.MACD.IsSome(), IndicatorTypeMACD)
	add(i.Bollinger.IsSome(), IndicatorTypeBollingerBands)
	add(i.ATR.IsSome(), IndicatorTypeATR)
	add(i.ADX.IsSome(), IndicatorTypeADX)
	add(i.Stochastic.IsSome(), IndicatorTypeStochastic)
	add(i.WilliamsR.IsSome(), IndicatorTypeWilliamsR)
	add(i.CCI.IsSome(), IndicatorTypeCCI)
	add(i.Momentum.IsSome(), IndicatorTypeMomentum)
	add(i.Support.IsSome() && i.Resistance.IsSome(), IndicatorTypeSupportResistance)
	add(i.TrendStrength.IsSome(), IndicatorTypeTrendStrength)
	add(i.Volatility.IsSome(), IndicatorTypeVolatility)

	return out
}

// IndicatorPeriods holds the lookback of each indicator. Zero means "use the default".
type IndicatorPeriods struct {
	RSI               int `yaml:"rsi" json:"rsi,omitempty" validate:"gte=0" jsonschema:"title=RSI period,default=14"`
	EMAFast           int `yaml:"ema_fast" json:"emaFast,omitempty" validate:"gte=0" jsonschema:"title=Fast EMA period,default=12"`
	EMASlow           int `yaml:"ema_slow" json:"emaSlow,omitempty" validate:"gte=0" jsonschema:"title=Slow EMA period,default=26"`
	MACDSignal        int `yaml:"macd_signal" json:"macdSignal,omitempty" validate:"gte=0" jsonschema:"title=MACD signal period,default=9"`
	Bollinger         int `yaml:"bollinger" json:"bollinger,omitempty" validate:"gte=0" jsonschema:"title=Bollinger period,default=20"`
	ATR               int `yaml:"atr" json:"atr,omitempty" validate:"gte=0" jsonschema:"title=ATR period,default=14"`
	ADX               int `yaml:"adx" json:"adx,omitempty" validate:"gte=0" jsonschema:"title=ADX period,default=14"`
	StochasticK       int `yaml:"stochastic_k" json:"stochasticK,omitempty" validate:"gte=0" jsonschema:"title=Stochastic %K period,default=14"`
	StochasticD       int `yaml:"stochastic_d" json:"stochasticD,omitempty" validate:"gte=0" jsonschema:"title=Stochastic %D period,default=3"`
	WilliamsR         int `yaml:"williams_r" json:"williamsR,omitempty" validate:"gte=0" jsonschema:"title=Williams %R period,default=14"`
	CCI               int `yaml:"cci" json:"cci,omitempty" validate:"gte=0" jsonschema:"title=CCI period,default=20"`
	Momentum          int `yaml:"momentum" json:"momentum,omitempty" validate:"gte=0" jsonschema:"title=Momentum period,default=10"`
	SupportResistance int `yaml:"support_resistance" json:"supportResistance,omitempty" validate:"gte=0" jsonschema:"title=Support/resistance period,default=20"`
	TrendStrength     int `yaml:"trend_strength" json:"trendStrength,omitempty" validate:"gte=0" jsonschema:"title=Trend strength period,default=20"`
	Volatility        int `yaml:"volatility" json:"volatility,omitempty" validate:"gte=0" jsonschema:"title=Volatility period,default=20"`
}

func DefaultIndicatorPeriods() IndicatorPeriods {
	return IndicatorPeriods{
		RSI:               14,
		EMAFast:           12,
		EMASlow:           26,
		MACDSignal:        9,
		Bollinger:         20,
		ATR:               14,
		ADX:               14,
		StochasticK:       14,
		StochasticD:       3,
		WilliamsR:         14,
		CCI:               20,
		Momentum:          10,
		SupportResistance: 20,
		TrendStrength:     20,
		Volatility:        20,
	}
}

// WithDefaults fills every zero period from DefaultIndicatorPeriods.
func (p IndicatorPeriods) WithDefaults() IndicatorPeriods {
	d := DefaultIndicatorPeriods()
	fill := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}

	fill(&p.RSI, d.RSI)
	fill(&p.EMAFast, d.EMAFast)
	fill(&p.EMASlow, d.EMASlow)
	fill(&p.MACDSignal, d.MACDSignal)
	fill(&p.Bollinger, d.Bollinger)
	fill(&p.ATR, d.ATR)
	fill(&p.ADX, d.ADX)
	fill(&p.StochasticK, d.StochasticK)
	fill(&p.StochasticD, d.StochasticD)
	fill(&p.WilliamsR, d.WilliamsR)
	fill(&p.CCI, d.CCI)
	fill(&p.Momentum, d.Momentum)
	fill(&p.SupportResistance, d.SupportResistance)
	fill(&p.TrendStrength, d.TrendStrength)
	fill(&p.Volatility, d.Volatility)

	return p
}
