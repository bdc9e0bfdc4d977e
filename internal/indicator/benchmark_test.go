package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-gate/internal/types"
)

func BenchmarkExtractSequential(b *testing.B) {
	e, err := NewExtractor(types.DefaultIndicatorPeriods())
	if err != nil {
		b.Fatal(err)
	}

	candles := waveCandles(200)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := e.Extract(candles); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExtractParallel(b *testing.B) {
	e, err := NewExtractor(types.DefaultIndicatorPeriods(), WithParallelism(4))
	if err != nil {
		b.Fatal(err)
	}

	candles := waveCandles(200)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := e.Extract(candles); err != nil {
			b.Fatal(err)
		}
	}
}
