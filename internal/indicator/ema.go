package indicator

// EMA computes the exponential moving average of closes with the given period.
// The first value is seeded with the simple average of the first period closes,
// then each later close is folded in with alpha = 2/(period+1).
// With fewer closes than period the simple average of what is available is returned.
func EMA(closes []float64, period int) float64 {
	if len(closes) == 0 || period <= 0 {
		return 0
	}

	if len(closes) < period {
		return sma(closes)
	}

	ema := sma(closes[:period])
	alpha := 2.0 / float64(period+1)

	for i := period; i < len(closes); i++ {
		ema = (closes[i] * alpha) + (ema * (1 - alpha))
	}

	return ema
}

func sma(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
