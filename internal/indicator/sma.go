package indicator

// SMA calculates Simple Moving Average
// Returns slice of length: len(prices) - period + 1
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)

	// Calculate first SMA
	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	result = append(result, sum/float64(period))

	// Rolling calculation
	for i := period; i < len(prices); i++ {
		sum = sum - prices[i-period] + prices[i]
		result = append(result, sum/float64(period))
	}

	return result
}

// EWMA calculates an exponentially weighted moving average over the
// full input, seeded with the first value (span-style smoothing,
// multiplier 2/(span+1)). Unlike SMA it has no warm-up gap: the
// result has the same length as the input.
func EWMA(values []float64, span int) []float64 {
	if len(values) == 0 || span <= 0 {
		return []float64{}
	}

	result := make([]float64, len(values))
	multiplier := 2.0 / float64(span+1)

	ema := values[0]
	result[0] = ema
	for i := 1; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		result[i] = ema
	}

	return result
}
