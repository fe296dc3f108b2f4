package indicator

import "math"

// Rolling window functions aligned to the input: result[i] covers the
// window ending at i and is NaN until the window is full. Callers must
// not read values before the warm-up length has elapsed.

// RollingMean returns the rolling mean over the given window.
func RollingMean(values []float64, window int) []float64 {
	result := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return result
	}

	var sum float64
	for i := 0; i < window; i++ {
		sum += values[i]
	}
	result[window-1] = sum / float64(window)

	for i := window; i < len(values); i++ {
		sum = sum - values[i-window] + values[i]
		result[i] = sum / float64(window)
	}

	return result
}

// RollingMax returns the rolling maximum over the given window. The
// window includes the current value, so for prices the result is always
// >= the value at the same index.
func RollingMax(values []float64, window int) []float64 {
	result := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return result
	}

	for i := window - 1; i < len(values); i++ {
		max := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if values[j] > max {
				max = values[j]
			}
		}
		result[i] = max
	}

	return result
}

// RollingMin returns the rolling minimum over the given window.
func RollingMin(values []float64, window int) []float64 {
	result := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return result
	}

	for i := window - 1; i < len(values); i++ {
		min := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if values[j] < min {
				min = values[j]
			}
		}
		result[i] = min
	}

	return result
}

// RollingStd returns the rolling sample standard deviation (n-1
// denominator) over the given window.
func RollingStd(values []float64, window int) []float64 {
	result := nanSlice(len(values))
	if window <= 1 || len(values) < window {
		return result
	}

	for i := window - 1; i < len(values); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		mean := sum / float64(window)

		var sq float64
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			sq += d * d
		}
		result[i] = math.Sqrt(sq / float64(window-1))
	}

	return result
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
