package core

// Composite collapses the three review axes into a single score.
func Composite(punctuality, friendliness, quality int) float64 {
	return float64(punctuality+friendliness+quality) / 3.0
}

// NextAverage folds one more composite score into a running mean. The first
// review sets the average outright, so the count never divides by zero.
func NextAverage(oldAvg float64, oldCount int, composite float64) float64 {
	if oldCount <= 0 {
		return composite
	}
	return (oldAvg*float64(oldCount) + composite) / float64(oldCount+1)
}
