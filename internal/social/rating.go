package social

import "github.com/shopspring/decimal"

// AverageRating is the mean of stars rounded half-up to two decimals.
// It is 0 when there are no ratings.
func AverageRating(stars []int) float64 {
	var sum int64
	for _, s := range stars {
		sum += int64(s)
	}
	return averageFromSum(sum, int64(len(stars)))
}

func averageFromSum(sum, count int64) float64 {
	if count == 0 {
		return 0
	}
	return decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), 2).InexactFloat64()
}
