package store

import "math/big"

// addDecimal adds two base-10 big.Int strings and returns the sum as a
// decimal string, keeping leaderboard aggregates in the same
// arbitrary-precision arithmetic the rest of the module uses for chain
// amounts (internal/payout never touches float64, and neither does this).
func addDecimal(a, b string) string {
	x, ok := new(big.Int).SetString(a, 10)
	if !ok {
		x = big.NewInt(0)
	}
	y, ok := new(big.Int).SetString(b, 10)
	if !ok {
		y = big.NewInt(0)
	}
	return x.Add(x, y).String()
}
