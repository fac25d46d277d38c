// Package games holds the drop chance calculator and the sandbox mini games
// (reaction time, cursor accuracy).
package games

import (
	"fmt"
	"math"
	"strconv"
)

// DropChance is the probability in percent of seeing a percent-% drop at
// least once in the given number of attempts.
func DropChance(percent float64, attempts int) float64 {
	return 100 - math.Pow((100-percent)/100, float64(attempts))*100
}

// DropChanceMessage phrases DropChance for the page.
func DropChanceMessage(percent float64, attempts int) (string, error) {
	if percent < 0 || percent > 100 || math.IsNaN(percent) {
		return "", fmt.Errorf("drop percentage must be between 0 and 100, have %g", percent)
	}
	if attempts < 0 {
		return "", fmt.Errorf("number of attempts must not be negative, have %d", attempts)
	}
	tries := "tries"
	if attempts == 1 {
		tries = "try"
	}
	return fmt.Sprintf("There is a %.1f%% chance that you will receive the %s%% drop at least once in %d %s.",
		DropChance(percent, attempts), strconv.FormatFloat(percent, 'f', -1, 64), attempts, tries), nil
}
