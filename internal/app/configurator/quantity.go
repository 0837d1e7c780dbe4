package configurator

import (
	"fmt"
	"strconv"
	"strings"
)

const MinQuantity = 1

// ClampQuantity raises n to MinQuantity.
func ClampQuantity(n int) int {
	if n < MinQuantity {
		return MinQuantity
	}
	return n
}

// ParseQuantity validates raw user input. Clamping is not applied here:
// anything that is not a positive integer is rejected with ErrInvalidQuantity.
func ParseQuantity(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < MinQuantity {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}
	return n, nil
}
