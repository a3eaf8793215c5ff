// Package timestr parses human-authored duration strings into seconds.
//
// The scanner is deliberately lenient: it accepts bare second counts
// ("27"), unit suffixes ("1h2m30s", units h, m, s), a trailing
// unit-less component ("1h2m30"), and ignores unrelated words around
// the duration ("retry in 5m"). Only the first contiguous run of
// digit/unit components contributes.
package timestr

import "github.com/up-stack/up/internal/errors"

// Unit multipliers in seconds.
const (
	secondsPerHour   = 3600
	secondsPerMinute = 60
)

// Parse scans text for a duration and returns it in whole seconds.
// It fails only when text contains no digits at all.
func Parse(text string) (int, error) {
	i := 0
	for i < len(text) && !isDigit(text[i]) {
		i++
	}
	if i >= len(text) {
		return 0, errors.DurationInvalid(text)
	}

	total := 0
	for i < len(text) && isDigit(text[i]) {
		n := 0
		for i < len(text) && isDigit(text[i]) {
			n = n*10 + int(text[i]-'0')
			i++
		}

		unit := 1
		if i < len(text) {
			switch text[i] {
			case 'h':
				unit = secondsPerHour
				i++
			case 'm':
				unit = secondsPerMinute
				i++
			case 's':
				i++
			}
		}
		total += n * unit
	}

	return total, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
