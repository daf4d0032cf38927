package extract

import (
	"regexp"
	"strings"
)

// priceRun matches the first maximal run of digits with interior spaces,
// dots, and commas. It starts and ends on a digit, so currency symbols and
// words around the number are dropped entirely.
var priceRun = regexp.MustCompile(`[0-9][0-9., ]*[0-9]|[0-9]`)

// NormalizePrice converts a raw, locale-ambiguous price string into a
// canonical decimal-point numeric string: digits with at most one "." and
// no thousands grouping. The second return value is false when no numeric
// run is present.
//
// Ambiguity between "1.234,56" and "1,234.56" is resolved by position: a
// thousands group can never follow a decimal fraction, so whichever
// separator appears later is the decimal one. A single occurrence of one
// separator type is read as a decimal point only when the trailing segment
// is 1-2 digits long; anything else is assumed to be thousands grouping.
// That guess is wrong for some group-only locales ("12.5" meaning 12500),
// which is an accepted limitation.
func NormalizePrice(raw string) (string, bool) {
	s := collapseSpace(strings.ReplaceAll(raw, " ", " "))
	if s == "" {
		return "", false
	}

	run := priceRun.FindString(s)
	if run == "" {
		return "", false
	}
	run = strings.ReplaceAll(run, " ", "")

	lastDot := strings.LastIndexByte(run, '.')
	lastComma := strings.LastIndexByte(run, ',')

	switch {
	case lastDot < 0 && lastComma < 0:
		return run, true

	case lastDot >= 0 && lastComma >= 0:
		// Both present: the later one is the decimal separator. Everything
		// else, of either type, is grouping.
		decIdx := lastDot
		if lastComma > lastDot {
			decIdx = lastComma
		}
		var b strings.Builder
		for i := 0; i < len(run); i++ {
			switch {
			case run[i] >= '0' && run[i] <= '9':
				b.WriteByte(run[i])
			case i == decIdx:
				b.WriteByte('.')
			}
		}
		return b.String(), true

	default:
		// Only one separator type present.
		sep := "."
		if lastComma >= 0 {
			sep = ","
		}
		parts := strings.Split(run, sep)
		if len(parts) == 2 && len(parts[1]) >= 1 && len(parts[1]) <= 2 {
			return parts[0] + "." + parts[1], true
		}
		// Multiple occurrences, or a 3+ digit tail: thousands grouping.
		return strings.Join(parts, ""), true
	}
}
