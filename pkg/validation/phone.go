package validation

import (
	"regexp"
	"strings"
)

const maxPhoneDigits = 10

var phonePattern = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)

// FormatPhone keeps the first ten digits of raw and renders them
// progressively: up to 3 digits as-is, 4 to 6 as "(DDD) DDD", 7 to 10 as
// "(DDD) DDD-DDDD".
func FormatPhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		digits.WriteRune(r)
		if digits.Len() == maxPhoneDigits {
			break
		}
	}

	d := digits.String()
	switch {
	case len(d) < 4:
		return d
	case len(d) < 7:
		return "(" + d[:3] + ") " + d[3:]
	default:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	}
}

// IsFormattedPhone reports whether phone is a complete "(DDD) DDD-DDDD".
func IsFormattedPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
