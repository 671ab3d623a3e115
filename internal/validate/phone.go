package validate

import (
	"strings"

	"github.com/sells-group/provdir/internal/model"
)

// Phone checks format and filler patterns. A number that normalizes to ten
// digits is well-formed; an eleven-digit number may carry a leading country
// code of 1. Filler detection runs only on well-formed numbers.
func (v *Validator) Phone(rec model.ProviderRecord) []model.Finding {
	digits := normalizePhone(rec.Phone)
	if len(digits) != 10 {
		return []model.Finding{model.NewFinding("phone", model.IssueInvalidPhoneFormat)}
	}

	if v.isPlaceholderPhone(digits) {
		return []model.Finding{model.NewFinding("phone", model.IssuePlaceholderPhone)}
	}
	return nil
}

func (v *Validator) isPlaceholderPhone(digits string) bool {
	if _, ok := v.placeholderPhones[digits]; ok {
		return true
	}
	return allSameDigits(digits) || sequentialDigits(digits)
}

// normalizePhone strips separators and a leading country code of 1.
func normalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}

func allSameDigits(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return len(s) > 0
}

// sequentialDigits reports runs that step by one in either direction,
// wrapping at ten, such as 1234567890 or 9876543210.
func sequentialDigits(s string) bool {
	if len(s) < 2 {
		return false
	}
	asc, desc := true, true
	for i := 1; i < len(s); i++ {
		prev, cur := int(s[i-1]-'0'), int(s[i]-'0')
		if cur != (prev+1)%10 {
			asc = false
		}
		if cur != (prev+9)%10 {
			desc = false
		}
	}
	return asc || desc
}
