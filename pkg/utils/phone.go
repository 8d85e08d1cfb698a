package utils

import "strings"

// CanonicalPhone reduces the many phone spellings providers use
// ("whatsapp:+15550001111", "15550001111", "+1 555 000-1111") to the single
// canonical form the rest of the system joins on: a leading + followed by
// digits only. Returns "" when no digits survive.
func CanonicalPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "whatsapp:")

	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	return "+" + digits.String()
}

// SanitizePhone canonicalizes a phone field in place.
func SanitizePhone(phone *string) {
	if phone == nil {
		return
	}
	*phone = CanonicalPhone(*phone)
}

// LastDigits returns the trailing n digits of a canonical phone, used for
// placeholder customer names.
func LastDigits(phone string, n int) string {
	digits := strings.TrimPrefix(CanonicalPhone(phone), "+")
	if len(digits) <= n {
		return digits
	}
	return digits[len(digits)-n:]
}
