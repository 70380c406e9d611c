package service

import "strings"

// NormalizeContact strips spaces, hyphens and plus signs from a WhatsApp
// number. The result is accepted iff it is all digits and 10 to 15
// characters long.
func NormalizeContact(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r == ' ' || r == '-' || r == '+':
			continue
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			return "", false
		}
	}
	n := b.String()
	if len(n) < 10 || len(n) > 15 {
		return "", false
	}
	return n, true
}
