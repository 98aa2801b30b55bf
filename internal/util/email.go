package util

import (
	"net/mail"
	"strings"
)

// NormalizeEmail trims the input and lowercases the domain part.
// "Alice <Alice@Example.COM>" becomes "Alice@example.com".
func NormalizeEmail(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(s); err == nil {
		s = addr.Address
	}

	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return s
	}

	return s[:at] + "@" + strings.ToLower(s[at+1:])
}

// LooksLikeEmail reports whether s parses as a bare RFC 5322 address.
func LooksLikeEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
