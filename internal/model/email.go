// internal/model/email.go
package model

import (
    "regexp"
    "strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(raw string) string {
    return strings.ToLower(strings.TrimSpace(raw))
}

// ValidEmail reports whether the (normalized) address has a standard
// local@domain shape.
func ValidEmail(email string) bool {
    return emailPattern.MatchString(email)
}
