package user

import "strings"

// User is an identity shared between the realtime chat directory and the
// persistence store.
type User struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// SanitizeID derives a stable user id from a contact address. Every rune
// outside [A-Za-z0-9_-] maps to '_', so two distinct addresses can collapse
// to the same id; callers accept that as a documented limitation.
func SanitizeID(email string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '_' || r == '-':
			return r
		default:
			return '_'
		}
	}, email)
}
