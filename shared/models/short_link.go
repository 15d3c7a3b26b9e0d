package models

import "time"

const (
	// ShortCodeLength is the fixed length of every issued code.
	ShortCodeLength = 6
	// ShortCodeAlphabet is case-sensitive: "abc123" and "ABC123" are distinct keys.
	ShortCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// DefaultLinkTTL is the retention window of a short link (1 year).
	DefaultLinkTTL = 365 * 24 * time.Hour
)

// ShortLinkRecord is what the store keeps under a short code. It is never
// updated after creation.
type ShortLinkRecord struct {
	Mode    Mode        `json:"mode"`
	Data    StateRecord `json:"data"`
	Created time.Time   `json:"created"`
}

// ValidShortCode reports whether code has the length and alphabet of an
// issued code. It does not say whether the code exists.
func ValidShortCode(code string) bool {
	if len(code) != ShortCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
