package utils

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateID returns a short random identifier used for usage records.
func GenerateID() (string, error) {
	return gonanoid.Generate(characters, 12)
}

// NormalizeKey lowercases and trims the parts of a composite key so
// membership tests are case- and whitespace-insensitive.
func NormalizeKey(parts ...string) string {
	normalized := make([]string, 0, len(parts))
	for _, p := range parts {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(p)))
	}
	return strings.Join(normalized, "|")
}
