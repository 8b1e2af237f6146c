package services

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName is the key used to match and deduplicate raw item names:
// NFC, trimmed, lower-cased, inner whitespace collapsed.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFC.String(s))), " ")
}
