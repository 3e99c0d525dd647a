package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes extracted text before hashing: Unicode NFC,
// then all runs of whitespace collapsed to single spaces. Two documents
// whose visible content matches produce identical normalized text even
// when their producers disagree about composed characters or line
// wrapping.
func Normalize(text string) string {
	composed := norm.NFC.String(text)
	return strings.Join(strings.Fields(composed), " ")
}
