package catalog

import (
	"encoding/base64"
	"strings"
)

// Identify derives the stable ID of an entry from its title and reference
// URL. The result only contains ASCII letters and digits, so it is safe as a
// storage key and as an attribute value. The same pair always yields the
// same ID; catalog order plays no part.
func Identify(title, referenceURL string) string {
	raw := strings.TrimSpace(title) + strings.TrimSpace(referenceURL)
	encoded := base64.StdEncoding.EncodeToString([]byte(raw))

	var b strings.Builder
	b.Grow(len(encoded))
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		if isAlnum(c) {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
