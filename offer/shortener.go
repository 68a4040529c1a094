package offer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const shortLinkBase = "https://go.example"

// ShortLink derives a deterministic short link for a URL: the first 8
// hex characters of its SHA-256 digest under a fixed base host.
func ShortLink(url string) string {
	digest := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%s/%s", shortLinkBase, hex.EncodeToString(digest[:])[:8])
}
