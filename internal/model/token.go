package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// fingerprintLength is the number of hex characters kept from the token digest.
// 16 hex characters (64 bits) is plenty to tell apart the tokens of one crawl.
const fingerprintLength = 16

// Token is a continuation token: an opaque capability string issued by the
// remote service meaning "fetch the next unit of the tree".
//
// No internal structure may be assumed. Tokens are only compared for equality.
type Token string

// IsZero reports whether the token is empty.
func (t Token) IsZero() bool {
	return t == ""
}

// Fingerprint returns a short, stable digest of the token.
//
// Tokens are several hundred bytes of base64 and carry session state, so
// the fingerprint is what we keep in de-duplication sets and what we log.
func (t Token) Fingerprint() string {
	sum := sha3.Sum256([]byte(t))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
