// Package linktoken computes and checks the tokens embedded in shared
// financial-statement download links.
//
// A token is the lowercase hex SHA-256 of "{path}-{secret}-{issuedAt}". It is
// deterministic: anyone holding the secret can recompute it, so validity is
// derived rather than stored.
package linktoken

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
)

// Generate returns the token for path issued at issuedAt (unix seconds).
func Generate(path, secret string, issuedAt int64) string {
	sum := sha256.Sum256([]byte(path + "-" + secret + "-" + strconv.FormatInt(issuedAt, 10)))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether presented equals the token for (path, secret, issuedAt).
func Verify(presented, path, secret string, issuedAt int64) bool {
	expected := Generate(path, secret, issuedAt)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

// Fingerprint is the digest stored on share records to look a grant up by its
// token without persisting the token.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
