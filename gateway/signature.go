package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature derives the hex-encoded HMAC-SHA256 of "<orderID>|<paymentID>"
// under the shared webhook secret. This is the only derivation the verifier
// accepts; the secret itself is never transmitted.
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether the provided signature matches the expected
// derivation. The comparison is constant-time.
func VerifySignature(secret, orderID, paymentID, provided string) bool {
	expected := Signature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(provided))
}
