// Package payment talks to the payment gateway and verifies its
// callback signatures.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks the HMAC the gateway attaches to a completed
// payment. The signed message is "<orderID>|<paymentID>", the key is the
// gateway key secret, and the expected encoding is lowercase hex.
//
// The comparison is constant-time and the function fails closed: empty or
// malformed inputs simply produce a mismatch.
func VerifySignature(orderID, paymentID, claimed, secret string) bool {
	if orderID == "" || paymentID == "" || claimed == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(claimed))
}
