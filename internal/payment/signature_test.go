package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "s3cret"
	valid := sign(secret, "O1", "P1")

	assert.True(t, VerifySignature("O1", "P1", valid, secret))
}

func TestVerifySignature_Mutation(t *testing.T) {
	secret := "s3cret"
	valid := sign(secret, "O1", "P1")

	// Flipping any single character must break verification.
	for i := range valid {
		mutated := []byte(valid)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		assert.False(t, VerifySignature("O1", "P1", string(mutated), secret),
			"mutated signature at index %d must not verify", i)
	}
}

func TestVerifySignature_WrongInputs(t *testing.T) {
	secret := "s3cret"
	valid := sign(secret, "O1", "P1")

	tests := []struct {
		name                         string
		orderID, paymentID, claimed  string
		secret                       string
	}{
		{"wrong order id", "O2", "P1", valid, secret},
		{"wrong payment id", "O1", "P2", valid, secret},
		{"wrong secret", "O1", "P1", valid, "other"},
		{"swapped ids", "P1", "O1", valid, secret},
		{"empty order id", "", "P1", valid, secret},
		{"empty payment id", "O1", "", valid, secret},
		{"empty signature", "O1", "P1", "", secret},
		{"uppercase hex", "O1", "P1", "ABC123", secret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifySignature(tt.orderID, tt.paymentID, tt.claimed, tt.secret))
		})
	}
}
