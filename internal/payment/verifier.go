package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// Verifier checks that a gateway callback was really signed by the payment
// gateway. It is a pure cryptographic check: no network calls, no storage.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier with the shared signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// MustNewVerifierFromEnv creates a Verifier from RAZORPAY_KEY_SECRET.
func MustNewVerifierFromEnv() *Verifier {
	secret := os.Getenv("RAZORPAY_KEY_SECRET")
	if secret == "" {
		panic("RAZORPAY_KEY_SECRET is not set")
	}

	return NewVerifier(secret)
}

// Sign computes the lowercase hex HMAC-SHA256 of "orderRef|paymentRef".
func (v *Verifier) Sign(orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderRef + "|" + paymentRef))

	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature and compares it to the supplied hex
// signature in constant time. Malformed hex verifies false.
func (v *Verifier) Verify(orderRef, paymentRef, signature string) bool {
	supplied, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderRef + "|" + paymentRef))

	return hmac.Equal(supplied, mac.Sum(nil))
}
