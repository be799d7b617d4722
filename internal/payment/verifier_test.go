package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")

	sig := v.Sign("order_abc123", "pay_xyz789")
	require.NotEmpty(t, sig)

	assert.True(t, v.Verify("order_abc123", "pay_xyz789", sig))
}

func TestVerifier_TamperedSignature(t *testing.T) {
	v := NewVerifier("test-secret")

	sig := v.Sign("order_abc123", "pay_xyz789")

	// Flip the last hex digit.
	last := sig[len(sig)-1]
	flip := byte('0')
	if last == '0' {
		flip = '1'
	}
	tampered := sig[:len(sig)-1] + string(flip)

	assert.False(t, v.Verify("order_abc123", "pay_xyz789", tampered))
}

func TestVerifier_WrongPaymentRef(t *testing.T) {
	v := NewVerifier("test-secret")

	sig := v.Sign("order_abc123", "pay_xyz789")

	assert.False(t, v.Verify("order_abc123", "pay_other", sig))
	assert.False(t, v.Verify("order_other", "pay_xyz789", sig))
}

func TestVerifier_DifferentSecret(t *testing.T) {
	sig := NewVerifier("secret-a").Sign("order_abc123", "pay_xyz789")

	assert.False(t, NewVerifier("secret-b").Verify("order_abc123", "pay_xyz789", sig))
}

func TestVerifier_MalformedHex(t *testing.T) {
	v := NewVerifier("test-secret")

	assert.False(t, v.Verify("order_abc123", "pay_xyz789", "not-hex-at-all"))
	assert.False(t, v.Verify("order_abc123", "pay_xyz789", ""))
}
