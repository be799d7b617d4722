package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetails_Validate(t *testing.T) {
	d := Details{
		Name:    "Asha Rao",
		Address: "12 MG Road, Bengaluru",
		Phone:   "+919876543210",
		Pincode: "560001",
	}

	require.NoError(t, d.Validate())
}

func TestDetails_Validate_PincodeOptional(t *testing.T) {
	d := Details{Name: "Asha Rao", Address: "12 MG Road", Phone: "+919876543210"}

	assert.NoError(t, d.Validate())
}

func TestDetails_Validate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		detail Details
	}{
		{"missing name", Details{Address: "a", Phone: "p"}},
		{"missing address", Details{Name: "n", Phone: "p"}},
		{"missing phone", Details{Name: "n", Address: "a"}},
		{"short pincode", Details{Name: "n", Address: "a", Phone: "p", Pincode: "1234"}},
		{"long pincode", Details{Name: "n", Address: "a", Phone: "p", Pincode: "5600012"}},
		{"non numeric pincode", Details{Name: "n", Address: "a", Phone: "p", Pincode: "56000a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.detail.Validate())
		})
	}
}
